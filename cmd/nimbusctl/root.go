package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
	"github.com/nimbus-iot/nimbusctl/pkg/config"
)

type globalOptions struct {
	baseURL string
	token   string
}

func newRootCmd() *cobra.Command {
	var global globalOptions

	cmd := &cobra.Command{
		Use:           "nimbusctl",
		Short:         "CLI client for the Nimbus IoT device-management platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&global.baseURL, "base-url", "", "Platform API origin (default: NIMBUS_API_URL)")
	cmd.PersistentFlags().StringVar(&global.token, "token", "", "Static bearer token (default: NIMBUS_TOKEN)")

	cmd.AddCommand(newImportCmd(&global))
	cmd.AddCommand(newCompaniesCmd(&global))
	cmd.AddCommand(newUsersCmd(&global))
	cmd.AddCommand(newLocationsCmd(&global))
	cmd.AddCommand(newDevicesCmd(&global))
	cmd.AddCommand(newTemplatesCmd(&global))
	cmd.AddCommand(newCodecsCmd(&global))
	cmd.AddCommand(newGatewaysCmd(&global))
	cmd.AddCommand(newRegistryCmd(&global))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

// newAPIClient builds the platform client from configuration, letting the
// global flags override env-sourced values.
func newAPIClient(global *globalOptions) (*api.Client, error) {
	cfg := config.Use()

	baseURL := cfg.BaseURL
	if global.baseURL != "" {
		baseURL = global.baseURL
	}

	opts := []api.Option{
		api.WithLogger(cfg.Logger()),
		api.WithPageSize(cfg.PageSize),
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	}
	token := cfg.Token
	if global.token != "" {
		token = global.token
	}
	if token != "" {
		opts = append(opts, api.WithToken(token))
	} else {
		opts = append(opts, api.WithCredentials(cfg.APIKey, cfg.APISecret))
	}

	client, err := api.NewClient(baseURL, opts...)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return client, nil
}
