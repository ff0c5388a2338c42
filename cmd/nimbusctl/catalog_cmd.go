package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
)

func newTemplatesCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect device templates",
	}

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List device templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			templates, err := client.ListTemplates(cmd.Context())
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(templates))
			for _, t := range templates {
				rows = append(rows, []string{t.ID, orDash(t.Name), orDash(t.Category)})
			}
			return output(jsonOut, templates, []string{"id", "name", "category"}, rows)
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	var getJSON bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one device template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			t, err := client.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return withCode(exitAPI, err)
			}
			uses := make([]string, 0, len(t.DeviceUse))
			for _, u := range t.DeviceUse {
				if u.Default {
					uses = append(uses, u.Use+"*")
				} else {
					uses = append(uses, u.Use)
				}
			}
			return output(getJSON, t, []string{"id", "name", "category", "uses"},
				[][]string{{t.ID, orDash(t.Name), orDash(t.Category), orDash(strings.Join(uses, ","))}})
		},
	}
	get.Flags().BoolVar(&getJSON, "json", false, "Print JSON")

	cmd.AddCommand(list, get)
	return cmd
}

func newCodecsCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codecs",
		Short: "Inspect payload codecs",
	}

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List codecs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			codecs, err := client.ListCodecs(cmd.Context())
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(codecs))
			for _, c := range codecs {
				rows = append(rows, []string{c.ID, c.Name})
			}
			return output(jsonOut, codecs, []string{"id", "name"}, rows)
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	var getJSON bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one codec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			c, err := client.GetCodec(cmd.Context(), args[0])
			if err != nil {
				return withCode(exitAPI, err)
			}
			return output(getJSON, c, []string{"id", "name"}, [][]string{{c.ID, c.Name}})
		},
	}
	get.Flags().BoolVar(&getJSON, "json", false, "Print JSON")

	cmd.AddCommand(list, get)
	return cmd
}

func newGatewaysCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateways",
		Short: "Inspect gateways",
	}

	var companyID string
	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List gateways",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			gateways, err := client.ListGateways(cmd.Context(), companyID)
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(gateways))
			for _, g := range gateways {
				rows = append(rows, []string{g.ID, g.HardwareID, orDash(g.Name), orDash(g.Status)})
			}
			return output(jsonOut, gateways, []string{"id", "hardware id", "name", "status"}, rows)
		},
	}
	list.Flags().StringVar(&companyID, "company", "", "Filter by company id")
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	var getJSON bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			g, err := client.GetGateway(cmd.Context(), args[0])
			if err != nil {
				return withCode(exitAPI, err)
			}
			return output(getJSON, g, []string{"id", "hardware id", "name", "status"},
				[][]string{{g.ID, g.HardwareID, orDash(g.Name), orDash(g.Status)}})
		},
	}
	get.Flags().BoolVar(&getJSON, "json", false, "Print JSON")

	cmd.AddCommand(list, get)
	return cmd
}

func newRegistryCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Query the hardware registry",
	}

	var companyID string
	var hardwareIDs []string
	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List registry entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			entries, err := client.ListRegistry(cmd.Context(), api.RegistryFilter{
				CompanyID:   companyID,
				HardwareIDs: hardwareIDs,
			})
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.HardwareID, orDash(e.DeviceTypeID), orDash(e.CompanyID)})
			}
			return output(jsonOut, entries, []string{"hardware id", "type", "company"}, rows)
		},
	}
	list.Flags().StringVar(&companyID, "company", "", "Filter by company id")
	list.Flags().StringSliceVar(&hardwareIDs, "hardware-id", nil, "Filter by hardware id (repeatable)")
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	cmd.AddCommand(list)
	return cmd
}
