package main

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nimbus-iot/nimbusctl/pkg/bulk"
	"github.com/nimbus-iot/nimbusctl/pkg/config"
	"github.com/nimbus-iot/nimbusctl/pkg/prompt"
	"github.com/nimbus-iot/nimbusctl/pkg/render"
	"github.com/nimbus-iot/nimbusctl/pkg/sheet"
)

type importOptions struct {
	file        string
	companyID   string
	userID      string
	dryRun      bool
	mappingFile string
	saveMapping string
	delimiter   string
	prefixNames bool

	locAddress  string
	locCity     string
	locState    string
	locCountry  string
	locZip      string
	locTimezone string
	locIndustry string

	deviceTypeID   string
	deviceSettings []string

	jsonOut    bool
	outputFile string
}

func newImportCmd(global *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Bulk-import locations and devices from a provisioning sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = args[0]
			return runImport(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.companyID, "company", "", "Target company id (required)")
	cmd.Flags().StringVar(&opts.userID, "user", "", "Target user id owning created locations")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Mirror every decision without mutating remote state")
	cmd.Flags().StringVar(&opts.mappingFile, "mapping", "", "Load a saved column mapping instead of prompting")
	cmd.Flags().StringVar(&opts.saveMapping, "save-mapping", "", "Persist the mapping to this file for reuse")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "Force the CSV delimiter (default: auto-detect)")
	cmd.Flags().BoolVar(&opts.prefixNames, "prefix-names", false, "Prefix location names with their column name")
	cmd.Flags().StringVar(&opts.locAddress, "location-address", "", "Default location address")
	cmd.Flags().StringVar(&opts.locCity, "location-city", "", "Default location city")
	cmd.Flags().StringVar(&opts.locState, "location-state", "", "Default location state")
	cmd.Flags().StringVar(&opts.locCountry, "location-country", "", "Default location country")
	cmd.Flags().StringVar(&opts.locZip, "location-zip", "", "Default location zip")
	cmd.Flags().StringVar(&opts.locTimezone, "location-timezone", "", "Default location timezone")
	cmd.Flags().StringVar(&opts.locIndustry, "location-industry", "", "Default location industry")
	cmd.Flags().StringVar(&opts.deviceTypeID, "device-type-id", "", "Default device template id for rows without one")
	cmd.Flags().StringArrayVar(&opts.deviceSettings, "device-setting", nil, "Device property override key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the structured summary as JSON")
	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Write the full result log to this file")

	_ = cmd.MarkFlagRequired("company")

	return cmd
}

func runImport(cmd *cobra.Command, global *globalOptions, opts importOptions) error {
	delimiter, err := parseDelimiter(opts.delimiter)
	if err != nil {
		return withCode(exitUsage, err)
	}
	settings, err := parseKeyValues(opts.deviceSettings)
	if err != nil {
		return withCode(exitUsage, err)
	}

	table, err := sheet.Read(opts.file, delimiter)
	if err != nil {
		return withCode(exitFailedRows, err)
	}

	mapping, hierarchy, err := buildMapping(opts, table.Headers)
	if err != nil {
		return err
	}

	if problems := bulk.ValidateMapping(mapping, hierarchy, opts.deviceTypeID); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, "mapping problem:", p)
		}
		return withCode(exitFailedRows, fmt.Errorf("mapping is incomplete: %d problem(s)", len(problems)))
	}

	if opts.saveMapping != "" {
		if err := bulk.SaveMapping(opts.saveMapping, mapping, hierarchy); err != nil {
			return withCode(exitFailedRows, err)
		}
	}

	client, err := newAPIClient(global)
	if err != nil {
		return err
	}

	importer := bulk.NewImporter(
		bulk.Services{
			Locations: client,
			Devices:   client,
			Templates: client,
			Registry:  client,
		},
		bulk.Options{
			CompanyID:        opts.companyID,
			UserID:           opts.userID,
			DryRun:           opts.dryRun,
			PrefixNames:      opts.prefixNames,
			LocationDefaults: opts.locationDefaults(),
			DeviceTypeID:     opts.deviceTypeID,
			DeviceSettings:   settings,
		},
		config.Use().Logger(),
	)

	startedAt := time.Now().UTC()
	summary, err := importer.Run(cmd.Context(), table, mapping, hierarchy)
	if err != nil {
		return withCode(exitAPI, err)
	}
	finishedAt := time.Now().UTC()

	if opts.jsonOut {
		if err := render.JSON(os.Stdout, summary); err != nil {
			return err
		}
	} else {
		summary.WriteText(os.Stdout)
	}

	if opts.outputFile != "" {
		log := &bulk.ResultLog{
			RunID:      uuid.NewString(),
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Params: bulk.ResultParams{
				File:             opts.file,
				CompanyID:        opts.companyID,
				UserID:           opts.userID,
				DryRun:           opts.dryRun,
				PrefixNames:      opts.prefixNames,
				LocationDefaults: opts.locationDefaults(),
				DeviceTypeID:     opts.deviceTypeID,
				DeviceSettings:   settings,
			},
			Summary: summary,
		}
		if err := bulk.WriteResultLog(opts.outputFile, log); err != nil {
			return withCode(exitFailedRows, err)
		}
	}

	if summary.HasFailures() {
		return withCode(exitFailedRows, fmt.Errorf("import finished with %d location and %d device failure(s)",
			summary.Locations.Failed, summary.Devices.Failed))
	}
	return nil
}

// buildMapping loads the saved mapping when one was given, otherwise runs
// the interactive session against the terminal.
func buildMapping(opts importOptions, headers []string) (bulk.ColumnMapping, bulk.HierarchyMapping, error) {
	if opts.mappingFile != "" {
		m, h, err := bulk.LoadMapping(opts.mappingFile)
		if err != nil {
			return nil, bulk.HierarchyMapping{}, withCode(exitFailedRows, err)
		}
		return m, h, nil
	}

	p := prompt.NewTerminal(os.Stdin, os.Stderr)
	m, h, err := bulk.BuildMappingInteractive(p, headers)
	if err != nil {
		return nil, bulk.HierarchyMapping{}, withCode(exitUsage, err)
	}
	return m, h, nil
}

func (o importOptions) locationDefaults() map[string]string {
	defaults := map[string]string{}
	set := func(field, value string) {
		if strings.TrimSpace(value) != "" {
			defaults[field] = value
		}
	}
	set("address", o.locAddress)
	set("city", o.locCity)
	set("state", o.locState)
	set("country", o.locCountry)
	set("zip", o.locZip)
	set("timezone", o.locTimezone)
	set("industry", o.locIndustry)
	return defaults
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid --delimiter: %q (one character expected)", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --device-setting: %q (key=value expected)", pair)
		}
		out[key] = value
	}
	return out, nil
}
