package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
)

func newDevicesCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage devices",
	}

	var companyID, locationID string
	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			devices, err := client.ListDevices(cmd.Context(), api.DeviceFilter{
				CompanyID:  companyID,
				LocationID: locationID,
			})
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(devices))
			for _, d := range devices {
				rows = append(rows, []string{d.ID, d.HardwareID, orDash(d.Name), d.LocationID, orDash(d.DeviceTypeID)})
			}
			return output(jsonOut, devices, []string{"id", "hardware id", "name", "location", "type"}, rows)
		},
	}
	list.Flags().StringVar(&companyID, "company", "", "Filter by company id")
	list.Flags().StringVar(&locationID, "location", "", "Filter by location id")
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	var getJSON bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			d, err := client.GetDevice(cmd.Context(), args[0])
			if err != nil {
				return withCode(exitAPI, err)
			}
			return output(getJSON, d, []string{"id", "hardware id", "name", "location", "type", "category"},
				[][]string{{d.ID, d.HardwareID, orDash(d.Name), d.LocationID, orDash(d.DeviceTypeID), orDash(d.DeviceCategory)}})
		},
	}
	get.Flags().BoolVar(&getJSON, "json", false, "Print JSON")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			if err := client.DeleteDevice(cmd.Context(), args[0]); err != nil {
				return withCode(exitAPI, err)
			}
			fmt.Printf("deleted device %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}
