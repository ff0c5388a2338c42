package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
)

func newLocationsCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage locations",
	}

	var companyID, userID string
	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			locations, err := client.ListLocations(cmd.Context(), api.LocationFilter{
				CompanyID: companyID,
				UserID:    userID,
			})
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(locations))
			for _, l := range locations {
				parent := "-"
				if l.ParentID != nil {
					parent = *l.ParentID
				}
				rows = append(rows, []string{l.ID, l.Name, parent, orDash(l.City), orDash(l.Country)})
			}
			return output(jsonOut, locations, []string{"id", "name", "parent", "city", "country"}, rows)
		},
	}
	list.Flags().StringVar(&companyID, "company", "", "Filter by company id")
	list.Flags().StringVar(&userID, "user", "", "Filter by owning user id")
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	var getJSON bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			l, err := client.GetLocation(cmd.Context(), args[0])
			if err != nil {
				return withCode(exitAPI, err)
			}
			parent := "-"
			if l.ParentID != nil {
				parent = *l.ParentID
			}
			return output(getJSON, l, []string{"id", "name", "parent", "address", "city", "country"},
				[][]string{{l.ID, l.Name, parent, orDash(l.Address), orDash(l.City), orDash(l.Country)}})
		},
	}
	get.Flags().BoolVar(&getJSON, "json", false, "Print JSON")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			if err := client.DeleteLocation(cmd.Context(), args[0]); err != nil {
				return withCode(exitAPI, err)
			}
			fmt.Printf("deleted location %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}
