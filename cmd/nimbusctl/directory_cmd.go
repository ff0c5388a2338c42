package main

import (
	"github.com/spf13/cobra"
)

func newCompaniesCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Manage companies",
	}

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			companies, err := client.ListCompanies(cmd.Context())
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(companies))
			for _, c := range companies {
				rows = append(rows, []string{c.ID, c.Name})
			}
			return output(jsonOut, companies, []string{"id", "name"}, rows)
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	var getJSON bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			c, err := client.GetCompany(cmd.Context(), args[0])
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

func newUsersCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	var companyID string
	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			users, err := client.ListUsers(cmd.Context(), companyID)
			if err != nil {
				return withCode(exitAPI, err)
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Email, orDash(u.Name), orDash(u.CompanyID)})
			}
			return output(jsonOut, users, []string{"id", "email", "name", "company"}, rows)
		},
	}
	list.Flags().StringVar(&companyID, "company", "", "Filter by company id")
	list.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")

	var getJSON bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(global)
			if err != nil {
				return err
			}
			u, err := client.GetUser(cmd.Context(), args[0])
			if err != nil {
				return withCode(exitAPI, err)
			}
			return output(getJSON, u, []string{"id", "email", "name", "company"},
				[][]string{{u.ID, u.Email, orDash(u.Name), orDash(u.CompanyID)}})
		},
	}
	get.Flags().BoolVar(&getJSON, "json", false, "Print JSON")

	cmd.AddCommand(list, get)
	return cmd
}
