package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in through the browser and cache a fresh token",
		Long:  "login discards any cached token, signs in to the account portal with the configured credentials, resolves the customer and caches both.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.service.Login(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "Logged in; token cached at %s\n", app.store.Path()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "customer: %s\n", session.CustomerURN)
			return err
		},
	}
}
