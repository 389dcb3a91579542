package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/ngmetro/internal/adapters/auth"
	"github.com/bnema/ngmetro/internal/domain"
	"github.com/spf13/cobra"
)

func newCacheCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the token cache",
	}

	cmd.AddCommand(newCacheShowCmd(app), newCacheClearCmd(app))

	return cmd
}

func newCacheShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cached token state (expired or unreadable caches are discarded)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, status := app.service.CachedSession(cmd.Context())

			lines := []string{
				fmt.Sprintf("path: %s", app.store.Path()),
				fmt.Sprintf("status: %s", status),
			}
			if status == domain.CacheHit {
				lines = append(lines, fmt.Sprintf("saved at: %s", formatTime(cred.SavedAt)))
				if expiresAt, err := auth.ExpiresAt(cred.Token); err == nil {
					lines = append(lines, fmt.Sprintf("expires at: %s (in %s)", formatTime(expiresAt), expiresAt.Sub(app.now()).Round(time.Minute)))
				}
				customer := string(cred.CustomerURN)
				if customer == "" {
					customer = "(not resolved)"
				}
				lines = append(lines, fmt.Sprintf("customer: %s", customer))
			}

			for _, line := range lines {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCacheClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cached token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.service.ClearCache(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", app.store.Path())
			return err
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(time.RFC3339)
}
