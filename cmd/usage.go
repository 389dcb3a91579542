package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	usagerender "github.com/bnema/ngmetro/internal/adapters/render/usage"
	"github.com/bnema/ngmetro/internal/application"
	"github.com/bnema/ngmetro/internal/domain"
	"github.com/spf13/cobra"
)

func newUsageCmd(app *app) *cobra.Command {
	var asJSON bool
	var history int

	cmd := &cobra.Command{
		Use:     "usage",
		Aliases: []string{"status"},
		Short:   "Fetch gas usage and cost for the current account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsage(cmd, app, asJSON, history)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render the result envelope as JSON")
	cmd.Flags().IntVar(&history, "history", 0, "Number of past bills to list (default 12, -1 for all)")

	return cmd
}

func runUsage(cmd *cobra.Command, app *app, asJSON bool, history int) error {
	var report domain.UsageReport
	fetch := func(ctx context.Context) error {
		var err error
		report, err = app.service.Usage(ctx)
		return err
	}

	if asJSON {
		err := fetch(cmd.Context())
		if writeErr := writeJSON(cmd.OutOrStdout(), application.NewResult(report, err)); writeErr != nil {
			return writeErr
		}
		return err
	}

	if err := runUsageFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), fetch); err != nil {
		return err
	}

	rendered, err := app.usageRenderer(report, usagerender.RenderOptions{History: history})
	if err != nil {
		return fmt.Errorf("render usage: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
