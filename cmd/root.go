package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "ngm",
		Short:         "National Grid NYC Metro (ngm): gas usage and cost from the Opower portal",
		Long:          "ngm logs in to the National Grid NYC Metro account portal, caches the bearer token, fetches gas bills from Opower and reports usage, cost and a current-period estimate.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.opts.configFile, "config", "", "Config file (default ~/.ngnycmetro/config.toml)")
	rootCmd.PersistentFlags().StringVar(&app.opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newUsageCmd(app),
		newLoginCmd(app),
		newCacheCmd(app),
		newConfigCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
