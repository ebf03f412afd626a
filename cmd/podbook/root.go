package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	v := viper.New()
	ctx := newCommandContext(v, &configFlag)

	rootCmd := &cobra.Command{
		Use:           "podbook",
		Short:         "Turn podcast episodes and recordings into a book project",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.String("api", "", "Podbook API base URL")
	flags.String("token", "", "Access token for the Podbook API")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	_ = v.BindPFlag("clients.podbook.base_url", flags.Lookup("api"))
	_ = v.BindPFlag("clients.podbook.token", flags.Lookup("token"))
	_ = v.BindPFlag("observability.logging.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(newEstimateCommand(ctx))
	rootCmd.AddCommand(newEpisodesCommand(ctx))
	rootCmd.AddCommand(newCreateCommand(ctx))
	return rootCmd
}
