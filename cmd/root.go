package cmd

import (
	"github.com/spf13/cobra"
	"video-library/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "video-library",
		Short:         "upload, enrich and browse videos kept in an object store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(server(config), videos(config))
	return rootCmd
}
