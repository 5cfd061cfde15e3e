package cmd

import "github.com/spf13/cobra"

// Root is the "do" command with every subcommand attached.
func Root() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Development and operator tools for the Stoic journal",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(DevCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(TokenCmd())
	return rootCmd
}
