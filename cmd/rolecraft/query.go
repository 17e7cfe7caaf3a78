package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect stored game state from the CLI",
	}
	cmd.AddCommand(queryEntityCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}
