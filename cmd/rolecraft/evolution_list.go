package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func evolutionListCmd() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending evolutions for a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvolutionList(gameID)
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game to list (required)")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func runEvolutionList(gameID string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	evos, err := a.evolution.ListPending(ctx, gameID)
	if err != nil {
		return err
	}
	if len(evos) == 0 {
		fmt.Fprintln(os.Stdout, "No pending evolutions.")
		return nil
	}
	for _, evo := range evos {
		printEvolution(os.Stdout, evo)
	}
	return nil
}
