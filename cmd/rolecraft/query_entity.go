package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rolecraft/internal/evolution"
	"rolecraft/internal/store"
)

func queryEntityCmd() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "entity <type:id>",
		Short: "Display an entity's traits and relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := store.ParseEntityRef(args[0])
			if err != nil {
				return err
			}
			return runQueryEntity(gameID, entity)
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game to read from (required)")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func runQueryEntity(gameID string, entity store.EntityRef) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	summary, err := a.evolution.GetEntitySummary(ctx, gameID, entity)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Fprintf(os.Stdout, "No state recorded for %s in game %s.\n", entity, gameID)
		return nil
	}
	printEntitySummary(os.Stdout, summary)
	return nil
}

func printEntitySummary(out io.Writer, summary *evolution.EntitySummary) {
	fmt.Fprintf(out, "Entity: %s\n", summary.Entity)
	fmt.Fprintf(out, "Game: %s\n", summary.GameID)
	if len(summary.Traits) > 0 {
		fmt.Fprintf(out, "Traits: %s\n", strings.Join(summary.TraitNames(), ", "))
	}

	if len(summary.Relationships) == 0 {
		return
	}
	fmt.Fprintln(out, "Relationships:")
	for _, rel := range summary.Relationships {
		d := rel.Dimensions
		fmt.Fprintf(out, "  %s %s (%s, turn %d): trust=%.2f respect=%.2f affection=%.2f fear=%.2f resentment=%.2f debt=%.2f\n",
			rel.Direction, rel.Other, rel.Label, rel.UpdatedTurn,
			d.Trust, d.Respect, d.Affection, d.Fear, d.Resentment, d.Debt)
	}
}
