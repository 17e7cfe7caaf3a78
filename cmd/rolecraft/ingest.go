package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rolecraft/internal/ingest"
)

func ingestCmd() *cobra.Command {
	var gameID, gameName string
	var turn int
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Seed a game's scenes, traits and relationships from markdown lore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(ingest.Options{GameID: gameID, GameName: gameName, Turn: turn})
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game to seed (required)")
	cmd.Flags().StringVar(&gameName, "name", "", "Game name (defaults to the project name)")
	cmd.Flags().IntVar(&turn, "turn", 0, "Turn stamped on seeded state")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func runIngest(options ingest.Options) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	options.Logger = a.log
	result, err := ingest.Run(ctx, a.cfg, a.catalog, a.db, a.scenes, options)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Ingestion complete.")
	fmt.Fprintf(os.Stdout, "  Scenes created:         %d\n", result.ScenesCreated)
	fmt.Fprintf(os.Stdout, "  Scenes skipped:         %d\n", result.ScenesSkipped)
	fmt.Fprintf(os.Stdout, "  Connections upserted:   %d\n", result.ConnectionsUpserted)
	fmt.Fprintf(os.Stdout, "  Traits added:           %d\n", result.TraitsAdded)
	fmt.Fprintf(os.Stdout, "  Relationships upserted: %d\n", result.RelationshipsUpserted)
	fmt.Fprintf(os.Stdout, "  Files skipped:          %d\n", result.FilesSkipped)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("ingestion completed with errors")
	}

	return nil
}
