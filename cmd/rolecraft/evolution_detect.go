package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rolecraft/internal/evolution"
)

func evolutionDetectCmd() *cobra.Command {
	var event evolution.EventRef
	var file string
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Queue suggested changes from a committed event for review",
		Long:  "Reads a JSON array of suggestions from --file (or stdin when the file is -) and stores each as a pending evolution.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readSuggestions(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return runEvolutionDetect(event, inputs)
		},
	}
	cmd.Flags().StringVar(&event.GameID, "game", "", "Game the event belongs to (required)")
	cmd.Flags().StringVar(&event.ID, "event", "", "Id of the committed event")
	cmd.Flags().IntVar(&event.Turn, "turn", 0, "Turn the event happened on")
	cmd.Flags().StringVar(&file, "file", "-", "JSON suggestions file, - for stdin")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func readSuggestions(stdin io.Reader, file string) ([]evolution.SuggestionInput, error) {
	var data []byte
	var err error
	if file == "" || file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading suggestions: %w", err)
	}

	var inputs []evolution.SuggestionInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("decoding suggestions: %w", err)
	}
	return inputs, nil
}

func runEvolutionDetect(event evolution.EventRef, inputs []evolution.SuggestionInput) error {
	suggestions, err := evolution.ParseSuggestions(inputs)
	if err != nil {
		return err
	}

	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	created, err := a.evolution.DetectEvolutions(ctx, event, suggestions)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Queued %d evolution(s).\n", len(created))
	for _, evo := range created {
		printEvolution(os.Stdout, evo)
	}
	return nil
}
