package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rolecraft/internal/store"
)

func eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Record committed narrative events",
	}
	cmd.AddCommand(eventCommitCmd())
	return cmd
}

func eventCommitCmd() *cobra.Command {
	var event store.Event
	var actor, target string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record an event and report NPCs ready to emerge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if event.Turn < 0 {
				return fmt.Errorf("--turn must not be negative")
			}
			var err error
			if event.ActorType, event.ActorID, err = splitParticipant("--actor", actor); err != nil {
				return err
			}
			if event.TargetType, event.TargetID, err = splitParticipant("--target", target); err != nil {
				return err
			}
			if strings.TrimSpace(event.ID) == "" {
				event.ID = uuid.NewString()
			}
			return runEventCommit(event)
		},
	}
	cmd.Flags().StringVar(&event.GameID, "game", "", "Game the event belongs to (required)")
	cmd.Flags().StringVar(&event.ID, "id", "", "Event id (generated when empty)")
	cmd.Flags().IntVar(&event.Turn, "turn", 0, "Turn the event happened on")
	cmd.Flags().StringVar(&event.EventType, "type", "", "Event kind, e.g. combat or dialogue")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting entity as type:id")
	cmd.Flags().StringVar(&target, "target", "", "Target entity as type:id")
	cmd.Flags().StringVar(&event.Summary, "summary", "", "One-line description of what happened")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func runEventCommit(event store.Event) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	result, err := a.emergence.OnEventCommitted(ctx, event)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Event %s committed.\n", result.EventID)
	if len(result.Opportunities) == 0 {
		return nil
	}
	fmt.Fprintf(os.Stdout, "Emergence opportunities (%d):\n", len(result.Opportunities))
	for _, opp := range result.Opportunities {
		fmt.Fprintf(os.Stdout, "  - %s %s toward %s (confidence %.2f): %s\n",
			opp.Entity, opp.Type, opp.Toward, opp.Confidence, opp.Reason)
	}
	return nil
}

// splitParticipant accepts any type:id pair. Events may name participants,
// such as the narrator, that never hold relationships.
func splitParticipant(flag, value string) (string, string, error) {
	if strings.TrimSpace(value) == "" {
		return "", "", nil
	}
	kind, id, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || kind == "" || strings.TrimSpace(id) == "" {
		return "", "", fmt.Errorf("%s: invalid participant %q: expected type:id", flag, value)
	}
	return strings.ToLower(kind), strings.TrimSpace(id), nil
}
