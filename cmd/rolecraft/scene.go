package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rolecraft/internal/scene"
	"rolecraft/internal/store"
)

func sceneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Manage scene lifecycle and the scene graph",
	}
	cmd.AddCommand(sceneCreateCmd())
	cmd.AddCommand(sceneTransitionCmd("start", "Make a scene the game's current scene, unlocking it if needed",
		func(m *scene.Manager) transitionFunc { return m.StartScene }))
	cmd.AddCommand(sceneTransitionCmd("complete", "Mark an active scene completed",
		func(m *scene.Manager) transitionFunc { return m.CompleteScene }))
	cmd.AddCommand(sceneTransitionCmd("abandon", "Mark an active scene abandoned",
		func(m *scene.Manager) transitionFunc { return m.AbandonScene }))
	cmd.AddCommand(sceneUnlockCmd())
	cmd.AddCommand(sceneConnectCmd())
	cmd.AddCommand(sceneAvailableCmd())
	cmd.AddCommand(sceneConnectedCmd())
	cmd.AddCommand(sceneSummaryCmd())
	return cmd
}

func sceneCreateCmd() *cobra.Command {
	var in scene.CreateInput
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an active scene, unlocked unless --locked is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return withApp(func(ctx context.Context, a *app) error {
				created, err := a.scenes.CreateScene(ctx, in)
				if err != nil {
					return err
				}
				printScene(os.Stdout, *created)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.GameID, "game", "", "Game the scene belongs to (required)")
	cmd.Flags().StringVar(&in.ID, "id", "", "Scene id (generated when empty)")
	cmd.Flags().StringVar(&in.Description, "description", "", "What the scene is about")
	cmd.Flags().StringVar(&in.SceneType, "type", "", "Scene kind, e.g. combat or social")
	cmd.Flags().StringVar(&in.LocationID, "location", "", "Location the scene takes place in")
	cmd.Flags().StringVar(&in.Mood, "mood", "", "Tone of the scene")
	cmd.Flags().StringVar(&in.Stakes, "stakes", "", "What is at risk")
	cmd.Flags().IntVar(&in.Turn, "turn", 0, "Turn the scene starts on")
	cmd.Flags().BoolVar(&in.StartLocked, "locked", false, "Keep the scene unavailable until it is unlocked")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

type transitionFunc func(ctx context.Context, gameID, sceneID string, turn int) (*store.Scene, error)

func sceneTransitionCmd(name, short string, pick func(*scene.Manager) transitionFunc) *cobra.Command {
	var gameID string
	var turn int
	cmd := &cobra.Command{
		Use:   name + " <scene-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				updated, err := pick(a.scenes)(ctx, gameID, args[0], turn)
				if err != nil {
					return err
				}
				printScene(os.Stdout, *updated)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game the scene belongs to (required)")
	cmd.Flags().IntVar(&turn, "turn", 0, "Turn the transition happens on")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

// withApp opens the project for one command and closes it afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	return fn(ctx, a)
}

func printScene(out io.Writer, s store.Scene) {
	fmt.Fprintf(out, "%s  %q  [%s] started turn %d", s.ID, s.Name, s.Status, s.StartedTurn)
	if s.CompletedTurn != nil {
		fmt.Fprintf(out, ", ended turn %d", *s.CompletedTurn)
	}
	fmt.Fprintln(out)
}
