package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rolecraft/internal/store"
)

func sceneUnlockCmd() *cobra.Command {
	var gameID, unlockedBy string
	var turn int
	cmd := &cobra.Command{
		Use:   "unlock <scene-id>",
		Short: "Make a locked scene available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				avail, err := a.scenes.UnlockScene(ctx, gameID, args[0], turn, unlockedBy)
				if err != nil {
					return err
				}
				if avail == nil || avail.UnlockedTurn == nil {
					return fmt.Errorf("no availability recorded for scene %s", args[0])
				}
				fmt.Fprintf(os.Stdout, "Scene %s unlocked on turn %d.\n", avail.SceneID, *avail.UnlockedTurn)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game the scene belongs to (required)")
	cmd.Flags().IntVar(&turn, "turn", 0, "Turn the scene becomes available")
	cmd.Flags().StringVar(&unlockedBy, "by", "", "Event or scene that unlocked it")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func sceneConnectCmd() *cobra.Command {
	var conn store.SceneConnection
	var connectionType string
	cmd := &cobra.Command{
		Use:   "connect <from-scene-id> <to-scene-id>",
		Short: "Add or update a directed connection between two scenes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn.FromSceneID, conn.ToSceneID = args[0], args[1]
			conn.ConnectionType = store.ConnectionType(strings.ToLower(strings.TrimSpace(connectionType)))
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.scenes.ConnectScenes(ctx, conn); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Connected %s -> %s (%s).\n", conn.FromSceneID, conn.ToSceneID, conn.ConnectionType)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&conn.GameID, "game", "", "Game both scenes belong to (required)")
	cmd.Flags().StringVar(&connectionType, "type", string(store.ConnectionPath), "path, conditional, hidden, one-way or teleport")
	cmd.Flags().StringVar(&conn.Requirements, "requirements", "", "What it takes to use the connection")
	cmd.Flags().StringVar(&conn.Description, "description", "", "How the scenes are linked")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func sceneAvailableCmd() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "available",
		Short: "List unlocked scenes that are still active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				scenes, err := a.scenes.GetAvailableScenes(ctx, gameID)
				if err != nil {
					return err
				}
				if len(scenes) == 0 {
					fmt.Fprintln(os.Stdout, "No available scenes.")
					return nil
				}
				for _, s := range scenes {
					printScene(os.Stdout, s)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game to list (required)")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func sceneConnectedCmd() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "connected <scene-id>",
		Short: "List unlocked scenes reachable from a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				connected, err := a.scenes.GetConnectedScenes(ctx, gameID, args[0])
				if err != nil {
					return err
				}
				if len(connected) == 0 {
					fmt.Fprintf(os.Stdout, "No unlocked scenes reachable from %s.\n", args[0])
					return nil
				}
				for _, c := range connected {
					fmt.Fprintf(os.Stdout, "  --%s--> ", c.Connection.ConnectionType)
					printScene(os.Stdout, c.Scene)
					if c.Connection.Requirements != "" {
						fmt.Fprintf(os.Stdout, "      requires: %s\n", c.Connection.Requirements)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game the scene belongs to (required)")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func sceneSummaryCmd() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "summary <scene-id>",
		Short: "Show a scene with its event count and unlock state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				summary, err := a.scenes.GetSceneSummary(ctx, gameID, args[0])
				if err != nil {
					return err
				}
				if summary == nil {
					fmt.Fprintf(os.Stdout, "No scene %s in game %s.\n", args[0], gameID)
					return nil
				}
				printScene(os.Stdout, summary.Scene)
				fmt.Fprintf(os.Stdout, "  Events:   %d\n", summary.EventCount)
				fmt.Fprintf(os.Stdout, "  Current:  %t\n", summary.IsCurrent)
				fmt.Fprintf(os.Stdout, "  Unlocked: %t\n", summary.Unlocked)
				if summary.UnlockedTurn != nil {
					fmt.Fprintf(os.Stdout, "  Unlocked on turn %d", *summary.UnlockedTurn)
					if summary.UnlockedBy != "" {
						fmt.Fprintf(os.Stdout, " by %s", summary.UnlockedBy)
					}
					fmt.Fprintln(os.Stdout)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game the scene belongs to (required)")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}
