package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"rolecraft/internal/evolution"
	"rolecraft/internal/store"
)

type resolveFunc func(ctx context.Context, a *app, id, notes string) (*store.PendingEvolution, error)

func evolutionApproveCmd() *cobra.Command {
	return resolveCmd("approve <id>", "Apply a pending evolution as proposed",
		func(ctx context.Context, a *app, id, notes string) (*store.PendingEvolution, error) {
			return a.evolution.Approve(ctx, id, notes)
		})
}

func evolutionRefuseCmd() *cobra.Command {
	return resolveCmd("refuse <id>", "Discard a pending evolution without applying it",
		func(ctx context.Context, a *app, id, notes string) (*store.PendingEvolution, error) {
			return a.evolution.Refuse(ctx, id, notes)
		})
}

func evolutionEditCmd() *cobra.Command {
	var entity, target, dimension, trait, reason string
	var value float64
	var changes evolution.Changes

	cmd := resolveCmd("edit <id>", "Change fields of a pending evolution and apply it",
		func(ctx context.Context, a *app, id, notes string) (*store.PendingEvolution, error) {
			return a.evolution.Edit(ctx, id, changes, notes)
		})

	// Flags are folded into changes before RunE so only the ones given
	// override the stored proposal.
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("entity") {
			ref, err := store.ParseEntityRef(entity)
			if err != nil {
				return err
			}
			changes.Entity = &ref
		}
		if flags.Changed("target") {
			ref, err := store.ParseEntityRef(target)
			if err != nil {
				return err
			}
			changes.Target = &ref
		}
		if flags.Changed("dimension") {
			dim, err := store.ParseDimension(dimension)
			if err != nil {
				return err
			}
			changes.Dimension = &dim
		}
		if flags.Changed("trait") {
			changes.Trait = &trait
		}
		if flags.Changed("value") {
			changes.NewValue = &value
		}
		if flags.Changed("reason") {
			changes.Reason = &reason
		}
		return nil
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Replacement entity as type:id")
	cmd.Flags().StringVar(&trait, "trait", "", "Replacement trait name")
	cmd.Flags().StringVar(&target, "target", "", "Replacement relationship target as type:id")
	cmd.Flags().StringVar(&dimension, "dimension", "", "Replacement relationship dimension")
	cmd.Flags().Float64Var(&value, "value", 0, "Replacement absolute value between 0 and 1")
	cmd.Flags().StringVar(&reason, "reason", "", "Replacement reason")
	return cmd
}

func resolveCmd(use, short string, fn resolveFunc) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			resolved, err := fn(ctx, a, args[0], notes)
			if err != nil {
				return err
			}
			printEvolution(os.Stdout, *resolved)
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Reviewer notes kept with the record")
	return cmd
}
