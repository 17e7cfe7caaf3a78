package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rolecraft/internal/store"
)

func evolutionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evolution",
		Short: "Review proposed trait and relationship changes",
	}
	cmd.AddCommand(evolutionListCmd())
	cmd.AddCommand(evolutionDetectCmd())
	cmd.AddCommand(evolutionApproveCmd())
	cmd.AddCommand(evolutionEditCmd())
	cmd.AddCommand(evolutionRefuseCmd())
	return cmd
}

func printEvolution(out io.Writer, evo store.PendingEvolution) {
	var change string
	switch evo.EvolutionType {
	case store.EvolutionTraitAdd:
		change = "+" + evo.Trait
	case store.EvolutionTraitRemove:
		change = "-" + evo.Trait
	case store.EvolutionRelationshipChange:
		target := "?"
		if evo.Target != nil {
			target = evo.Target.String()
		}
		change = fmt.Sprintf("%s -> %s %s %s", evo.Entity, target, evo.Dimension, formatValues(evo.OldValue, evo.NewValue))
	}
	if evo.EvolutionType != store.EvolutionRelationshipChange {
		change = evo.Entity.String() + " " + change
	}

	fmt.Fprintf(out, "%s  [%s] turn %d  %s  %s\n", evo.ID, evo.Status, evo.Turn, evo.EvolutionType, change)
	if reason := strings.TrimSpace(evo.Reason); reason != "" {
		fmt.Fprintf(out, "    reason: %s\n", reason)
	}
	if notes := strings.TrimSpace(evo.DMNotes); notes != "" {
		fmt.Fprintf(out, "    notes: %s\n", notes)
	}
}

func formatValues(oldValue, newValue *float64) string {
	format := func(v *float64) string {
		if v == nil {
			return "?"
		}
		return fmt.Sprintf("%.2f", *v)
	}
	return format(oldValue) + " -> " + format(newValue)
}
