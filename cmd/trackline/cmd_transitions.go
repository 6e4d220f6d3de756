package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func transitionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transitions [phase-id]",
		Short: "List the legal workflow transitions out of a phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			phaseID := args[0]

			svc := newService(logger)
			if err := svc.Initialize(ctx); err != nil {
				return fmt.Errorf("transitions: %w", err)
			}

			transitions := svc.TransitionsForPhase(phaseID)
			if len(transitions) == 0 {
				fmt.Printf("No transitions out of phase %s.\n", phaseID)
				return nil
			}
			for _, t := range transitions {
				fmt.Printf("%s: %s -> %s (%s)\n", t.Entity, t.SourcePhase.Name, t.TargetPhase.Name, t.LogicalName)
			}
			return nil
		},
	}
	return cmd
}
