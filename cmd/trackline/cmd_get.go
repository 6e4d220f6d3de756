package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trackline/trackline/internal/service"
)

func getCmd() *cobra.Command {
	var (
		entityType string
		subtype    string
	)

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch one work item with its references resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			id := args[0]

			if entityType == "" && subtype == "" {
				return fmt.Errorf("get: at least one of --type and --subtype is required")
			}

			svc := newService(logger)
			if err := svc.Initialize(ctx); err != nil {
				return fmt.Errorf("get: %w", err)
			}

			entity, err := svc.GetEntity(ctx, entityType, subtype, id)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			fmt.Printf("%s%s\n", service.CommitMessagePrefix(entity), entity.Name)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entity)
		},
	}

	cmd.Flags().StringVar(&entityType, "type", "work_item", "coarse entity type")
	cmd.Flags().StringVar(&subtype, "subtype", "", "concrete entity kind (defect, story, ...)")
	return cmd
}
