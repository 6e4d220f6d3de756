package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields [entity-type]",
		Short: "List the visible field schema for an entity type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			entityType := args[0]

			svc := newService(logger)
			fields, err := svc.FieldsForType(ctx, entityType)
			if err != nil {
				return fmt.Errorf("fields: %w", err)
			}

			if len(fields) == 0 {
				fmt.Printf("No visible fields for %q.\n", entityType)
				return nil
			}
			for _, f := range fields {
				marker := ""
				if f.IsReference() {
					marker = " ->"
					if f.FieldTypeData.Multiple {
						marker = " =>"
					}
				}
				fmt.Printf("%-28s %-10s %s%s\n", f.Name, f.FieldType, f.Label, marker)
			}
			return nil
		},
	}
	return cmd
}
