package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent search terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			svc := newService(logger)
			terms, err := svc.SearchHistory()
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}

			if len(terms) == 0 {
				fmt.Println("No search history.")
				return nil
			}
			for i, term := range terms {
				fmt.Printf("%d. %s\n", i+1, term)
			}
			return nil
		},
	}
}
