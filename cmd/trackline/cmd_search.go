package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackline/trackline/internal/search"
	"github.com/trackline/trackline/internal/service"
)

func searchCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search work items across all tracked subtypes",
		Long: `Searches defects, stories, quality stories, epics, features, tasks,
requirements and tests in parallel and prints the merged results.

With --interactive, terms are read from stdin line by line and the search
runs once typing pauses, so intermediate input never hits the server.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			svc := newService(logger)
			if err := svc.Initialize(ctx); err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if interactive {
				return runInteractiveSearch(ctx, svc)
			}
			if len(args) != 1 {
				return fmt.Errorf("search: a term is required unless --interactive is set")
			}

			results, err := svc.Search(ctx, args[0])
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			printSearchResults(results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&interactive, "interactive", false, "read terms from stdin, searching once typing pauses")
	return cmd
}

func runInteractiveSearch(ctx context.Context, svc *service.Service) error {
	it := search.NewInteractive(svc.Search, search.DefaultQuietWindow, func(term string, results []search.ResultItem, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "search %q: %v\n", term, err)
			return
		}
		fmt.Printf("-- %s --\n", term)
		printSearchResults(results)
	})
	defer it.Stop()

	fmt.Fprintln(os.Stderr, "Type a search term per line (Ctrl-D to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		it.Update(ctx, strings.TrimSpace(scanner.Text()))
	}
	return scanner.Err()
}

func printSearchResults(results []search.ResultItem) {
	for i := range results {
		r := &results[i]
		if r.NoResults {
			fmt.Println("No results found.")
			return
		}
		fmt.Printf("[%d] %s #%s: %s\n", i+1, r.Subtype, r.ID, truncate(r.Name, 80))
		if r.Highlight != "" {
			fmt.Printf("    %s\n", truncate(r.Highlight, 120))
		}
	}
}
