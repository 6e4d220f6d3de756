package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			c := newClient(logger)
			sessions := newSessionManager(c, logger)

			stored := sessions.GetSessions(ctx)
			if len(stored) == 0 {
				fmt.Println("No session stored.")
				return nil
			}

			sessions.RemoveSession(stored[0].ID)
			fmt.Println("Logged out.")
			return nil
		},
	}
}
