package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			c := newClient(logger)
			sessions := newSessionManager(c, logger)

			stored := sessions.GetSessions(ctx)
			if len(stored) == 0 {
				fmt.Println("Not logged in.")
				return nil
			}

			sess := stored[0]
			fmt.Printf("Logged in as %s (%s session) against %s\n", sess.Account.ID, sess.Type, cfg.Server.URI)
			return nil
		},
	}
}
