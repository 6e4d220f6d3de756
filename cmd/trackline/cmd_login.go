package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackline/trackline/internal/auth"
)

func loginCmd() *cobra.Command {
	var (
		useBrowser bool
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create a session against the remote service",
		Long: `Authenticates against the configured server and persists the session.

With --browser the service's interactive flow is used: a login page opens
in your browser and trackline polls until the sign-in completes (up to
100 seconds). Otherwise a password is read from --password or stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			c := newClient(logger)
			sessions := newSessionManager(c, logger)

			login := auth.LoginData{
				URI:       cfg.Server.URI,
				User:      cfg.Server.User,
				Space:     cfg.Server.Space,
				Workspace: cfg.Server.Workspace,
				Browser:   useBrowser,
			}

			if !useBrowser {
				if password == "" {
					fmt.Fprint(os.Stderr, "Password: ")
					reader := bufio.NewReader(os.Stdin)
					line, err := reader.ReadString('\n')
					if err != nil {
						return fmt.Errorf("login: reading password: %w", err)
					}
					password = strings.TrimRight(line, "\r\n")
				}
				login.Password = password
			}

			sess, err := sessions.CreateSession(ctx, login)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			fmt.Printf("Logged in as %s (%s session)\n", sess.Account.ID, sess.Type)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useBrowser, "browser", false, "authenticate interactively in a browser")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	return cmd
}
