package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jdelaire/sentinelbot/internal/config"
	"github.com/jdelaire/sentinelbot/internal/keychain"
	"github.com/spf13/cobra"
)

func newKeychainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keychain",
		Short: "Manage the bot token stored in the OS keychain",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-token [token]",
		Short: "Store the bot token (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("token must not be empty")
			}
			if err := keychain.Set(config.TokenAccount, token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "token stored")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete-token",
		Short: "Remove the stored bot token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keychain.Delete(config.TokenAccount); err != nil {
				return fmt.Errorf("delete token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "token deleted")
			return nil
		},
	})
	return cmd
}
