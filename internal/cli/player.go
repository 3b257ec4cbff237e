package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	playerCmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	playerCmd.AddCommand(newPlayerRegisterCmd())
	playerCmd.AddCommand(newPlayerShowCmd())
	playerCmd.AddCommand(newPlayerTokenValidCmd())

	return playerCmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a new player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RegisterResult
			body := map[string]string{"name": args[0]}

			if err := client.Post("/register", body, &result); err != nil {
				return err
			}

			if save {
				if err := cfg.SaveToken(result.Token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", true, "Save the token to the token file")

	return cmd
}

func newPlayerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <token-or-name>",
		Short: "Show a player's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerState

			if err := client.Get("/player_data/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayerTokenValidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token-valid",
		Short: "Check whether the configured token is valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			var valid bool

			if err := client.Get("/token_valid", &valid); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if valid {
				out.PrintMessage("Token is valid")
			} else {
				out.PrintMessage("Token is invalid")
			}
			return nil
		},
	}
}
