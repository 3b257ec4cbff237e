package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Game action commands",
	}

	gameCmd.AddCommand(newGameClickCmd())
	gameCmd.AddCommand(newGameBuyCmd())
	gameCmd.AddCommand(newGameUpgradesCmd())
	gameCmd.AddCommand(newGameSuggestCmd())

	return gameCmd
}

type actionBody struct {
	Type string `json:"type"`
	Data struct {
		UpgradeID string `json:"upgrade_id,omitempty"`
	} `json:"data"`
}

type batchBody struct {
	Actions []actionBody `json:"actions"`
}

func newGameClickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "click [count]",
		Short: "Submit click actions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return err
				}
				count = n
			}

			var body batchBody
			for i := 0; i < count; i++ {
				body.Actions = append(body.Actions, actionBody{Type: "click"})
			}

			var result PlayerState
			if err := client.Post("/game/actions", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <upgrade-id>",
		Short: "Buy an upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body batchBody
			action := actionBody{Type: "buy_upgrade"}
			action.Data.UpgradeID = args[0]
			body.Actions = append(body.Actions, action)

			var result PlayerState
			if err := client.Post("/game/actions", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameUpgradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrades",
		Short: "List purchasable upgrades with current prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CatalogResult

			if err := client.Get("/upgrades", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameSuggestCmd() *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate an upgrade suggestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{}
			if theme != "" {
				body["theme"] = theme
			}

			var result Suggestion
			if err := client.Post("/generate_upgrade", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Theme for the suggestion")

	return cmd
}
