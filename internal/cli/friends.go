package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newFriendsCmd() *cobra.Command {
	friendsCmd := &cobra.Command{
		Use:   "friends",
		Short: "Friend management commands",
	}

	friendsCmd.AddCommand(newFriendsListCmd())
	friendsCmd.AddCommand(newFriendsRequestsCmd())
	friendsCmd.AddCommand(newFriendsAddCmd())
	friendsCmd.AddCommand(newFriendsAcceptCmd())
	friendsCmd.AddCommand(newFriendsDeclineCmd())

	return friendsCmd
}

func newFriendsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your friends",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result FriendsResult

			if err := client.Get("/friends", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newFriendsRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "List pending incoming friend requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result FriendRequestsResult

			if err := client.Get("/friends/requests", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newFriendsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"name": args[0]}

			if err := client.Post("/friends/requests", body, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Friend request sent")
			return nil
		},
	}
}

func newFriendsAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <name>",
		Short: "Accept a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/friends/requests/" + url.PathEscape(args[0]) + "/accept"
			if err := client.Post(path, nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Friend request accepted")
			return nil
		},
	}
}

func newFriendsDeclineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decline <name>",
		Short: "Decline a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/friends/requests/" + url.PathEscape(args[0]) + "/decline"
			if err := client.Post(path, nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Friend request declined")
			return nil
		},
	}
}
