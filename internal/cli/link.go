package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Host server link commands",
	}

	cmd.AddCommand(newLinkGetCmd())
	cmd.AddCommand(newLinkConnectCmd())
	cmd.AddCommand(newLinkLogoutCmd())
	cmd.AddCommand(newLinkDeleteCmd())

	return cmd
}

func newLinkGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <gcid>",
		Short: "Get link details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.GetLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newLinkConnectCmd() *cobra.Command {
	var (
		managed  string
		language string
	)

	cmd := &cobra.Command{
		Use:   "connect <gcid> <name>",
		Short: "Connect a player through a pending link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ConnectRequest{Name: args[1], Language: language}
			if managed != "" {
				req.Managed = &managed
			}

			result, err := client.Connect(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&managed, "managed", "", "Login name when the host manages the account")
	cmd.Flags().StringVar(&language, "language", "", "Player language")

	return cmd
}

func newLinkLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <gcid>",
		Short: "Log the player out and issue a replacement link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Logout(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newLinkDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <gcid>",
		Short: "Revoke a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gcid := args[0]

			if err := client.DeleteLink(cmd.Context(), gcid); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Link %s revoked", gcid))
			return nil
		},
	}
}
