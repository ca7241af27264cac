package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/embed"
	"github.com/mcoot/userdata-go/internal/model"
)

func newFrameURLCmd() *cobra.Command {
	var (
		external bool
		address  string
		gameURL  string
		gcid     string
		dcid     string
		settings embed.Settings
	)

	cmd := &cobra.Command{
		Use:   "frame-url",
		Short: "Print the login frame address a host page would load",
		Long: `Compute the login frame source for a local or external userdata server.

With --external the address comes from --address, falling back to the
address stored by "userdata address store".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := embed.Local
			if external {
				if address == "" {
					address, _ = credcache.New(credcache.NewFileStore(cfg.CacheFile, logger)).Address()
				}
				address = strings.TrimSpace(address)
				if address == "" {
					return model.ErrEmptyAddress
				}
				target = embed.External(address)
			} else if settings.LocalUserdata == "" {
				return fmt.Errorf("--local-userdata is required for a local frame")
			}

			src := embed.BuildFrameURL(target, gameURL, gcid, dcid, settings)
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(FrameURL{URL: src})
			return nil
		},
	}

	cmd.Flags().BoolVar(&external, "external", false, "Use an external userdata server")
	cmd.Flags().StringVar(&address, "address", "", "External userdata server address")
	cmd.Flags().StringVar(&gameURL, "game-url", "", "Host game URL passed to external servers")
	cmd.Flags().StringVar(&gcid, "gcid", "", "Game connection id")
	cmd.Flags().StringVar(&dcid, "dcid", "", "Device connection id for the local server")
	cmd.Flags().StringVar(&settings.LocalUserdata, "local-userdata", "", "Local userdata server address")
	cmd.Flags().BoolVar(&settings.AllowNewPlayers, "allow-new-players", false, "Allow registration on the local server")
	cmd.Flags().BoolVar(&settings.Logout, "logout", false, "Ask the frame to log out")

	return cmd
}

func newAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Manage the stored external userdata server address",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "store <address>",
		Short: "Store the external userdata server address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := strings.TrimSpace(args[0])
			if address == "" {
				return model.ErrEmptyAddress
			}
			if err := credcache.New(credcache.NewFileStore(cfg.CacheFile, logger)).SetAddress(address); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Server details stored")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored external userdata server address",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, ok := credcache.New(credcache.NewFileStore(cfg.CacheFile, logger)).Address()
			if !ok {
				return fmt.Errorf("no address stored")
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(address)
			return nil
		},
	})

	return cmd
}

func newLogoutCmd() *cobra.Command {
	var surface string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached login",
		Long: `Clear the cached credentials. With --surface the userdata server behind
that login surface is first asked to end the game session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := credcache.New(credcache.NewFileStore(cfg.CacheFile, logger))
			if surface != "" {
				if err := remoteLogout(cmd.Context(), surface, cache, logger); err != nil {
					return err
				}
			}
			if err := cache.Clear(); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Cached credentials cleared")
			return nil
		},
	}

	cmd.Flags().StringVar(&surface, "surface", "", "Login surface whose server should end the session")

	return cmd
}
