package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "userdata",
		Short: "Terminal client for userdata logins",
		Long: `userdata logs in to userdata servers from a terminal and talks to the
host server that embeds them.

It can run the interactive login and settings flows, compute login frame
addresses, manage the cached login and inspect host server links.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			client = NewClient(cfg.HostURL, cfg.APIKey)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.HostURL, "host", cfg.HostURL, "Host server URL (env: USERDATA_HOST)")
	rootCmd.PersistentFlags().StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "Host server API key (env: USERDATA_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&cfg.CacheFile, "cache-file", cfg.CacheFile, "Credential cache file (env: USERDATA_CACHE_FILE)")
	rootCmd.PersistentFlags().IntVar(&cfg.HostID, "host-id", cfg.HostID, "Host id sent with login calls")
	rootCmd.PersistentFlags().StringVar(&cfg.Lang, "lang", cfg.Lang, "Prompt language (env: USERDATA_LANG)")
	rootCmd.PersistentFlags().StringVar(&cfg.LangDir, "lang-dir", cfg.LangDir, "Directory of <lang>.yaml catalogs (env: USERDATA_LANG_DIR)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newFrameURLCmd())
	rootCmd.AddCommand(newAddressCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
