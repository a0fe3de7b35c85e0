// ABOUTME: Root Cobra command and global flags for the quill CLI.
// ABOUTME: Loads config, builds the logger, API client, and token store before each command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/api"
	"github.com/2389-research/quill/internal/blog"
	"github.com/2389-research/quill/internal/config"
	"github.com/2389-research/quill/internal/logging"
	"github.com/2389-research/quill/internal/storage"
)

var globalConfig *config.Config
var globalLogger = zap.NewNop()
var globalClient *api.Client
var globalTokens blog.TokenStore

// Flags
var (
	flagAPIURL  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Terminal client for a small blog",
	Long: `
 ██████╗ ██╗   ██╗██╗██╗     ██╗
██╔═══██╗██║   ██║██║██║     ██║
██║   ██║██║   ██║██║██║     ██║
██║▄▄ ██║██║   ██║██║██║     ██║
╚██████╔╝╚██████╔╝██║███████╗███████╗
 ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝╚══════╝

Read, write, and manage blog posts from the terminal.
Log in once; only the author of a post may change it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagAPIURL != "" {
			cfg.API.URL = flagAPIURL
		}
		globalConfig = cfg

		logPath, err := cfg.GetLogPath()
		if err != nil {
			return fmt.Errorf("failed to resolve log path: %w", err)
		}
		logger, err := logging.New(logPath, cfg.Log.Level, flagVerbose)
		if err != nil {
			return fmt.Errorf("failed to start logging: %w", err)
		}
		globalLogger = logger.With(zap.String("command", cmd.Name()))

		credPath, err := config.CredentialPath()
		if err != nil {
			return fmt.Errorf("failed to resolve credential path: %w", err)
		}
		globalTokens = storage.NewCredentialFile(credPath)

		globalClient = api.NewClient(cfg.API.URL,
			api.WithTimeout(cfg.API.Timeout),
			api.WithLogger(globalLogger),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = globalLogger.Sync()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Backend API base URL (overrides config and QUILL_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Write debug logs")
}
