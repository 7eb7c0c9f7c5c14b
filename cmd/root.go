package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/jules/internal/api"
	"github.com/joescharf/jules/internal/keystore"
	"github.com/joescharf/jules/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	apiConfig *api.Config
	apiClient *api.Client
	keys      *keystore.Store

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jules",
	Short: "Drive remote Jules agent sessions from the terminal",
	Long: `jules is a client for the Jules asynchronous-agent API.
It creates remote agent sessions, follows their activity logs live,
sends follow-up messages, approves plans, and browses sources.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return listRun()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/jules/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "jules")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("JULES")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "jules")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("keystore_path", filepath.Join(defaultConfigDir, "keystore.db"))
	viper.SetDefault("base_url", api.DefaultBaseURL)
	viper.SetDefault("poll_interval", "5s")
	viper.SetDefault("api_key", "")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// The API key can come from env/config (JULES_API_KEY or api_key)
	// or, failing that, the keystore written by 'jules auth set'.
	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		if ks, err := getKeystore(); err == nil {
			apiKey, _ = ks.Get(context.Background(), keystore.APIKeyName)
		}
	}

	apiConfig = api.NewConfig(apiKey)
	if base := viper.GetString("base_url"); base != "" {
		apiConfig.SetBaseURL(base)
	}
	apiClient = api.NewClient(apiConfig)
}

// getKeystore returns the shared keystore, opening it on first call.
func getKeystore() (*keystore.Store, error) {
	if keys != nil {
		return keys, nil
	}
	ks, err := keystore.Open(viper.GetString("keystore_path"))
	if err != nil {
		return nil, fmt.Errorf("open keystore: %w", err)
	}
	keys = ks
	return keys, nil
}
