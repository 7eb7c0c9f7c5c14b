package cmd

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joescharf/jules/internal/keystore"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Jules API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authShowRun()
	},
}

var authSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key (prompts if not given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) > 0 {
			key = args[0]
		}
		return authSetRun(key)
	},
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show whether an API key is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authShowRun()
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authClearRun()
	},
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authClearCmd)
	rootCmd.AddCommand(authCmd)
}

func authSetRun(key string) error {
	if key == "" {
		fmt.Fprint(ui.Out, "API key: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(ui.Out)
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key = strings.TrimSpace(string(raw))
	}
	if key == "" {
		return fmt.Errorf("empty API key")
	}

	ks, err := getKeystore()
	if err != nil {
		return err
	}
	if err := ks.Set(context.Background(), keystore.APIKeyName, key); err != nil {
		return err
	}

	// Update the live config so this same process can keep working.
	apiConfig.SetAPIKey(key)
	ui.Success("API key stored")
	return nil
}

func authShowRun() error {
	key := apiConfig.APIKey()
	if key == "" {
		ui.Warning("No API key configured. Run: jules auth set")
		return nil
	}
	masked := strings.Repeat("*", 8)
	if len(key) > 4 {
		masked += key[len(key)-4:]
	}
	ui.Info("API key configured (%s)", masked)
	return nil
}

func authClearRun() error {
	ks, err := getKeystore()
	if err != nil {
		return err
	}
	if err := ks.Delete(context.Background(), keystore.APIKeyName); err != nil {
		return err
	}
	apiConfig.SetAPIKey("")
	ui.Success("API key removed")
	return nil
}
