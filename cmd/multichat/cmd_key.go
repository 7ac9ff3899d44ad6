package main

import (
	"fmt"
	"strings"

	"multichat/internal/keystore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// keyCmd manages the stored Gemini API key
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored Gemini API key",
	Long: `Reads and writes the Gemini API key in the local storage file.
Get a key from https://aistudio.google.com/app/apikey.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		value := strings.TrimSpace(args[0])
		if value == "" {
			return fmt.Errorf("API key must not be empty")
		}
		if err := a.store.Set(keystore.GeminiAPIKey, value); err != nil {
			return err
		}
		logger.Info("API key stored", zap.String("path", a.store.Path()))
		fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored key, masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		v, ok := a.store.Get(keystore.GeminiAPIKey)
		if !ok || v == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No API key stored.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), maskKey(v))
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		if err := a.store.Remove(keystore.GeminiAPIKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
		return nil
	},
}

var keyPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the local storage file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.store.Path())
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyCmd.AddCommand(keyPathCmd)
}

// maskKey hides all but the last four characters.
func maskKey(v string) string {
	r := []rune(v)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
