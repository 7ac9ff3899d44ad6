package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"multichat/cmd/multichat/chat"
	"multichat/internal/config"
	"multichat/internal/keystore"
	"multichat/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	// Logger
	logger *zap.Logger

	// clientFactory builds turn clients. Tests swap it for a fake.
	clientFactory chat.ClientFactory
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "multichat",
	Short: "multichat - a terminal chat client for Gemini, ChatGPT, Claude and Azure",
	Long: `multichat is a single-conversation chat client for the terminal.

Gemini is the only connected provider; the others are listed in the
selector but refuse to send. The Gemini API key is kept in a local
storage file under the config directory.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it owns the terminal)
		if cmd == cmd.Root() {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <config dir>/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultLLMTimeout, "Per-turn timeout")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the loaded configuration and key store shared by every command.
type app struct {
	cfg   *config.Config
	dir   string
	store *keystore.Store
}

// loadApp resolves the config dir, reads config, starts file logging and
// opens the key store.
func loadApp(cmd *cobra.Command) (*app, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	path := configPath
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		cfg.LLM.Timeout = timeout.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := logging.Initialize(dir, cfg.Logging.Options()); err != nil {
		// File logs are optional; the commands still work.
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}

	store, err := keystore.Open(cfg.KeyFilePath(dir))
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}

	if logger != nil {
		logger.Debug("config loaded",
			zap.String("path", path),
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
			zap.String("store", store.Path()))
	}
	return &app{cfg: cfg, dir: dir, store: store}, nil
}

// runInteractiveChat launches the TUI.
func runInteractiveChat(cmd *cobra.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	return chat.RunInteractiveChat(chat.Config{
		App:       a.cfg,
		Store:     a.store,
		NewClient: clientFactory,
	})
}
