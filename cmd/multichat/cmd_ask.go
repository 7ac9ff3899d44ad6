package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"multichat/internal/attachment"
	"multichat/internal/conversation"
	"multichat/internal/keystore"
	"multichat/internal/provider"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	askProvider string
	askImage    string
)

// errAskMissingKey is ErrMissingAPIKey with a hint that works outside the TUI.
var errAskMissingKey = &missingKeyError{}

type missingKeyError struct{}

func (*missingKeyError) Error() string {
	return "Gemini API key is missing. Run \"multichat key set <key>\" or set GEMINI_API_KEY."
}

func (*missingKeyError) Unwrap() error { return conversation.ErrMissingAPIKey }

// askCmd runs one turn without the TUI
var askCmd = &cobra.Command{
	Use:   "ask [text...]",
	Short: "Send one message and print the reply",
	Long: `Sends a single user turn and prints the reply. Every provider label
is answered by Gemini; --provider only names the selection.

Examples:
  multichat ask "What is a goroutine?"
  multichat ask --image cat.png "Describe this picture"
  multichat ask --image cat.png`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProvider, "provider", "p", "", "Provider label (default: llm.provider)")
	askCmd.Flags().StringVarP(&askImage, "image", "i", "", "Image file to attach")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	name := askProvider
	if name == "" {
		name = a.cfg.LLM.Provider
	}
	selected, ok := provider.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", provider.ErrUnknown, name)
	}
	p := provider.Default()

	var img *attachment.Image
	if askImage != "" {
		img, err = attachment.Load(askImage, a.cfg.ImageLimit())
		if err != nil {
			return err
		}
	}

	text := strings.Join(args, " ")
	if text == "" && img == nil {
		return conversation.ErrEmptyMessage
	}

	apiKey := a.cfg.SeedAPIKey
	if v, ok := a.store.Get(keystore.GeminiAPIKey); ok && v != "" {
		apiKey = v
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, a.cfg.LLM.GetTimeout())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("Sending turn",
		zap.String("selected", string(selected.ID)),
		zap.String("backend", string(p.ID)),
		zap.Int("chars", len(text)),
		zap.Bool("image", img != nil))

	if apiKey == "" {
		return errAskMissingKey
	}

	factory := clientFactory
	if factory == nil {
		model := a.cfg.LLM.Model
		factory = func(ctx context.Context, p provider.Provider, key string) (provider.Client, error) {
			return provider.NewClient(ctx, p, key, provider.Options{Model: model})
		}
	}
	client, err := factory(ctx, p, apiKey)
	if err != nil {
		return err
	}

	reply, err := conversation.New().Send(ctx, text, img, client, apiKey)
	if err != nil {
		logger.Warn("Turn failed", zap.Error(err))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}
