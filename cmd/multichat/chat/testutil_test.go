// Package chat provides test utilities for TUI testing.
// This file contains fakes and helpers shared by the chat tests.
package chat

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"multichat/internal/config"
	"multichat/internal/conversation"
	"multichat/internal/keystore"
	"multichat/internal/provider"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// FAKE CLIENT
// =============================================================================

// fakeClient answers every turn with a fixed reply or error.
type fakeClient struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]conversation.Message
}

func (f *fakeClient) Generate(_ context.Context, messages []conversation.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	return f.reply, f.err
}

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// factoryFor returns a factory that hands out fc for Gemini and defers to
// provider.NewClient for anything else. Turns always ask for Gemini, so
// any other request would surface as ErrNotConnected.
func factoryFor(fc *fakeClient) ClientFactory {
	return func(ctx context.Context, p provider.Provider, apiKey string) (provider.Client, error) {
		if p.ID == provider.IDGemini {
			return fc, nil
		}
		return provider.NewClient(ctx, p, apiKey, provider.Options{})
	}
}

// =============================================================================
// MODEL FIXTURES
// =============================================================================

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
}

// newTestStore opens an empty key store in a temp dir.
func newTestStore(t *testing.T) *keystore.Store {
	t.Helper()
	s, err := keystore.Open(filepath.Join(t.TempDir(), "keys.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

// NewTestModel builds a sized model with a temp store and a fake client.
func NewTestModel(t *testing.T, fc *fakeClient) Model {
	t.Helper()
	return newTestModelWith(t, fc, newTestStore(t), config.DefaultConfig())
}

func newTestModelWith(t *testing.T, fc *fakeClient, store *keystore.Store, cfg *config.Config) Model {
	t.Helper()
	if fc == nil {
		fc = &fakeClient{reply: "ok"}
	}
	m := InitChat(Config{
		App:       cfg,
		Store:     store,
		NewClient: factoryFor(fc),
		PickerDir: t.TempDir(),
	})
	t.Cleanup(m.Shutdown)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

// press sends one key through Update.
func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func keyType(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func altRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

// collect runs cmd and flattens batches into the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

// findReply returns the first replyMsg produced by cmd.
func findReply(t *testing.T, cmd tea.Cmd) replyMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if r, ok := msg.(replyMsg); ok {
			return r
		}
	}
	t.Fatal("command produced no replyMsg")
	return replyMsg{}
}
