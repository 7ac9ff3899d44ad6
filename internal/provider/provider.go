// Package provider lists the selectable model backends and builds a client
// for the selected one. Only Gemini is connected.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"multichat/internal/conversation"
	"multichat/internal/gemini"
)

// ID identifies a provider.
type ID string

const (
	IDGemini  ID = "gemini"
	IDChatGPT ID = "chatgpt"
	IDClaude  ID = "claude"
	IDAzure   ID = "azure"
)

var (
	// ErrNotConnected is returned for listed providers that have no backend.
	ErrNotConnected = errors.New("provider is not connected")
	// ErrMissingAPIKey is returned when a connected provider has no key.
	ErrMissingAPIKey = conversation.ErrMissingAPIKey
	// ErrUnknown is returned for IDs outside the catalog.
	ErrUnknown = errors.New("unknown provider")
)

// Provider is one entry in the selector.
type Provider struct {
	ID        ID
	Name      string
	Icon      string // Material icon name
	Glyph     string // terminal rendering of Icon
	Connected bool
}

// Client produces replies for a conversation.
type Client = conversation.Generator

var catalog = []Provider{
	{ID: IDGemini, Name: "Gemini", Icon: "auto_awesome", Glyph: "✦", Connected: true},
	{ID: IDChatGPT, Name: "ChatGPT", Icon: "smart_toy", Glyph: "◉"},
	{ID: IDClaude, Name: "Claude", Icon: "psychology", Glyph: "✺"},
	{ID: IDAzure, Name: "Azure", Icon: "cloud", Glyph: "☁"},
}

// Catalog returns the providers in display order.
func Catalog() []Provider {
	return append([]Provider(nil), catalog...)
}

// Default returns the first provider.
func Default() Provider {
	return catalog[0]
}

// Lookup matches an ID or display name, ignoring case.
func Lookup(name string) (Provider, bool) {
	name = strings.TrimSpace(name)
	for _, p := range catalog {
		if strings.EqualFold(string(p.ID), name) || strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Provider{}, false
}

// Index returns the catalog position of id, or -1.
func Index(id ID) int {
	for i, p := range catalog {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Label is "<glyph> <name>" for menus and headers.
func (p Provider) Label() string {
	return p.Glyph + " " + p.Name
}

// Options configures NewClient.
type Options struct {
	Model         string
	GeminiOptions []gemini.Option
}

// NewClient builds the client for p.
func NewClient(ctx context.Context, p Provider, apiKey string, opts Options) (Client, error) {
	switch p.ID {
	case IDGemini:
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		gopts := append([]gemini.Option{gemini.WithModel(opts.Model)}, opts.GeminiOptions...)
		svc, err := gemini.New(ctx, apiKey, gopts...)
		if err != nil {
			return nil, err
		}
		return svc, nil

	case IDChatGPT, IDClaude, IDAzure:
		return nil, fmt.Errorf("%s: %w", p.Name, ErrNotConnected)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknown, p.ID)
	}
}
