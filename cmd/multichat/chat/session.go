// Package chat provides the interactive TUI chat interface for multichat.
// This file contains model construction and lifecycle.
package chat

import (
	"context"
	"os"

	"multichat/cmd/multichat/ui"
	"multichat/internal/attachment"
	"multichat/internal/config"
	"multichat/internal/conversation"
	"multichat/internal/keystore"
	"multichat/internal/logging"
	"multichat/internal/provider"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const (
	headerHeight = 2
	footerHeight = 2
	inputHeight  = 3

	// renderCacheSize bounds memoized bot message bodies.
	renderCacheSize = 256
)

// InitChat builds the chat model. It never fails: a missing store or
// unreadable key surfaces as a status error in the UI.
func InitChat(cfg Config) Model {
	appCfg := cfg.App
	if appCfg == nil {
		appCfg = config.DefaultConfig()
	}

	styles := ui.NewStyles(ui.ThemeByName(appCfg.UI.Theme))

	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send, Alt+Enter for newline)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 16000
	ta.SetHeight(inputHeight)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	ki := textinput.New()
	ki.Placeholder = "API Key"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.CharLimit = 256
	ki.Width = 48

	h := help.New()
	h.Styles.ShortKey = styles.Bold
	h.Styles.ShortDesc = styles.Muted

	providers := provider.Catalog()
	selected := provider.Index(provider.ID(appCfg.LLM.Provider))
	if selected < 0 {
		selected = 0
	}

	newClient := cfg.NewClient
	if newClient == nil {
		model := appCfg.LLM.Model
		newClient = func(ctx context.Context, p provider.Provider, apiKey string) (provider.Client, error) {
			return provider.NewClient(ctx, p, apiKey, provider.Options{Model: model})
		}
	}

	pickerDir := cfg.PickerDir
	if pickerDir == "" {
		pickerDir, _ = os.Getwd()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		textarea:    ta,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		keyInput:    ki,
		help:        h,
		keys:        defaultKeyMap(),
		styles:      styles,
		bodies:      ui.NewRenderCache(renderCacheSize),
		viewMode:    ChatView,
		sessions:    conversation.NewSessionList(),
		showSidebar: appCfg.UI.SidebarOpen,
		sidebarW:    appCfg.UI.SidebarWidth,
		providers:   providers,
		selected:    selected,
		menuCursor:  selected,
		conv:        conversation.New(),
		imageLimit:  appCfg.ImageLimit(),
		store:       cfg.Store,
		newClient:   newClient,
		timeout:     appCfg.LLM.GetTimeout(),
		pickerDir:   pickerDir,
		ctx:         ctx,
		cancel:      cancel,
	}
	if m.sidebarW <= 0 {
		m.sidebarW = config.DefaultUIConfig().SidebarWidth
	}

	m.seedKey = appCfg.SeedAPIKey
	m.apiKey = m.seedKey
	if m.store != nil {
		if v, ok := m.store.Get(keystore.GeminiAPIKey); ok && v != "" {
			m.apiKey = v
		}
		if cfg.WatchKeys {
			changes, err := m.store.Watch(ctx)
			if err != nil {
				logging.BootWarn("key store watch disabled: %v", err)
			} else {
				m.storeChanges = changes
			}
		}
	}

	m.setRenderer(80)
	logging.Boot("chat initialized: provider=%s key=%v", m.currentProvider().ID, m.apiKey != "")
	return m
}

// RunInteractiveChat starts the TUI and blocks until it exits.
func RunInteractiveChat(cfg Config) error {
	cfg.WatchKeys = true
	model := InitChat(cfg)
	defer model.Shutdown()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForKeyChange(m.storeChanges),
	)
}

// Shutdown stops background watchers. Safe to call more than once.
func (m Model) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
}

func waitForKeyChange(ch <-chan keystore.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return keyChangedMsg{change: c}
	}
}

func (m Model) currentProvider() provider.Provider {
	return m.providers[m.selected]
}

func (m *Model) newFilePicker() {
	fp := filepicker.New()
	fp.AllowedTypes = attachment.Extensions
	fp.CurrentDirectory = m.pickerDir
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = max(m.height-headerHeight-footerHeight-4, 5)
	m.filepicker = fp
}

// setRenderer rebuilds the markdown renderer when the wrap width changes.
func (m *Model) setRenderer(width int) {
	if width < 20 {
		width = 20
	}
	if m.renderer != nil && m.renderW == width {
		return
	}
	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("markdown renderer: %v", err)
		return
	}
	m.renderer = r
	m.renderW = width
}

// chatWidth is the width left for the chat column.
func (m Model) chatWidth() int {
	w := m.width
	if m.showSidebar {
		w -= m.sidebarW + 1
	}
	return max(w, 20)
}

// resize recomputes component sizes from width and height.
func (m *Model) resize() {
	cw := m.chatWidth()
	inner := max(cw-4, 10)

	m.textarea.SetWidth(inner)
	m.viewport.Width = cw
	m.viewport.Height = max(m.height-headerHeight-footerHeight-(inputHeight+2)-1, 3)
	m.help.Width = cw
	m.setRenderer(inner - 2)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
