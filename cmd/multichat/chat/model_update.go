package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"multichat/internal/attachment"
	"multichat/internal/conversation"
	"multichat/internal/keystore"
	"multichat/internal/logging"
	"multichat/internal/provider"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m.ready = true
		m.resize()
		if m.viewMode == FilePickerView {
			var cmd tea.Cmd
			m.filepicker, cmd = m.filepicker.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.Shutdown()
			return m, tea.Quit
		}
		switch m.viewMode {
		case ProviderMenuView:
			return m.updateProviderMenu(msg)
		case KeyDialogView:
			return m.updateKeyDialog(msg)
		case FilePickerView:
			return m.updateFilePicker(msg)
		}
		return m.updateChat(msg)

	case replyMsg:
		m.conv.Complete(msg.reply, msg.err)
		m.err = msg.err
		if msg.err != nil {
			logging.Get(logging.CategoryUI).Warn("turn failed: %v", msg.err)
		}
		m.refreshViewport()
		return m, nil

	case keyChangedMsg:
		if msg.change.Name == keystore.GeminiAPIKey {
			if msg.change.Present && msg.change.Value != "" {
				m.apiKey = msg.change.Value
			} else {
				m.apiKey = m.seedKey
			}
			logging.UI("api key reloaded from store (present=%v)", msg.change.Present)
		}
		return m, waitForKeyChange(m.storeChanges)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.conv.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd
	}

	// Everything else (directory reads, cursor blink) goes to the focused component.
	var cmd tea.Cmd
	switch m.viewMode {
	case FilePickerView:
		m.filepicker, cmd = m.filepicker.Update(msg)
	case KeyDialogView:
		m.keyInput, cmd = m.keyInput.Update(msg)
	default:
		m.textarea, cmd = m.textarea.Update(msg)
	}
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m.handleSubmit()

	case key.Matches(msg, m.keys.Providers):
		m.viewMode = ProviderMenuView
		m.menuCursor = m.selected
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		return m.openKeyDialog()

	case key.Matches(msg, m.keys.Attach):
		if m.conv.Loading() {
			return m, nil
		}
		m.newFilePicker()
		m.viewMode = FilePickerView
		return m, m.filepicker.Init()

	case key.Matches(msg, m.keys.ClearImage):
		if m.pendingImage != nil {
			m.pendingImage = nil
			return m.setNotice("Image removed.")
		}
		return m, nil

	case key.Matches(msg, m.keys.Voice):
		if m.conv.Loading() {
			return m, nil
		}
		return m.setNotice("Voice input coming soon!")

	case key.Matches(msg, m.keys.NewSession):
		s := m.sessions.Add()
		logging.Session("added %s", s.Title)
		return m, nil

	case key.Matches(msg, m.keys.PrevSession):
		_ = m.sessions.Select(m.sessions.Selected() - 1)
		return m, nil

	case key.Matches(msg, m.keys.NextSession):
		_ = m.sessions.Select(m.sessions.Selected() + 1)
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.resize()
		return m, nil

	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Input is disabled while a reply is pending.
	if m.conv.Loading() {
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// canSend mirrors the send button: something to send and nothing pending.
func (m Model) canSend() bool {
	if m.conv.Loading() {
		return false
	}
	return m.textarea.Value() != "" || m.pendingImage != nil
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if !m.canSend() {
		return m, nil
	}

	text := m.textarea.Value()
	turn, err := m.conv.Begin(text, m.pendingImage)
	if err != nil {
		// Begin only fails for empty or busy, both already excluded by canSend.
		return m, nil
	}

	m.textarea.Reset()
	m.pendingImage = nil
	m.err = nil
	m.refreshViewport()

	return m, tea.Batch(m.spinner.Tick, m.sendTurn(turn))
}

// sendTurn runs the upstream call off the UI goroutine. The selector only
// changes the label; every turn is answered by Gemini.
func (m Model) sendTurn(turn conversation.Turn) tea.Cmd {
	p := provider.Default()
	label := m.currentProvider().ID
	apiKey := m.apiKey
	newClient := m.newClient
	parent := m.ctx
	timeout := m.timeout

	return func() tea.Msg {
		if apiKey == "" {
			return replyMsg{err: conversation.ErrMissingAPIKey}
		}

		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		client, err := newClient(ctx, p, apiKey)
		if err != nil {
			return replyMsg{err: err}
		}

		logging.API("send turn: selected=%s backend=%s messages=%d", label, p.ID, len(turn.Snapshot))
		reply, err := conversation.Exchange(ctx, turn, client, apiKey)
		if errors.Is(err, context.DeadlineExceeded) {
			logging.APIError("turn timed out after %v", timeout)
		}
		return replyMsg{reply: reply, err: err}
	}
}

func (m Model) updateProviderMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.viewMode = ChatView
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(m.providers)-1 {
			m.menuCursor++
		}
	case "enter":
		m.selected = m.menuCursor
		m.viewMode = ChatView
		logging.UI("provider selected: %s", m.currentProvider().ID)
	}
	return m, nil
}

func (m Model) openKeyDialog() (tea.Model, tea.Cmd) {
	existing := m.apiKey
	if m.store != nil {
		if v, ok := m.store.Get(keystore.GeminiAPIKey); ok {
			existing = v
		}
	}
	m.keyInput.SetValue(existing)
	m.keyInput.CursorEnd()
	m.dialogErr = nil
	m.viewMode = KeyDialogView
	m.textarea.Blur()
	return m, m.keyInput.Focus()
}

func (m Model) closeKeyDialog() (Model, tea.Cmd) {
	m.keyInput.Blur()
	m.viewMode = ChatView
	return m, m.textarea.Focus()
}

func (m Model) updateKeyDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.closeKeyDialog()

	case tea.KeyEnter:
		value := strings.TrimSpace(m.keyInput.Value())
		if value == "" {
			// Save is disabled for an empty key.
			return m, nil
		}
		if m.store != nil {
			if err := m.store.Set(keystore.GeminiAPIKey, value); err != nil {
				m.dialogErr = err
				return m, nil
			}
		}
		m.apiKey = value
		closed, focus := m.closeKeyDialog()
		closed, notice := closed.setNotice("API key saved.")
		return closed, tea.Batch(focus, notice)
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m Model) updateFilePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.viewMode = ChatView
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if ok, path := m.filepicker.DidSelectFile(msg); ok {
		m.viewMode = ChatView
		img, err := attachment.Load(path, m.imageLimit)
		if err != nil {
			m.err = err
			return m, cmd
		}
		m.pendingImage = img
		m.err = nil
		logging.UI("image attached: %s", img.Label())
		return m, cmd
	}
	if ok, path := m.filepicker.DidSelectDisabledFile(msg); ok {
		m.err = errors.New(path + " is not a supported image type")
		return m, cmd
	}
	return m, cmd
}

// setNotice shows a transient footer message.
func (m Model) setNotice(text string) (Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}
