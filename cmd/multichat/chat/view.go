package chat

import (
	"fmt"
	"strings"

	"multichat/cmd/multichat/ui"
	"multichat/internal/conversation"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch m.viewMode {
	case ProviderMenuView:
		body = m.overlay(m.renderProviderMenu())
	case KeyDialogView:
		body = m.overlay(m.renderKeyDialog())
	case FilePickerView:
		body = m.renderFilePicker()
	default:
		body = m.renderChatArea()
	}

	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	status := m.styles.Success.Render("Ready")
	if m.conv.Loading() {
		status = m.spinner.View() + " " + m.styles.Muted.Render("Thinking...")
	}

	title := m.styles.Header.Render("Multi-Model Chat")
	prov := m.styles.Badge.Render(m.currentProvider().Label())
	left := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", prov)

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(status)-1, 1)
	line := left + strings.Repeat(" ", gap) + status
	return lipgloss.JoinVertical(lipgloss.Left, line, m.styles.RenderDivider(m.width))
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Chats"))
	b.WriteString("\n")

	sel := m.sessions.Selected()
	for i, s := range m.sessions.Sessions() {
		if i == sel {
			b.WriteString(m.styles.SessionSelected.Render("▸ " + s.Title))
		} else {
			b.WriteString(m.styles.SessionItem.Render("  " + s.Title))
		}
		b.WriteString("\n")
	}

	h := max(m.height-headerHeight-footerHeight, 1)
	return m.styles.Sidebar.
		Width(m.sidebarW).
		Height(h).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderChatArea() string {
	parts := []string{m.viewport.View()}

	if m.err != nil {
		parts = append(parts, m.styles.Error.Render("⚠ "+m.err.Error()))
	}
	if m.pendingImage != nil {
		parts = append(parts, m.styles.ImageTag.Render("📎 "+m.pendingImage.Label()+"  (ctrl+x to remove)"))
	}

	input := m.styles.Input.Width(max(m.chatWidth()-2, 10)).Render(m.textarea.View())
	parts = append(parts, input)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHistory builds the viewport content for the message list.
func (m Model) renderHistory() string {
	msgs := m.conv.Messages()
	if len(msgs) == 0 && !m.conv.Loading() {
		return m.styles.Muted.Render("Start a conversation with " + m.currentProvider().Name + ".")
	}

	width := max(m.chatWidth()-4, 10)
	var b strings.Builder
	for _, msg := range msgs {
		switch msg.Role {
		case conversation.RoleUser:
			b.WriteString(m.renderUserMessage(msg, width))
		default:
			b.WriteString(m.renderBotMessage(msg, width))
		}
		b.WriteString("\n\n")
	}

	if m.conv.Loading() {
		b.WriteString(m.styles.BotLabel.Render("Assistant"))
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " " + m.styles.Muted.Render("Thinking..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderUserMessage(msg conversation.Message, width int) string {
	label := lipgloss.PlaceHorizontal(width, lipgloss.Right, m.styles.UserLabel.Render("You"))

	var lines []string
	if msg.Text != "" {
		lines = append(lines, msg.Text)
	}
	if msg.Image != nil {
		lines = append(lines, m.styles.ImageTag.Render("[image: "+msg.Image.Label()+"]"))
	}

	bubble := m.styles.UserBubble.
		MaxWidth(width).
		Render(strings.Join(lines, "\n"))
	return label + "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
}

func (m Model) renderBotMessage(msg conversation.Message, width int) string {
	label := m.styles.BotLabel.Render("Assistant")
	key := ui.Key(msg.ID, m.renderW, m.styles.Theme.IsDark)
	body := m.bodies.GetOrCompute(key, func() string {
		return m.renderMarkdown(msg.Text)
	})
	return label + "\n" + m.styles.BotBubble.Render(body)
}

// renderMarkdown falls back to the raw text if glamour cannot render it.
func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m Model) renderProviderMenu() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Select model"))
	b.WriteString("\n")

	for i, p := range m.providers {
		line := p.Label()
		if i == m.selected {
			line += "  ✓"
		}
		if i == m.menuCursor {
			b.WriteString(m.styles.MenuCurrent.Render(line))
		} else {
			b.WriteString(m.styles.MenuItem.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("↑/↓ move • enter select • esc close"))
	return m.styles.Dialog.Render(b.String())
}

func (m Model) renderKeyDialog() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Gemini API Key"))
	b.WriteString("\n")
	b.WriteString("Enter your Gemini API key. You can get one from\n")
	b.WriteString(m.styles.Bold.Render("https://aistudio.google.com/app/apikey"))
	b.WriteString("\n\n")
	b.WriteString(m.keyInput.View())
	b.WriteString("\n\n")

	save := m.styles.MenuCurrent.Render("Save")
	if strings.TrimSpace(m.keyInput.Value()) == "" {
		save = m.styles.Muted.Render("Save")
	}
	b.WriteString(save + "  " + m.styles.MenuItem.Render("Cancel"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter save • esc cancel"))

	if m.dialogErr != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Could not save key: %v", m.dialogErr)))
	}
	return m.styles.Dialog.Render(b.String())
}

func (m Model) renderFilePicker() string {
	title := m.styles.Title.Render("Attach image")
	hint := m.styles.Muted.Render("enter select • esc cancel")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.filepicker.View(), hint)
}

// overlay centers a dialog in the chat column.
func (m Model) overlay(dialog string) string {
	h := max(m.height-headerHeight-footerHeight, lipgloss.Height(dialog))
	return lipgloss.Place(m.chatWidth(), h, lipgloss.Center, lipgloss.Center, dialog)
}

func (m Model) renderFooter() string {
	line := m.help.View(m.keys)
	if m.notice != "" {
		line = m.styles.Notice.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.RenderDivider(m.width),
		m.styles.Footer.Render(line),
	)
}
