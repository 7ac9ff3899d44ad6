package chat

import (
	"context"
	"time"

	"multichat/cmd/multichat/ui"
	"multichat/internal/attachment"
	"multichat/internal/config"
	"multichat/internal/conversation"
	"multichat/internal/keystore"
	"multichat/internal/provider"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// ClientFactory builds the upstream client for one turn.
type ClientFactory func(ctx context.Context, p provider.Provider, apiKey string) (provider.Client, error)

// Config holds configuration for initializing the chat interface.
type Config struct {
	App   *config.Config
	Store *keystore.Store

	// NewClient defaults to provider.NewClient with the configured model.
	NewClient ClientFactory

	// WatchKeys reloads the API key when another process rewrites the store.
	WatchKeys bool

	// PickerDir is where the image picker opens. Defaults to the working directory.
	PickerDir string
}

// ViewMode determines which component is focused/active
type ViewMode int

const (
	ChatView ViewMode = iota
	ProviderMenuView
	KeyDialogView
	FilePickerView
)

// noticeTTL is how long a transient footer notice stays up.
const noticeTTL = 4 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// replyMsg carries the result of one upstream call.
type replyMsg struct {
	reply string
	err   error
}

// keyChangedMsg reports an external key store change.
type keyChangedMsg struct {
	change keystore.Change
}

// clearNoticeMsg expires a notice if it is still the current one.
type clearNoticeMsg struct {
	seq int
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the chat shell.
type Model struct {
	// UI Components
	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	keyInput   textinput.Model
	filepicker filepicker.Model
	help       help.Model
	keys       keyMap
	styles     ui.Styles
	renderer   *glamour.TermRenderer
	renderW    int
	bodies     *ui.RenderCache

	viewMode ViewMode

	// Sidebar
	sessions    *conversation.SessionList
	showSidebar bool
	sidebarW    int

	// Providers
	providers  []provider.Provider
	selected   int
	menuCursor int

	// Conversation
	conv         *conversation.Conversation
	pendingImage *attachment.Image
	imageLimit   int64

	// Key store
	store        *keystore.Store
	storeChanges <-chan keystore.Change
	apiKey       string
	seedKey      string // GEMINI_API_KEY, used while the store has no key

	// Status
	err       error
	dialogErr error
	notice    string
	noticeSeq int

	width  int
	height int
	ready  bool

	// Backend
	newClient ClientFactory
	timeout   time.Duration
	pickerDir string
	ctx       context.Context
	cancel    context.CancelFunc
}
