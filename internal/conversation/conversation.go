// Package conversation holds the in-memory message list for one chat and
// runs a single turn against a generator.
package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"multichat/internal/attachment"
	"multichat/internal/logging"

	"github.com/google/uuid"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

var (
	// ErrEmptyMessage is returned when neither text nor image is supplied.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned when a reply is already pending.
	ErrBusy = errors.New("a reply is already pending")
	// ErrMissingAPIKey is the failure recorded when no key is configured.
	ErrMissingAPIKey = errors.New("Gemini API key is missing. Press ctrl+k to add it.")
)

// FallbackErrorText replaces an error whose message is empty.
const FallbackErrorText = "Error contacting Gemini API."

// Message is one entry in the list.
type Message struct {
	ID    string
	Role  Role
	Text  string
	Image *attachment.Image
	Time  time.Time
}

// Generator produces a reply for the conversation so far.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Turn is a started exchange awaiting Complete.
type Turn struct {
	User     Message
	Snapshot []Message
}

// Conversation is safe for concurrent use.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
	loading  bool
	err      error
	now      func() time.Time
}

// New returns an empty conversation.
func New() *Conversation {
	return &Conversation{now: time.Now}
}

// Messages returns a copy of the list.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Message(nil), c.messages...)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Loading reports whether a reply is pending.
func (c *Conversation) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the failure of the last turn, if any.
func (c *Conversation) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Reset drops every message. It refuses while a reply is pending.
func (c *Conversation) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrBusy
	}
	c.messages = nil
	c.err = nil
	return nil
}

// Begin appends the user message and marks the conversation loading.
// The returned snapshot ends with that message.
func (c *Conversation) Begin(text string, image *attachment.Image) (Turn, error) {
	if text == "" && image == nil {
		return Turn{}, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		return Turn{}, ErrBusy
	}

	msg := Message{
		ID:    uuid.NewString(),
		Role:  RoleUser,
		Text:  text,
		Image: image,
		Time:  c.now(),
	}
	c.messages = append(c.messages, msg)
	c.loading = true
	c.err = nil

	logging.SessionDebug("turn begin: %d messages, image=%v", len(c.messages), image != nil)
	return Turn{User: msg, Snapshot: append([]Message(nil), c.messages...)}, nil
}

// Complete appends the bot reply for a turn started with Begin. A non-nil
// err is recorded and its text becomes the reply.
func (c *Conversation) Complete(reply string, err error) Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := reply
	if err != nil {
		c.err = err
		text = err.Error()
		if text == "" {
			text = FallbackErrorText
		}
		logging.Session("turn failed: %s", text)
	}

	msg := Message{
		ID:   uuid.NewString(),
		Role: RoleBot,
		Text: text,
		Time: c.now(),
	}
	c.messages = append(c.messages, msg)
	c.loading = false
	return msg
}

// Exchange runs the generator for a started turn. It does not touch
// conversation state so callers can run it off the UI goroutine.
func Exchange(ctx context.Context, turn Turn, gen Generator, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if gen == nil {
		return "", errors.New("no provider selected")
	}
	return gen.Generate(ctx, turn.Snapshot)
}

// Send runs a full turn: Begin, Exchange, Complete. It returns the bot
// message, which carries the error text when the turn failed.
func (c *Conversation) Send(ctx context.Context, text string, image *attachment.Image, gen Generator, apiKey string) (Message, error) {
	turn, err := c.Begin(text, image)
	if err != nil {
		return Message{}, err
	}
	reply, err := Exchange(ctx, turn, gen, apiKey)
	return c.Complete(reply, err), err
}
