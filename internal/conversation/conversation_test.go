package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"multichat/internal/attachment"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGenerator echoes a fixed reply and remembers what it was asked.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   [][]Message
	release chan struct{}
	entered chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

var ignoreVolatile = cmpopts.IgnoreFields(Message{}, "ID", "Time")

func TestSend_AppendsUserThenBot(t *testing.T) {
	c := New()
	gen := &fakeGenerator{reply: "hello back"}

	bot, err := c.Send(context.Background(), "hello", nil, gen, "key")
	require.NoError(t, err)
	assert.Equal(t, RoleBot, bot.Role)

	want := []Message{
		{Role: RoleUser, Text: "hello"},
		{Role: RoleBot, Text: "hello back"},
	}
	if diff := cmp.Diff(want, c.Messages(), ignoreVolatile); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, c.Loading())
	assert.NoError(t, c.Err())
}

func TestSend_GeneratorSeesFullHistory(t *testing.T) {
	c := New()
	gen := &fakeGenerator{reply: "ok"}

	_, err := c.Send(context.Background(), "first", nil, gen, "key")
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "second", nil, gen, "key")
	require.NoError(t, err)

	require.Len(t, gen.calls, 2)
	last := gen.calls[1]
	require.Len(t, last, 3)
	assert.Equal(t, "first", last[0].Text)
	assert.Equal(t, "ok", last[1].Text)
	assert.Equal(t, "second", last[2].Text)
	assert.Equal(t, 4, c.Len())
}

func TestSend_EmptyIsNoop(t *testing.T) {
	c := New()
	gen := &fakeGenerator{reply: "unused"}

	_, err := c.Send(context.Background(), "", nil, gen, "key")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, c.Len())
	assert.Empty(t, gen.calls)
}

func TestSend_KeepsTextAsTyped(t *testing.T) {
	c := New()
	gen := &fakeGenerator{reply: "ok"}

	_, err := c.Send(context.Background(), "   ", nil, gen, "key")
	require.NoError(t, err)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "   ", msgs[0].Text)

	_, err = c.Send(context.Background(), "  padded  ", nil, gen, "key")
	require.NoError(t, err)
	assert.Equal(t, "  padded  ", c.Messages()[2].Text)
}

func TestSend_ImageOnly(t *testing.T) {
	c := New()
	gen := &fakeGenerator{reply: "nice picture"}
	img := &attachment.Image{Name: "a.png", MIMEType: "image/png", Data: []byte{1}}

	_, err := c.Send(context.Background(), "", img, gen, "key")
	require.NoError(t, err)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Same(t, img, msgs[0].Image)
	assert.Nil(t, msgs[1].Image)
}

func TestSend_MissingKeyBecomesBotMessage(t *testing.T) {
	c := New()
	gen := &fakeGenerator{reply: "unused"}

	bot, err := c.Send(context.Background(), "hi", nil, gen, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, ErrMissingAPIKey.Error(), bot.Text)
	assert.ErrorIs(t, c.Err(), ErrMissingAPIKey)
	assert.Empty(t, gen.calls)
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Loading())
}

func TestSend_GeneratorError(t *testing.T) {
	c := New()
	gen := &fakeGenerator{err: errors.New("quota exceeded")}

	bot, err := c.Send(context.Background(), "hi", nil, gen, "key")
	require.Error(t, err)
	assert.Equal(t, "quota exceeded", bot.Text)
	assert.Equal(t, RoleBot, c.Messages()[1].Role)
}

func TestComplete_EmptyErrorTextUsesFallback(t *testing.T) {
	c := New()
	_, err := c.Begin("hi", nil)
	require.NoError(t, err)

	bot := c.Complete("", errors.New(""))
	assert.Equal(t, FallbackErrorText, bot.Text)
}

func TestNextTurnClearsError(t *testing.T) {
	c := New()
	_, _ = c.Send(context.Background(), "hi", nil, &fakeGenerator{}, "")
	require.Error(t, c.Err())

	_, err := c.Begin("again", nil)
	require.NoError(t, err)
	assert.NoError(t, c.Err())
	c.Complete("done", nil)
}

func TestSend_RejectsWhilePending(t *testing.T) {
	c := New()
	gen := &fakeGenerator{
		reply:   "slow",
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "first", nil, gen, "key")
		done <- err
	}()

	select {
	case <-gen.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("generator never called")
	}
	assert.True(t, c.Loading())

	_, err := c.Send(context.Background(), "second", nil, &fakeGenerator{}, "key")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Reset(), ErrBusy)

	close(gen.release)
	require.NoError(t, <-done)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "slow", msgs[1].Text)
}

func TestSend_ContextCancelled(t *testing.T) {
	c := New()
	gen := &fakeGenerator{release: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bot, err := c.Send(ctx, "hi", nil, gen, "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, context.Canceled.Error(), bot.Text)
	assert.False(t, c.Loading())
}

func TestMessagesReturnsCopy(t *testing.T) {
	c := New()
	_, err := c.Send(context.Background(), "hi", nil, &fakeGenerator{reply: "yo"}, "key")
	require.NoError(t, err)

	msgs := c.Messages()
	msgs[0].Text = "tampered"
	assert.Equal(t, "hi", c.Messages()[0].Text)
}

func TestReset(t *testing.T) {
	c := New()
	_, _ = c.Send(context.Background(), "hi", nil, &fakeGenerator{reply: "yo"}, "key")
	require.NoError(t, c.Reset())
	assert.Zero(t, c.Len())
}

func TestExchange_NilGenerator(t *testing.T) {
	_, err := Exchange(context.Background(), Turn{}, nil, "key")
	assert.Error(t, err)
}
