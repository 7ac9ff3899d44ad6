package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionList_StartsWithOne(t *testing.T) {
	l := NewSessionList()

	require.Equal(t, 1, l.Len())
	assert.Equal(t, "Session 1", l.Sessions()[0].Title)
	assert.Equal(t, 0, l.Selected())
}

func TestSessionList_AddSelectsNew(t *testing.T) {
	l := NewSessionList()

	s := l.Add()
	assert.Equal(t, "Session 2", s.Title)
	assert.Equal(t, 1, l.Selected())

	l.Add()
	assert.Equal(t, 2, l.Selected())
	assert.NotEqual(t, l.Sessions()[0].ID, l.Sessions()[1].ID)
}

func TestSessionList_Select(t *testing.T) {
	l := NewSessionList()
	l.Add()

	require.NoError(t, l.Select(0))
	assert.Equal(t, 0, l.Selected())

	assert.ErrorIs(t, l.Select(2), ErrNoSuchSession)
	assert.ErrorIs(t, l.Select(-1), ErrNoSuchSession)
	assert.Equal(t, 0, l.Selected())
}
