package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore()

	note, err := s.Create(ctx, "first", "body text")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.Equal(t, "first", note.Title)
	assert.False(t, note.CreatedAt.IsZero())

	got, err := s.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note, got)

	updated, err := s.Update(ctx, note.ID, "renamed", "new body")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, note.CreatedAt, updated.CreatedAt)

	require.NoError(t, s.Delete(ctx, note.ID))
	_, err = s.Get(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestNoteNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore()
	id := uuid.New()

	_, err := s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = s.Update(ctx, id, "t", "b")
	assert.ErrorIs(t, err, ErrNoteNotFound)

	assert.ErrorIs(t, s.Delete(ctx, id), ErrNoteNotFound)
}

func TestNoteListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore()

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, title, "")
		require.NoError(t, err)
	}

	notes, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	for i := 1; i < len(notes); i++ {
		assert.False(t, notes[i].CreatedAt.Before(notes[i-1].CreatedAt))
	}
}

func TestNotePurge(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore()

	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, "n", "")
		require.NoError(t, err)
	}

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	notes, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
