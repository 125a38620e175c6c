// Package store provides the in-memory note store backing the demo
// server's resource.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoteNotFound is returned when a note does not exist.
var ErrNoteNotFound = errors.New("note not found")

// Note is a stored note.
type Note struct {
	ID        uuid.UUID
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteStore is a concurrency-safe in-memory note store.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]Note
	now   func() time.Time // injectable for testing
}

// NewNoteStore creates an empty NoteStore.
func NewNoteStore() *NoteStore {
	return &NoteStore{
		notes: make(map[uuid.UUID]Note),
		now:   time.Now,
	}
}

// Create stores a new note and returns it with its assigned id.
func (s *NoteStore) Create(ctx context.Context, title, body string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	note := Note{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes[note.ID] = note
	return note, nil
}

// Get returns the note with the given id.
func (s *NoteStore) Get(ctx context.Context, id uuid.UUID) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok {
		return Note{}, ErrNoteNotFound
	}
	return note, nil
}

// Update replaces the title and body of an existing note.
func (s *NoteStore) Update(ctx context.Context, id uuid.UUID, title, body string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return Note{}, ErrNoteNotFound
	}
	note.Title = title
	note.Body = body
	note.UpdatedAt = s.now().UTC()
	s.notes[id] = note
	return note, nil
}

// Delete removes the note with the given id.
func (s *NoteStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

// List returns all notes ordered by creation time, oldest first.
func (s *NoteStore) List(ctx context.Context) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]Note, 0, len(s.notes))
	for _, note := range s.notes {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes, nil
}

// Purge removes every note and reports how many were removed.
func (s *NoteStore) Purge(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.notes)
	s.notes = make(map[uuid.UUID]Note)
	return n, nil
}
