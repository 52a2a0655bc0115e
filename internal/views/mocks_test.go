package views

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockNoteStore struct {
	mock.Mock
}

func (m *MockNoteStore) ListNotes(ctx context.Context) ([]*domain.Note, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteStore) UpdateNote(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	args := m.Called(ctx, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, err error) {
	m.Called(ctx, err)
}

type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(route string) {
	m.Called(route)
}

// toggleSession is a Session whose answer can change between calls.
type toggleSession struct {
	on atomic.Bool
}

func (s *toggleSession) IsAuthenticated() bool {
	return s.on.Load()
}

func (s *toggleSession) Set(on bool) {
	s.on.Store(on)
}

// memoryStore is an in-memory NoteStore that records writes.
type memoryStore struct {
	mu       sync.Mutex
	notes    map[string]*domain.Note
	order    []string
	lists    int
	updates  []string
	failures map[string]error
}

func newMemoryStore(notes ...*domain.Note) *memoryStore {
	s := &memoryStore{
		notes:    make(map[string]*domain.Note),
		failures: make(map[string]error),
	}
	for _, n := range notes {
		cp := *n
		s.notes[n.ID] = &cp
		s.order = append(s.order, n.ID)
	}
	return s
}

func (s *memoryStore) ListNotes(_ context.Context) ([]*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	out := make([]*domain.Note, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.notes[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryStore) UpdateNote(_ context.Context, note *domain.Note) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, note.ID)
	if err := s.failures[note.ID]; err != nil {
		return nil, err
	}
	stored, ok := s.notes[note.ID]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	stored.Content = note.Content
	stored.Attachment = note.Attachment
	cp := *stored
	return &cp, nil
}

func (s *memoryStore) content(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes[id].Content
}

func (s *memoryStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *memoryStore) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

var testCreated = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func note(id, content string) *domain.Note {
	return domain.NewNote(id, "user-1", content, "", testCreated)
}
