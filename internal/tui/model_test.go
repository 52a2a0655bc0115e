package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/views"
)

type fakeStore struct {
	mu       sync.Mutex
	notes    []*domain.Note
	updated  []string
	failWith error
}

func (s *fakeStore) ListNotes(context.Context) ([]*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Note, 0, len(s.notes))
	for _, n := range s.notes {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) UpdateNote(_ context.Context, n *domain.Note) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, stored := range s.notes {
		if stored.ID == n.ID {
			stored.Content = n.Content
		}
	}
	s.updated = append(s.updated, n.ID)
	return n, nil
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, error) {}

func newTestModel(store *fakeStore, signedIn bool) Model {
	return New(Deps{
		Store:      store,
		Session:    views.StaticSession(signedIn),
		Reporter:   nopReporter{},
		TimeLayout: time.RFC3339,
		Location:   time.UTC,
		Replace:    views.DefaultReplaceOptions(),
	})
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.Init()()
	next, _ := m.Update(msg)
	next, _ = next.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return next.(Model)
}

func TestModel_SignedOutShowsLander(t *testing.T) {
	m := loaded(t, newTestModel(&fakeStore{}, false))

	out := m.View()

	assert.Contains(t, out, "Scratch")
	assert.Contains(t, out, "A simple note taking app")
	assert.Contains(t, out, "/login")
	assert.Contains(t, out, "/signup")
}

func TestModel_LoadsAndListsNotes(t *testing.T) {
	store := &fakeStore{notes: []*domain.Note{
		domain.NewNote("1", "u", "Buy milk", "", time.Unix(0, 0)),
		domain.NewNote("2", "u", "Call mom", "", time.Unix(0, 0)),
	}}
	m := loaded(t, newTestModel(store, true))

	out := m.View()

	assert.Contains(t, out, "Create a new note")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Call mom")
	assert.Contains(t, out, "Loaded 2 notes")
}

func TestModel_SearchNarrowsList(t *testing.T) {
	store := &fakeStore{notes: []*domain.Note{
		domain.NewNote("1", "u", "Buy milk", "", time.Unix(0, 0)),
		domain.NewNote("2", "u", "Call mom", "", time.Unix(0, 0)),
	}}
	m := loaded(t, newTestModel(store, true))

	m = typeText(t, m, "/")
	m = typeText(t, m, "milk")

	assert.Equal(t, "milk", m.home.SearchTerm())
	require.Len(t, m.list.Items(), 2)
	assert.Equal(t, "+ Create a new note", m.list.Items()[0].(noteItem).Title())
	assert.Equal(t, "Buy milk", m.list.Items()[1].(noteItem).Title())

	m, _ = press(t, m, tea.KeyEsc)
	assert.Equal(t, "", m.home.SearchTerm())
	assert.Len(t, m.list.Items(), 3)
}

func TestModel_BulkReplace(t *testing.T) {
	store := &fakeStore{notes: []*domain.Note{
		domain.NewNote("1", "u", "foo bar foo", "", time.Unix(0, 0)),
		domain.NewNote("2", "u", "baz", "", time.Unix(0, 0)),
	}}
	m := loaded(t, newTestModel(store, true))

	m = typeText(t, m, "b")
	require.Equal(t, screenBulk, m.screen)

	m = typeText(t, m, "foo")
	_, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd, "submit stays disabled until both fields are filled")

	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "qux")
	require.True(t, m.bulk.CanSubmit())

	m, cmd = press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, screenHome, m.screen)
	assert.Equal(t, []string{"1"}, store.updated)
	assert.Equal(t, "qux bar qux", store.notes[0].Content)
	assert.Contains(t, m.status, "Updated 1 notes")
}

func TestModel_BulkReplaceFailureKeepsForm(t *testing.T) {
	store := &fakeStore{
		notes:    []*domain.Note{domain.NewNote("1", "u", "x", "", time.Unix(0, 0))},
		failWith: errors.New("server said no"),
	}
	m := loaded(t, newTestModel(store, true))

	m = typeText(t, m, "b")
	m = typeText(t, m, "x")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "y")
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, screenBulk, m.screen)
	assert.Contains(t, m.lastError, "server said no")
	assert.False(t, m.bulk.Loading())
	assert.Equal(t, "x", m.bulk.OriginalText())
}
