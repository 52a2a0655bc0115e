// Package tui is the interactive terminal front end for the note list and
// bulk replace views.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/views"
)

type screen int

const (
	screenHome screen = iota
	screenSearch
	screenNote
	screenNewNote
	screenBulk
)

// NoteCreator stores new notes.
type NoteCreator interface {
	CreateNote(ctx context.Context, content, attachment string) (*domain.Note, error)
}

// Deps are the collaborators the terminal views run against.
type Deps struct {
	Store      views.NoteStore
	Creator    NoteCreator
	Session    views.Session
	Reporter   views.ErrorReporter
	TimeLayout string
	Location   *time.Location
	Replace    views.ReplaceOptions
}

type notesLoadedMsg struct {
	view *views.NoteListView
	err  error
}

type bulkDoneMsg struct {
	result *views.ReplaceResult
	err    error
}

type noteCreatedMsg struct {
	note *domain.Note
	err  error
}

// routeNavigator hands routes from view goroutines back to the model.
type routeNavigator struct {
	mu    sync.Mutex
	route string
}

func (n *routeNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.route = route
}

func (n *routeNavigator) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	r := n.route
	n.route = ""
	return r
}

type noteItem struct {
	item views.ListItem
}

func (i noteItem) FilterValue() string { return i.item.Title }

func (i noteItem) Title() string {
	title := strings.TrimSpace(i.item.Title)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	if i.item.Kind == views.ItemCreateNote {
		return "+ " + title
	}
	if i.item.HasAttachment {
		return title + " [attachment]"
	}
	return title
}

func (i noteItem) Description() string {
	if i.item.Kind == views.ItemCreateNote {
		return ""
	}
	return "Created: " + i.item.Created
}

// Model is the bubbletea model.
type Model struct {
	deps Deps
	nav  *routeNavigator

	screen screen
	width  int
	height int

	home *views.NoteListView
	bulk *views.BulkReplaceView

	list        list.Model
	searchInput textinput.Model

	originalInput textinput.Model
	newInput      textinput.Model
	contentInput  textinput.Model

	current *domain.Note

	status    string
	lastError string
}

// New creates the model on the home screen.
func New(deps Deps) Model {
	si := textinput.New()
	si.Placeholder = "search notes..."
	si.CharLimit = 200
	si.Width = 40

	oi := textinput.New()
	oi.Placeholder = "text to find"
	oi.Width = 40

	ni := textinput.New()
	ni.Placeholder = "replace with"
	ni.Width = 40

	ci := textinput.New()
	ci.Placeholder = "note content"
	ci.Width = 60

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Your Notes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := Model{
		deps:          deps,
		nav:           &routeNavigator{},
		list:          l,
		searchInput:   si,
		originalInput: oi,
		newInput:      ni,
		contentInput:  ci,
	}
	m.home = m.newHomeView()
	return m
}

func (m Model) newHomeView() *views.NoteListView {
	return views.NewNoteListView(m.deps.Store, m.deps.Session, m.deps.Reporter,
		views.WithTimeFormat(m.deps.TimeLayout, m.deps.Location))
}

func loadNotes(v *views.NoteListView) tea.Cmd {
	return func() tea.Msg {
		err := v.Sync(context.Background())
		return notesLoadedMsg{view: v, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return loadNotes(m.home)
}

// Close releases the views. Call after the program exits.
func (m Model) Close() {
	if m.home != nil {
		m.home.Close()
	}
	if m.bulk != nil {
		m.bulk.Close()
	}
}

func (m *Model) setError(err error) {
	m.lastError = err.Error()
	m.status = err.Error()
}

func (m *Model) setStatus(s string) {
	m.lastError = ""
	m.status = s
}

func (m *Model) refreshList() tea.Cmd {
	page := m.home.Render()
	items := make([]list.Item, 0, len(page.Items))
	for _, it := range page.Items {
		items = append(items, noteItem{item: it})
	}
	return m.list.SetItems(items)
}

func (m *Model) goHome() tea.Cmd {
	if m.bulk != nil {
		m.bulk.Close()
		m.bulk = nil
	}
	m.home.Close()
	m.home = m.newHomeView()
	m.screen = screenHome
	m.searchInput.SetValue("")
	return tea.Batch(m.refreshList(), loadNotes(m.home))
}

func (m *Model) openBulk() tea.Cmd {
	m.bulk = views.NewBulkReplaceView(m.deps.Store, m.nav, m.deps.Reporter, m.deps.Replace)
	m.originalInput.SetValue("")
	m.newInput.SetValue("")
	m.newInput.Blur()
	m.screen = screenBulk
	return m.originalInput.Focus()
}

func (m Model) submitBulk() tea.Cmd {
	form := m.bulk
	return func() tea.Msg {
		result, err := form.Submit(context.Background())
		return bulkDoneMsg{result: result, err: err}
	}
}

func (m Model) createNote(content string) tea.Cmd {
	creator := m.deps.Creator
	return func() tea.Msg {
		note, err := creator.CreateNote(context.Background(), content, "")
		return noteCreatedMsg{note: note, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width - 4)
		m.list.SetHeight(msg.Height - 8)
		return m, nil

	case notesLoadedMsg:
		if msg.view != m.home {
			return m, nil
		}
		if msg.err != nil {
			m.setError(fmt.Errorf("failed to load notes: %w", msg.err))
		} else if m.deps.Session.IsAuthenticated() {
			m.setStatus(fmt.Sprintf("Loaded %d notes", len(m.home.Notes())))
		}
		cmd := m.refreshList()
		return m, cmd

	case bulkDoneMsg:
		return m.handleBulkDone(msg)

	case noteCreatedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("failed to create note: %w", msg.err))
			return m, nil
		}
		m.contentInput.SetValue("")
		m.setStatus("Created note " + msg.note.ID)
		cmd := m.goHome()
		return m, cmd
	}

	key, isKey := msg.(tea.KeyMsg)
	if isKey && key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenSearch:
		return m.updateSearch(msg)
	case screenNote:
		if isKey {
			switch key.String() {
			case "esc", "q", "backspace":
				m.screen = screenHome
				m.current = nil
			}
		}
		return m, nil
	case screenNewNote:
		return m.updateNewNote(msg)
	case screenBulk:
		return m.updateBulk(msg)
	}
	return m.updateHome(msg)
}

func (m Model) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if !m.deps.Session.IsAuthenticated() {
		if key.String() == "q" || key.String() == "esc" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.screen = screenSearch
		cmd := m.searchInput.Focus()
		return m, cmd
	case "b":
		cmd := m.openBulk()
		return m, cmd
	case "r":
		m.setStatus("Reloading...")
		cmd := m.goHome()
		return m, cmd
	case "enter":
		it, ok := m.list.SelectedItem().(noteItem)
		if !ok {
			return m, nil
		}
		if it.item.Kind == views.ItemCreateNote {
			m.screen = screenNewNote
			cmd := m.contentInput.Focus()
			return m, cmd
		}
		for _, n := range m.home.Notes() {
			if n.ID == it.item.NoteID {
				m.current = n
				m.screen = screenNote
				break
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.searchInput.Blur()
			m.screen = screenHome
			return m, nil
		case "esc":
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.home.SetSearchTerm("")
			m.screen = screenHome
			cmd := m.refreshList()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.home.SetSearchTerm(m.searchInput.Value())
	refresh := m.refreshList()
	return m, tea.Batch(cmd, refresh)
}

func (m Model) updateNewNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.contentInput.Blur()
			m.screen = screenHome
			return m, nil
		case "enter":
			content := m.contentInput.Value()
			if content == "" || m.deps.Creator == nil {
				return m, nil
			}
			m.setStatus("Saving...")
			return m, m.createNote(content)
		}
	}

	var cmd tea.Cmd
	m.contentInput, cmd = m.contentInput.Update(msg)
	return m, cmd
}

func (m Model) updateBulk(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			if m.bulk.Loading() {
				return m, nil
			}
			m.bulk.Close()
			m.bulk = nil
			m.screen = screenHome
			return m, nil
		case "tab", "shift+tab":
			if m.originalInput.Focused() {
				m.originalInput.Blur()
				cmd := m.newInput.Focus()
				return m, cmd
			}
			m.newInput.Blur()
			cmd := m.originalInput.Focus()
			return m, cmd
		case "enter":
			if !m.bulk.CanSubmit() || m.bulk.Loading() {
				return m, nil
			}
			m.setStatus("Replacing...")
			cmd := m.submitBulk()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.originalInput.Focused() {
		m.originalInput, cmd = m.originalInput.Update(msg)
	} else {
		m.newInput, cmd = m.newInput.Update(msg)
	}
	m.bulk.SetOriginalText(m.originalInput.Value())
	m.bulk.SetNewText(m.newInput.Value())
	return m, cmd
}

func (m Model) handleBulkDone(msg bulkDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, views.ErrViewClosed) {
		return m, nil
	}
	if msg.err != nil {
		if views.IsPartialFailure(msg.err) {
			m.setError(fmt.Errorf("updated %d notes, %d failed: %w",
				len(msg.result.Updated), len(msg.result.Failed), msg.err))
		} else {
			m.setError(msg.err)
		}
		return m, nil
	}

	updated := 0
	if msg.result != nil {
		updated = len(msg.result.Updated)
	}
	if m.nav.take() == views.RouteHome {
		cmd := m.goHome()
		m.setStatus(fmt.Sprintf("Updated %d notes", updated))
		return m, cmd
	}
	return m, nil
}
