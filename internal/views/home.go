package views

import (
	"context"
	"sync"
	"time"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/telemetry"
)

// DefaultTimeLayout renders creation times the way a US-English locale
// prints a local date and time.
const DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

const createNoteLabel = "Create a new note"

// ItemKind distinguishes the rows of the note list.
type ItemKind int

const (
	ItemCreateNote ItemKind = iota
	ItemNote
)

// ListItem is one rendered row of the note list.
type ListItem struct {
	Kind          ItemKind
	Route         string
	Title         string
	NoteID        string
	Created       string
	HasAttachment bool
}

// Link is a navigation entry on the lander.
type Link struct {
	Label string
	Route string
}

// Lander is the static page shown to signed-out users.
type Lander struct {
	Title   string
	Tagline string
	Links   []Link
}

// HomePage is the rendered state of the NoteListView.
type HomePage struct {
	Authenticated bool
	Lander        Lander
	SearchTerm    string
	Loading       bool
	Items         []ListItem
}

func defaultLander() Lander {
	return Lander{
		Title:   "Scratch",
		Tagline: "A simple note taking app",
		Links: []Link{
			{Label: "Login", Route: RouteLogin},
			{Label: "Signup", Route: RouteSignup},
		},
	}
}

// HomeOption configures a NoteListView.
type HomeOption func(*NoteListView)

// WithTimeFormat sets the layout and location used for creation times.
func WithTimeFormat(layout string, loc *time.Location) HomeOption {
	return func(v *NoteListView) {
		if layout != "" {
			v.layout = layout
		}
		if loc != nil {
			v.location = loc
		}
	}
}

// NoteListView loads the signed-in user's notes once per sign-in and
// projects them through a live search term.
type NoteListView struct {
	lister   NoteLister
	session  Session
	reporter ErrorReporter
	layout   string
	location *time.Location

	mu            sync.Mutex
	notes         []*domain.Note
	loading       bool
	searchTerm    string
	authenticated bool
	generation    uint64
	cancel        context.CancelFunc
	closed        bool
}

// NewNoteListView creates a NoteListView. The view starts in the loading
// state with no notes.
func NewNoteListView(lister NoteLister, session Session, reporter ErrorReporter, opts ...HomeOption) *NoteListView {
	v := &NoteListView{
		lister:   lister,
		session:  session,
		reporter: reporter,
		layout:   DefaultTimeLayout,
		location: time.Local,
		loading:  true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Sync observes the session. A transition into the signed-in state issues
// exactly one read of the note collection; no transition issues nothing. A
// newer transition cancels the load started by an older one and the older
// response is discarded. Load failures go to the ErrorReporter and are also
// returned.
func (v *NoteListView) Sync(ctx context.Context) error {
	authenticated := v.session.IsAuthenticated()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}

	changed := authenticated != v.authenticated
	v.authenticated = authenticated
	if !changed {
		v.mu.Unlock()
		return nil
	}

	v.generation++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if !authenticated {
		v.mu.Unlock()
		return nil
	}

	loadCtx, cancel := context.WithCancel(ctx)
	generation := v.generation
	v.cancel = cancel
	v.loading = true
	v.mu.Unlock()
	defer cancel()

	telemetry.AddBreadcrumb(ctx, "notes", "loading note list")
	notes, err := v.lister.ListNotes(loadCtx)

	v.mu.Lock()
	if v.closed || generation != v.generation {
		v.mu.Unlock()
		return nil
	}
	v.cancel = nil
	v.loading = false
	if err == nil {
		v.notes = notes
	}
	v.mu.Unlock()

	if err != nil {
		v.reporter.Report(ctx, err)
		return err
	}
	return nil
}

// SetSearchTerm stores term verbatim.
func (v *NoteListView) SetSearchTerm(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searchTerm = term
}

// SearchTerm returns the current search term.
func (v *NoteListView) SearchTerm() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.searchTerm
}

// Loading reports whether the first load has not yet finished.
func (v *NoteListView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Notes returns the loaded collection in backend order.
func (v *NoteListView) Notes() []*domain.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*domain.Note, len(v.notes))
	copy(out, v.notes)
	return out
}

// Visible returns the notes selected by the current search term.
func (v *NoteListView) Visible() []*domain.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	return FilterNotes(v.notes, v.searchTerm)
}

// Render projects the current state into a HomePage. Signed-out users get
// the lander. While loading, the list is empty; afterwards the "create a
// new note" entry always comes first.
func (v *NoteListView) Render() HomePage {
	if !v.session.IsAuthenticated() {
		return HomePage{Lander: defaultLander()}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	page := HomePage{
		Authenticated: true,
		SearchTerm:    v.searchTerm,
		Loading:       v.loading,
	}
	if v.loading {
		return page
	}

	visible := FilterNotes(v.notes, v.searchTerm)
	page.Items = make([]ListItem, 0, len(visible)+1)
	page.Items = append(page.Items, ListItem{
		Kind:  ItemCreateNote,
		Route: RouteNewNote,
		Title: createNoteLabel,
	})
	for _, n := range visible {
		page.Items = append(page.Items, v.noteItem(n))
	}
	return page
}

func (v *NoteListView) noteItem(n *domain.Note) ListItem {
	return ListItem{
		Kind:          ItemNote,
		Route:         NoteRoute(n.ID),
		Title:         n.Content,
		NoteID:        n.ID,
		Created:       n.CreatedAt.In(v.location).Format(v.layout),
		HasAttachment: n.HasAttachment(),
	}
}

// Close tears the view down. An in-flight load is cancelled and its result
// is dropped.
func (v *NoteListView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
