// Package views holds the presentation-independent state of the note list
// and bulk replace screens. Both views talk to the outside world only
// through the small interfaces declared here.
package views

import (
	"context"
	"errors"

	"github.com/cloo-solutions/scratch/internal/domain"
)

// Routes handed to a Navigator.
const (
	RouteHome     = "/"
	RouteNewNote  = "/notes/new"
	RouteLogin    = "/login"
	RouteSignup   = "/signup"
	RouteBulkEdit = "/bulk-edit"
)

// NoteRoute returns the route of a single note.
func NoteRoute(noteID string) string {
	return "/notes/" + noteID
}

// ErrViewClosed is returned by operations on a view after Close.
var ErrViewClosed = errors.New("view is closed")

// Session reports whether the current user is signed in.
type Session interface {
	IsAuthenticated() bool
}

// NoteLister reads the signed-in user's full note collection.
type NoteLister interface {
	ListNotes(ctx context.Context) ([]*domain.Note, error)
}

// NoteStore reads the collection and replaces single notes.
type NoteStore interface {
	NoteLister
	UpdateNote(ctx context.Context, note *domain.Note) (*domain.Note, error)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(route string)
}

// ErrorReporter is the sink for failures the user should see.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}

// StaticSession is a Session with a fixed answer.
type StaticSession bool

func (s StaticSession) IsAuthenticated() bool {
	return bool(s)
}
