package domain

import (
	"strings"
	"time"
)

// Note is a single user-owned note. NoteID and UserID are assigned by the
// backend and never change after creation.
type Note struct {
	ID         string
	UserID     string
	Content    string
	Attachment string // object key, empty when the note has none
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewNote creates a new Note instance
func NewNote(id, userID, content, attachment string, createdAt time.Time) *Note {
	return &Note{
		ID:         id,
		UserID:     userID,
		Content:    content,
		Attachment: attachment,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

// HasAttachment reports whether an attachment reference is present.
func (n *Note) HasAttachment() bool {
	return n.Attachment != ""
}

// Contains reports whether the note content contains term as a literal,
// case-sensitive substring.
func (n *Note) Contains(term string) bool {
	return strings.Contains(n.Content, term)
}

// ValidateNote checks the fields a stored note cannot lack. Empty content
// is allowed.
func ValidateNote(n *Note) error {
	if n == nil {
		return errNil("note")
	}
	return requireFields("note",
		present("ID", n.ID),
		present("UserID", n.UserID),
		field{name: "CreatedAt", missing: n.CreatedAt.IsZero()},
	)
}
