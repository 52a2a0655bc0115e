package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloo-solutions/scratch/internal/domain"
)

// Timestamp decodes either epoch milliseconds or an RFC 3339 string and
// encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = time.UnixMilli(ms)
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	ms, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
		}
		ms = int64(f)
	}
	t.Time = time.UnixMilli(ms)
	return nil
}

// Note is the wire form of a note.
type Note struct {
	NoteID     string    `json:"noteId"`
	UserID     string    `json:"userId,omitempty"`
	Content    string    `json:"content"`
	Attachment string    `json:"attachment,omitempty"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// ToDomain converts the wire form into a domain note.
func (n Note) ToDomain() *domain.Note {
	return domain.NewNote(n.NoteID, n.UserID, n.Content, n.Attachment, n.CreatedAt.Time)
}

// NoteFromDomain converts a domain note into its wire form.
func NoteFromDomain(n *domain.Note) Note {
	return Note{
		NoteID:     n.ID,
		UserID:     n.UserID,
		Content:    n.Content,
		Attachment: n.Attachment,
		CreatedAt:  Timestamp{n.CreatedAt},
	}
}

// AttachmentURL is a presigned URL for an attachment.
type AttachmentURL struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// NotesClient reads and writes notes on the backend.
type NotesClient struct {
	api *APIClient
}

// NewNotesClient wraps an APIClient.
func NewNotesClient(api *APIClient) *NotesClient {
	return &NotesClient{api: api}
}

func notePath(noteID string) string {
	return "/notes/" + url.PathEscape(noteID)
}

// ListNotes returns every note of the signed-in user in backend order.
func (c *NotesClient) ListNotes(ctx context.Context) ([]*domain.Note, error) {
	resp, err := c.api.Get(ctx, "/notes")
	if err != nil {
		return nil, err
	}

	var wire []Note
	if err := json.Unmarshal(resp.Data, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse notes: %w", err)
	}

	notes := make([]*domain.Note, 0, len(wire))
	for _, n := range wire {
		notes = append(notes, n.ToDomain())
	}
	return notes, nil
}

// GetNote returns a single note.
func (c *NotesClient) GetNote(ctx context.Context, noteID string) (*domain.Note, error) {
	resp, err := c.api.Get(ctx, notePath(noteID))
	if err != nil {
		return nil, err
	}
	return decodeNote(resp)
}

// CreateNote stores a new note. The backend assigns its id.
func (c *NotesClient) CreateNote(ctx context.Context, content, attachment string) (*domain.Note, error) {
	resp, err := c.api.Post(ctx, "/notes", Note{Content: content, Attachment: attachment})
	if err != nil {
		return nil, err
	}
	return decodeNote(resp)
}

// UpdateNote replaces a note with the full body given.
func (c *NotesClient) UpdateNote(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	resp, err := c.api.Put(ctx, notePath(note.ID), NoteFromDomain(note))
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		cp := *note
		return &cp, nil
	}
	return decodeNote(resp)
}

// DeleteNote removes a note.
func (c *NotesClient) DeleteNote(ctx context.Context, noteID string) error {
	_, err := c.api.Delete(ctx, notePath(noteID))
	return err
}

// AttachmentUploadURL asks the backend for a presigned upload URL.
func (c *NotesClient) AttachmentUploadURL(ctx context.Context, filename, contentType string) (*AttachmentURL, error) {
	resp, err := c.api.Post(ctx, "/attachments", map[string]string{
		"filename":     filename,
		"content_type": contentType,
	})
	if err != nil {
		return nil, err
	}
	var out AttachmentURL
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse upload URL: %w", err)
	}
	return &out, nil
}

// AttachmentDownloadURL asks the backend for a presigned download URL.
func (c *NotesClient) AttachmentDownloadURL(ctx context.Context, noteID string) (*AttachmentURL, error) {
	resp, err := c.api.Get(ctx, notePath(noteID)+"/attachment")
	if err != nil {
		return nil, err
	}
	var out AttachmentURL
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse download URL: %w", err)
	}
	return &out, nil
}

func decodeNote(resp *APIResponse) (*domain.Note, error) {
	var n Note
	if err := json.Unmarshal(resp.Data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse note: %w", err)
	}
	return n.ToDomain(), nil
}
