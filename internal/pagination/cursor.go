// Package pagination encodes keyset positions for newest-first listings.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor is the (created_at, id) pair of the last row on a page. The next
// page starts strictly after it in (created_at DESC, id DESC) order.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// After returns the cursor positioned after the row with id and createdAt.
func After(id string, createdAt time.Time) Cursor {
	return Cursor{CreatedAt: createdAt, ID: id}
}

// String encodes c as an opaque URL-safe token.
func (c Cursor) String() string {
	if c.ID == "" {
		return ""
	}
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + ":" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Parse decodes a token produced by Cursor.String. An empty token means the
// first page and yields nil.
func Parse(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	nanos, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}
