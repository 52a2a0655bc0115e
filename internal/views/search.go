package views

import (
	"strings"

	"github.com/cloo-solutions/scratch/internal/domain"
)

// FilterNotes returns the notes whose content contains term. A blank term
// (empty or whitespace only) selects every note. Matching is literal and
// case-sensitive; the untrimmed term is used. Backend order is preserved and
// the input slice is never modified.
func FilterNotes(notes []*domain.Note, term string) []*domain.Note {
	if strings.TrimSpace(term) == "" {
		out := make([]*domain.Note, len(notes))
		copy(out, notes)
		return out
	}

	out := make([]*domain.Note, 0, len(notes))
	for _, n := range notes {
		if n.Contains(term) {
			out = append(out, n)
		}
	}
	return out
}
