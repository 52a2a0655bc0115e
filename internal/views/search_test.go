package views

import (
	"testing"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ids(notes []*domain.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestFilterNotes(t *testing.T) {
	notes := []*domain.Note{
		note("1", "Buy milk"),
		note("2", "Call mom"),
		note("3", "milk the cow"),
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty term selects all", "", []string{"1", "2", "3"}},
		{"whitespace term selects all", "   \t", []string{"1", "2", "3"}},
		{"substring keeps backend order", "milk", []string{"1", "3"}},
		{"case sensitive", "Milk", []string{}},
		{"untrimmed term", " milk", []string{"1"}},
		{"no match", "xyz", []string{}},
		{"regex metacharacters are literal", "m.lk", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterNotes(notes, tt.term)))
		})
	}
}

func TestFilterNotes_DoesNotMutateInput(t *testing.T) {
	notes := []*domain.Note{note("1", "a"), note("2", "b")}

	out := FilterNotes(notes, "")
	out[0] = note("x", "changed")

	assert.Equal(t, "1", notes[0].ID)
	assert.Equal(t, "a", notes[0].Content)
}

func TestFilterNotes_Idempotent(t *testing.T) {
	notes := []*domain.Note{note("1", "alpha"), note("2", "beta"), note("3", "alphabet")}

	once := FilterNotes(notes, "alpha")
	twice := FilterNotes(once, "alpha")

	assert.Equal(t, ids(once), ids(twice))
}

func TestFilterNotes_Empty(t *testing.T) {
	assert.Empty(t, FilterNotes(nil, "x"))
	assert.Empty(t, FilterNotes(nil, ""))
}
