package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/telemetry"
)

// DefaultMaxConcurrency leaves note updates unbounded: every matching note
// is written at once.
const DefaultMaxConcurrency = 0

// ReplaceOptions tunes BulkReplace.
type ReplaceOptions struct {
	// MaxConcurrency caps parallel writes. Zero or negative means unlimited.
	MaxConcurrency int
}

// DefaultReplaceOptions returns the options used when none are given.
func DefaultReplaceOptions() ReplaceOptions {
	return ReplaceOptions{MaxConcurrency: DefaultMaxConcurrency}
}

// Replacement is a planned rewrite of one note.
type Replacement struct {
	Note       *domain.Note
	NewContent string
}

// UpdateFailure records a note whose write failed.
type UpdateFailure struct {
	NoteID string
	Err    error
}

// ReplaceResult describes the outcome of a bulk replace.
type ReplaceResult struct {
	Matched int
	Updated []string
	Failed  []UpdateFailure
}

// Partial reports whether some writes landed and others did not.
func (r *ReplaceResult) Partial() bool {
	return len(r.Updated) > 0 && len(r.Failed) > 0
}

// BulkReplaceError is returned when at least one note update failed.
// Updates that succeeded are not rolled back.
type BulkReplaceError struct {
	Result *ReplaceResult
}

func (e *BulkReplaceError) Error() string {
	if len(e.Result.Failed) == 1 {
		f := e.Result.Failed[0]
		return fmt.Sprintf("bulk replace: update note %s: %v", f.NoteID, f.Err)
	}
	return fmt.Sprintf("bulk replace: %d of %d note updates failed",
		len(e.Result.Failed), e.Result.Matched)
}

// Unwrap exposes every underlying failure to errors.Is and errors.As.
func (e *BulkReplaceError) Unwrap() []error {
	errs := make([]error, 0, len(e.Result.Failed))
	for _, f := range e.Result.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// PlanReplace selects the notes containing original and computes their new
// content. Input notes are not modified.
func PlanReplace(notes []*domain.Note, original, replacement string) []Replacement {
	if original == "" {
		return nil
	}

	var plan []Replacement
	for _, n := range notes {
		if !n.Contains(original) {
			continue
		}
		plan = append(plan, Replacement{
			Note:       n,
			NewContent: strings.ReplaceAll(n.Content, original, replacement),
		})
	}
	return plan
}

// BulkReplace reads the whole collection once, then rewrites every note
// whose content contains original. Each match gets exactly one update; the
// order of updates is unspecified. If any update fails the call fails with a
// *BulkReplaceError, and the other updates still run to completion.
func BulkReplace(ctx context.Context, store NoteStore, original, replacement string, opts ReplaceOptions) (*ReplaceResult, error) {
	if original == "" {
		return nil, domain.ErrEmptySearchText
	}

	ctx, span := telemetry.StartSpan(ctx, "views.BulkReplace", telemetry.SpanAttributes{
		Operation: "bulk_replace",
	})
	defer span.End()

	notes, err := store.ListNotes(ctx)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("list notes: %w", err)
	}

	plan := PlanReplace(notes, original, replacement)
	result := &ReplaceResult{Matched: len(plan)}
	if len(plan) == 0 {
		return result, nil
	}

	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = -1
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(limit)

	for _, r := range plan {
		updated := *r.Note
		updated.Content = r.NewContent
		g.Go(func() error {
			_, err := store.UpdateNote(ctx, &updated)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, UpdateFailure{NoteID: updated.ID, Err: err})
				return err
			}
			result.Updated = append(result.Updated, updated.ID)
			return nil
		})
	}

	err = g.Wait()
	span.SetData("matched", result.Matched)
	span.SetData("updated", len(result.Updated))
	span.SetData("failed", len(result.Failed))
	if err != nil {
		sort.Strings(result.Updated)
		sort.Slice(result.Failed, func(i, j int) bool {
			return result.Failed[i].NoteID < result.Failed[j].NoteID
		})
		bulkErr := &BulkReplaceError{Result: result}
		span.SetError(bulkErr)
		return result, bulkErr
	}

	sort.Strings(result.Updated)
	return result, nil
}

// IsPartialFailure reports whether err is a bulk replace that left some
// notes updated.
func IsPartialFailure(err error) bool {
	var bulkErr *BulkReplaceError
	return errors.As(err, &bulkErr) && bulkErr.Result.Partial()
}
