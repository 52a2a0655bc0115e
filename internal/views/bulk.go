package views

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrFormIncomplete is returned by Submit while either field is empty.
	ErrFormIncomplete = errors.New("both the text to find and its replacement are required")
	// ErrSubmitInProgress is returned by Submit while another submit runs.
	ErrSubmitInProgress = errors.New("a bulk replace is already in progress")
)

// BulkReplaceView is the find-and-replace form.
type BulkReplaceView struct {
	store     NoteStore
	navigator Navigator
	reporter  ErrorReporter
	opts      ReplaceOptions

	mu           sync.Mutex
	originalText string
	newText      string
	loading      bool
	cancel       context.CancelFunc
	closed       bool
}

// NewBulkReplaceView creates an empty form.
func NewBulkReplaceView(store NoteStore, navigator Navigator, reporter ErrorReporter, opts ReplaceOptions) *BulkReplaceView {
	return &BulkReplaceView{
		store:     store,
		navigator: navigator,
		reporter:  reporter,
		opts:      opts,
	}
}

func (v *BulkReplaceView) SetOriginalText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.originalText = text
}

func (v *BulkReplaceView) SetNewText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.newText = text
}

func (v *BulkReplaceView) OriginalText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.originalText
}

func (v *BulkReplaceView) NewText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.newText
}

// Loading reports whether a submit is running or has just succeeded.
func (v *BulkReplaceView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// CanSubmit reports whether both fields hold at least one character.
func (v *BulkReplaceView) CanSubmit() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canSubmit()
}

func (v *BulkReplaceView) canSubmit() bool {
	return len(v.originalText) > 0 && len(v.newText) > 0
}

// Submit runs the bulk replace with the current form values. On success it
// navigates home and stays in the loading state. On failure the error is
// reported, loading is cleared and the form keeps its values.
func (v *BulkReplaceView) Submit(ctx context.Context) (*ReplaceResult, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	if !v.canSubmit() {
		v.mu.Unlock()
		return nil, ErrFormIncomplete
	}
	if v.cancel != nil {
		v.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	original, replacement := v.originalText, v.newText
	submitCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.loading = true
	v.mu.Unlock()
	defer cancel()

	result, err := BulkReplace(submitCtx, v.store, original, replacement, v.opts)

	v.mu.Lock()
	v.cancel = nil
	closed := v.closed
	if err != nil {
		v.loading = false
	}
	v.mu.Unlock()

	if closed {
		return result, ErrViewClosed
	}
	if err != nil {
		v.reporter.Report(ctx, err)
		return result, err
	}

	v.navigator.Navigate(RouteHome)
	return result, nil
}

// Close cancels an in-flight submit. Writes already sent are not undone.
func (v *BulkReplaceView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
