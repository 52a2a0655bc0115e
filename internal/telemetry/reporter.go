package telemetry

import (
	"context"
	"log"
)

// Reporter is the error sink handed to the note views. Errors are captured
// to Sentry (a no-op when Sentry is not initialized) and optionally logged.
type Reporter struct {
	logger *log.Logger
}

// NewReporter creates a Reporter. A nil logger disables local logging.
func NewReporter(logger *log.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report captures err. Nil errors are ignored.
func (r *Reporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}

	CaptureError(ctx, err)

	if r.logger != nil {
		r.logger.Printf("error: %v", err)
	}
}
