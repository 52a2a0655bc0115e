package client

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/telemetry"
	"github.com/cloo-solutions/scratch/internal/views"
)

// Settings are client-side knobs read from SCRATCH_* variables.
type Settings struct {
	BulkConcurrency int    `split_words:"true" default:"0"`
	TimeFormat      string `split_words:"true" default:"1/2/2006, 3:04:05 PM"`
	TimeZone        string `split_words:"true"`
	SentryDSN       string `split_words:"true"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("SCRATCH", &s); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &s, nil
}

// Location resolves TimeZone, falling back to the local zone.
func (s *Settings) Location() (*time.Location, error) {
	if s.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCRATCH_TIME_ZONE %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// ReplaceOptions returns the bulk replace options for these settings.
func (s *Settings) ReplaceOptions() views.ReplaceOptions {
	return views.ReplaceOptions{MaxConcurrency: s.BulkConcurrency}
}

// session reports whether the CLI resolved an API key.
type session struct {
	api *APIClient
}

func (s session) IsAuthenticated() bool {
	return s.api != nil && s.api.HasCredentials()
}

// navigator records the last route the views asked for.
type navigator struct {
	route string
}

func (n *navigator) Navigate(route string) {
	n.route = route
}

// env bundles what every note command needs.
type env struct {
	api      *APIClient
	notes    *NotesClient
	settings *Settings
	session  views.Session
	reporter *telemetry.Reporter
	shutdown func()
}

// newEnv resolves credentials and settings for cmd. A missing API key is not
// an error here: the views render a signed-out state instead.
func newEnv(cmd *cobra.Command) (*env, error) {
	apiKey, baseURL, err := resolveCredentials(cmd)
	if err != nil {
		return nil, err
	}
	api, err := NewAPIClientWithConfig(apiKey, baseURL)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Init(telemetry.Config{DSN: settings.SentryDSN})
	if err != nil {
		return nil, err
	}

	return &env{
		api:      api,
		notes:    NewNotesClient(api),
		settings: settings,
		session:  session{api: api},
		reporter: telemetry.NewReporter(nil),
		shutdown: shutdown,
	}, nil
}

func (e *env) close() {
	if e.shutdown != nil {
		e.shutdown()
	}
}

func (e *env) homeView() (*views.NoteListView, error) {
	loc, err := e.settings.Location()
	if err != nil {
		return nil, err
	}
	return views.NewNoteListView(e.notes, e.session, e.reporter,
		views.WithTimeFormat(e.settings.TimeFormat, loc)), nil
}

func (e *env) requireAuth() error {
	if !e.session.IsAuthenticated() {
		return fmt.Errorf("%s not set (run 'scratch auth login' or set environment variable)", envAPIKey)
	}
	return nil
}
