package client

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	unsetEnv(t, "SCRATCH_BULK_CONCURRENCY", "SCRATCH_TIME_FORMAT", "SCRATCH_TIME_ZONE")

	s, err := LoadSettings()

	require.NoError(t, err)
	assert.Equal(t, 0, s.BulkConcurrency)
	assert.Equal(t, "1/2/2006, 3:04:05 PM", s.TimeFormat)
	assert.Equal(t, 0, s.ReplaceOptions().MaxConcurrency)

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadSettings_FromEnv(t *testing.T) {
	t.Setenv("SCRATCH_BULK_CONCURRENCY", "2")
	t.Setenv("SCRATCH_TIME_ZONE", "UTC")

	s, err := LoadSettings()

	require.NoError(t, err)
	assert.Equal(t, 2, s.BulkConcurrency)
	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadSettings_IgnoresUnprefixedVariables(t *testing.T) {
	unsetEnv(t, "SCRATCH_BULK_CONCURRENCY", "SCRATCH_TIME_ZONE")
	t.Setenv("BULK_CONCURRENCY", "3")
	t.Setenv("TIME_ZONE", "UTC")

	s, err := LoadSettings()

	require.NoError(t, err)
	assert.Equal(t, 0, s.BulkConcurrency)
	assert.Empty(t, s.TimeZone)
}

func TestLoadSettings_InvalidConcurrency(t *testing.T) {
	t.Setenv("SCRATCH_BULK_CONCURRENCY", "many")

	_, err := LoadSettings()

	assert.Error(t, err)
}

func TestSettings_InvalidTimeZone(t *testing.T) {
	s := &Settings{TimeZone: "Mars/Olympus"}

	_, err := s.Location()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCRATCH_TIME_ZONE")
}

func TestSession_IsAuthenticated(t *testing.T) {
	withKey, err := NewAPIClientWithConfig(testKey, defaultAPIURL)
	require.NoError(t, err)
	withoutKey, err := NewAPIClientWithConfig("", defaultAPIURL)
	require.NoError(t, err)

	assert.True(t, session{api: withKey}.IsAuthenticated())
	assert.False(t, session{api: withoutKey}.IsAuthenticated())
	assert.False(t, session{}.IsAuthenticated())
}
