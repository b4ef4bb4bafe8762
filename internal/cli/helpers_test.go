package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"nav", "brakes"}, parseTags([]string{"+nav", "brakes"}))
	assert.Nil(t, parseTags([]string{"+"}))
	assert.Nil(t, parseTags(nil))
}

func TestParseTimeArg(t *testing.T) {
	cfg := testConfig()

	got, err := parseTimeArg("2026-08-24 09:30", cfg)
	require.NoError(t, err)
	want := time.Date(2026, 8, 24, 9, 30, 0, 0, time.Local)
	assert.True(t, got.Equal(want))

	got, err = parseTimeArg("2026-08-24 09:30:15", cfg)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Second())

	got, err = parseTimeArg("2026-08-24", cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())

	// Bare clock time resolves against today.
	now := time.Now()
	got, err = parseTimeArg("09:30", cfg)
	require.NoError(t, err)
	assert.Equal(t, now.Day(), got.Day())
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())

	_, err = parseTimeArg("not a time", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse time")

	_, err = parseTimeArg("  ", cfg)
	require.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 00s", formatDuration(0))
	assert.Equal(t, "0m 05s", formatDuration(5*time.Second))
	assert.Equal(t, "5m 03s", formatDuration(5*time.Minute+3*time.Second))
	assert.Equal(t, "1h 02m 03s", formatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "25h 00m 00s", formatDuration(25*time.Hour))
	assert.Equal(t, "0m 00s", formatDuration(-time.Minute))
}

func TestHumanizeSince(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "a few seconds ago", humanizeSince(now.Add(-10*time.Second), now))
	assert.Equal(t, "42m ago", humanizeSince(now.Add(-42*time.Minute), now))
	assert.Equal(t, "2h 05m ago", humanizeSince(now.Add(-2*time.Hour-5*time.Minute), now))
	assert.Equal(t, "a day ago", humanizeSince(now.Add(-30*time.Hour), now))
	assert.Equal(t, "3 days ago", humanizeSince(now.Add(-3*24*time.Hour), now))
}

func TestTagList(t *testing.T) {
	assert.Equal(t, "", tagList(nil))
	assert.Equal(t, " [nav, brakes]", tagList([]string{"nav", "brakes"}))
}
