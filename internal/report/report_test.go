package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/punch/internal/storage"
)

func frame(project string, start, end time.Time) storage.Frame {
	e := end
	return storage.Frame{ID: project + start.Format("150405"), Start: start, End: &e, Project: project}
}

func day(d, hour, min int) time.Time {
	return time.Date(2026, 8, d, hour, min, 0, 0, time.UTC)
}

func TestBuild_SameDayTotals(t *testing.T) {
	frames := []storage.Frame{
		frame("apollo", day(24, 11, 0), day(24, 12, 30)), // 90m
		frame("hubble", day(24, 9, 0), day(24, 9, 30)),   // 30m
	}

	buckets := Build(frames, false)

	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0].Frames, 2)
	assert.Equal(t, 120*time.Minute, buckets[0].Total(time.Now()))
}

func TestBuild_SplitsByStartDate(t *testing.T) {
	// Descending order, most recent first, as the store returns them.
	frames := []storage.Frame{
		frame("a", day(25, 9, 0), day(25, 10, 0)),
		frame("a", day(24, 14, 0), day(24, 15, 0)),
		frame("a", day(24, 9, 0), day(24, 10, 0)),
	}

	buckets := Build(frames, false)

	require.Len(t, buckets, 2)
	assert.Equal(t, day(25, 0, 0), buckets[0].Date)
	assert.Equal(t, day(24, 0, 0), buckets[1].Date)
	assert.Len(t, buckets[0].Frames, 1)
	assert.Len(t, buckets[1].Frames, 2)
}

func TestBuild_OldestFirstReversesEverything(t *testing.T) {
	frames := []storage.Frame{
		frame("a", day(25, 9, 0), day(25, 10, 0)),
		frame("b", day(24, 14, 0), day(24, 15, 0)),
		frame("c", day(24, 9, 0), day(24, 10, 0)),
	}

	buckets := Build(frames, true)

	require.Len(t, buckets, 2)
	assert.Equal(t, day(24, 0, 0), buckets[0].Date)
	assert.Equal(t, day(25, 0, 0), buckets[1].Date)
	// Within the day, oldest frame first.
	require.Len(t, buckets[0].Frames, 2)
	assert.Equal(t, "c", buckets[0].Frames[0].Project)
	assert.Equal(t, "b", buckets[0].Frames[1].Project)
}

func TestBuild_MidnightSpanBucketedByStart(t *testing.T) {
	frames := []storage.Frame{
		frame("night", day(24, 23, 0), day(25, 1, 0)),
	}

	buckets := Build(frames, false)

	require.Len(t, buckets, 1)
	assert.Equal(t, day(24, 0, 0), buckets[0].Date, "bucket follows start, not end")
	assert.Equal(t, 2*time.Hour, buckets[0].Total(time.Now()))
}

func TestBucket_RunningFrameLiveTotal(t *testing.T) {
	now := time.Now()
	open := storage.Frame{ID: "x", Start: now.Add(-2 * time.Hour), Project: "a"}

	buckets := Build([]storage.Frame{open}, false)

	require.Len(t, buckets, 1)
	assert.InDelta(t, (2 * time.Hour).Seconds(),
		buckets[0].Total(now).Seconds(), 1)

	// Recomputed at render time: a later now yields a larger total.
	later := now.Add(30 * time.Minute)
	assert.InDelta(t, (2*time.Hour + 30*time.Minute).Seconds(),
		buckets[0].Total(later).Seconds(), 1)
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil, false))
	assert.Empty(t, Build(nil, true))
}
