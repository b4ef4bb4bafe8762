package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore creates a migrated in-memory store for testing. The pool is
// pinned to one connection so the :memory: database is shared.
func openTestStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, db
}

// at builds a fixed timestamp on a reference day.
func at(hour, min int) time.Time {
	return time.Date(2026, 8, 24, hour, min, 0, 0, time.UTC)
}

func closedFrame(project string, start, end time.Time, tags ...string) *Frame {
	e := end
	return &Frame{Start: start, End: &e, Project: project, Tags: tags}
}

// --- Insert + FindByID roundtrip ---

func TestInsert_FindByID_Roundtrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	frame := closedFrame("apollo", at(9, 0), at(10, 30), "nav", "brakes")

	id, err := store.Insert(ctx, frame)
	require.NoError(t, err)
	assert.Len(t, id, 36, "id should be a full UUID string")

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "apollo", got.Project)
	assert.Equal(t, []string{"nav", "brakes"}, got.Tags, "tag order preserved")
	assert.True(t, got.Start.Equal(at(9, 0)))
	require.NotNil(t, got.End)
	assert.True(t, got.End.Equal(at(10, 30)))
	assert.False(t, got.LastUpdate.IsZero())
}

func TestInsert_GeneratesUniqueIDs(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	f1 := closedFrame("a", at(9, 0), at(10, 0))
	f2 := closedFrame("b", at(10, 0), at(11, 0))

	id1, err := store.Insert(ctx, f1)
	require.NoError(t, err)
	id2, err := store.Insert(ctx, f2)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestInsert_RejectsInvertedInterval(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, closedFrame("apollo", at(11, 0), at(10, 0)))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Zero-length frames are rejected too.
	_, err = store.Insert(ctx, closedFrame("apollo", at(10, 0), at(10, 0)))
	require.ErrorAs(t, err, &verr)
}

func TestInsert_OpenFrame(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, &Frame{Start: at(9, 0), Project: "apollo"})
	require.NoError(t, err)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.End)
	assert.True(t, got.Running())
}

// --- UpdateFields ---

func TestUpdateFields_Patch(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, closedFrame("apollo", at(9, 0), at(10, 0), "nav"))
	require.NoError(t, err)

	before, err := store.FindByID(ctx, id)
	require.NoError(t, err)

	project := "hubble"
	tags := []string{"optics", "mirror"}
	newEnd := at(11, 0)
	err = store.UpdateFields(ctx, id, FramePatch{
		End:     &newEnd,
		Project: &project,
		Tags:    &tags,
	})
	require.NoError(t, err)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hubble", got.Project)
	assert.Equal(t, []string{"optics", "mirror"}, got.Tags)
	assert.True(t, got.End.Equal(at(11, 0)))
	assert.True(t, got.Start.Equal(at(9, 0)), "unpatched field untouched")
	assert.False(t, got.LastUpdate.Before(before.LastUpdate), "last_update refreshed")
}

func TestUpdateFields_RejectsInvertedResult(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, closedFrame("apollo", at(9, 0), at(10, 0)))
	require.NoError(t, err)

	badStart := at(10, 30)
	err = store.UpdateFields(ctx, id, FramePatch{Start: &badStart})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateFields_NotFound(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	project := "x"
	err := store.UpdateFields(ctx, "no-such-id", FramePatch{Project: &project})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUpdateFields_ClearEnd(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, closedFrame("apollo", at(9, 0), at(10, 0)))
	require.NoError(t, err)

	require.NoError(t, store.UpdateFields(ctx, id, FramePatch{ClearEnd: true}))

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.End)
}

// --- SoftDelete ---

func TestSoftDelete_Semantics(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, closedFrame("apollo", at(9, 0), at(10, 0)))
	require.NoError(t, err)

	deleted, err := store.SoftDelete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Idempotent: deleting again is a distinct no-op, not an error.
	deleted, err = store.SoftDelete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Non-deleted lookup no longer sees it.
	_, err = store.FindByID(ctx, id)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	// The row is still physically present.
	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM frames WHERE id = ?", id,
	).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSoftDelete_NeverExisted(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.SoftDelete(context.Background(), "no-such-id")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

// --- FindByShortID ---

func TestFindByShortID(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	f1 := closedFrame("apollo", at(9, 0), at(10, 0))
	f1.ID = "abcdef11-1111-1111-1111-111111111111"
	f2 := closedFrame("hubble", at(10, 0), at(11, 0))
	f2.ID = "abcdef12-2222-2222-2222-222222222222"

	_, err := store.Insert(ctx, f1)
	require.NoError(t, err)
	_, err = store.Insert(ctx, f2)
	require.NoError(t, err)

	// The ids share a 7-char prefix.
	_, err = store.FindByShortID(ctx, "abcdef1")
	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, 2, amb.Matches)

	// One more character restores uniqueness.
	got, err := store.FindByShortID(ctx, "abcdef11")
	require.NoError(t, err)
	assert.Equal(t, f1.ID, got.ID)

	_, err = store.FindByShortID(ctx, "ffffff")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestFindByShortID_IgnoresDeleted(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	f1 := closedFrame("apollo", at(9, 0), at(10, 0))
	f1.ID = "abcdef11-1111-1111-1111-111111111111"
	f2 := closedFrame("hubble", at(10, 0), at(11, 0))
	f2.ID = "abcdef12-2222-2222-2222-222222222222"

	_, err := store.Insert(ctx, f1)
	require.NoError(t, err)
	_, err = store.Insert(ctx, f2)
	require.NoError(t, err)

	_, err = store.SoftDelete(ctx, f2.ID)
	require.NoError(t, err)

	// With f2 gone the shared prefix is unambiguous again.
	got, err := store.FindByShortID(ctx, "abcdef")
	require.NoError(t, err)
	assert.Equal(t, f1.ID, got.ID)
}

// --- StartedFrame / LastFrame ---

func TestStartedFrame(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.StartedFrame(ctx)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = store.Insert(ctx, closedFrame("apollo", at(9, 0), at(10, 0)))
	require.NoError(t, err)
	id, err := store.Insert(ctx, &Frame{Start: at(10, 0), Project: "hubble"})
	require.NoError(t, err)

	got, err := store.StartedFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestLastFrame(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, closedFrame("apollo", at(9, 0), at(10, 0)))
	require.NoError(t, err)
	id, err := store.Insert(ctx, closedFrame("hubble", at(10, 0), at(11, 0)))
	require.NoError(t, err)

	got, err := store.LastFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

// --- Projects / tags ---

func TestProjectsAndTags(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, closedFrame("voyager", at(9, 0), at(10, 0), "probe"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("apollo", at(10, 0), at(11, 0), "nav", "probe"))
	require.NoError(t, err)

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apollo", "voyager"}, projects)

	tags, err := store.TagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nav", "probe"}, tags)

	has, err := store.HasProject(ctx, "apollo")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = store.HasProject(ctx, "gemini")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = store.HasTag(ctx, "nav")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = store.HasTag(ctx, "fuel")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestProjects_ExcludeDeleted(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, closedFrame("voyager", at(9, 0), at(10, 0), "probe"))
	require.NoError(t, err)
	_, err = store.SoftDelete(ctx, id)
	require.NoError(t, err)

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	tags, err := store.TagNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

// --- Find ---

func findFilter() FrameFilter {
	return FrameFilter{
		From: at(0, 0),
		To:   at(23, 59),
	}
}

func TestFind_ByProject(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, closedFrame("a", at(9, 0), at(10, 0)))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("b", at(10, 0), at(11, 0)))
	require.NoError(t, err)

	filter := findFilter()
	filter.Projects = []string{"a"}
	frames, err := store.Find(ctx, filter)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "a", frames[0].Project)

	filter = findFilter()
	filter.IgnoredProjects = []string{"a"}
	frames, err = store.Find(ctx, filter)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "b", frames[0].Project)
}

func TestFind_ConflictingProjectsRejected(t *testing.T) {
	store, _ := openTestStore(t)

	filter := findFilter()
	filter.Projects = []string{"a"}
	filter.IgnoredProjects = []string{"a"}
	_, err := store.Find(context.Background(), filter)
	var cfg *ConfigurationError
	require.ErrorAs(t, err, &cfg)
}

func TestFind_ByTags(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, closedFrame("a", at(9, 0), at(10, 0), "nav"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("a", at(10, 0), at(11, 0), "fuel"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("a", at(11, 0), at(12, 0)))
	require.NoError(t, err)

	filter := findFilter()
	filter.Tags = []string{"nav", "brakes"}
	frames, err := store.Find(ctx, filter)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []string{"nav"}, frames[0].Tags)

	filter = findFilter()
	filter.IgnoredTags = []string{"fuel"}
	frames, err = store.Find(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, frames, 2)
}

func TestFind_ExcludesDeleted(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, closedFrame("a", at(9, 0), at(10, 0)))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("a", at(10, 0), at(11, 0)))
	require.NoError(t, err)

	_, err = store.SoftDelete(ctx, id)
	require.NoError(t, err)

	frames, err := store.Find(ctx, findFilter())
	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestFind_OrderedMostRecentFirst(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, closedFrame("a", at(9, 0), at(10, 0)))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("a", at(11, 0), at(12, 0)))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("a", at(10, 0), at(11, 0)))
	require.NoError(t, err)

	frames, err := store.Find(ctx, findFilter())
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.True(t, frames[0].Start.After(frames[1].Start))
	assert.True(t, frames[1].Start.After(frames[2].Start))
}

func TestFind_CurrentFramePolicy(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	start := now.Add(-2 * time.Hour)
	_, err := store.Insert(ctx, &Frame{Start: start, Project: "a"})
	require.NoError(t, err)

	// Future bound without IncludeCurrent: running frame excluded.
	filter := FrameFilter{From: now.Add(-24 * time.Hour), To: now.Add(24 * time.Hour)}
	frames, err := store.Find(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, frames)

	// Future bound with IncludeCurrent: included, with live duration.
	filter.IncludeCurrent = true
	frames, err = store.Find(ctx, filter)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.InDelta(t, 2*time.Hour.Seconds(),
		frames[0].Duration(time.Now()).Seconds(), 60)

	// Past bound: the running frame can never match, IncludeCurrent or not.
	filter.To = now.Add(-time.Hour)
	frames, err = store.Find(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestFind_PastBoundKeepsOnlyEndedBefore(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	_, err := store.Insert(ctx, closedFrame("a",
		now.Add(-5*time.Hour), now.Add(-4*time.Hour)))
	require.NoError(t, err)
	_, err = store.Insert(ctx, closedFrame("a",
		now.Add(-3*time.Hour), now.Add(-30*time.Minute)))
	require.NoError(t, err)

	filter := FrameFilter{From: now.Add(-24 * time.Hour), To: now.Add(-time.Hour)}
	frames, err := store.Find(ctx, filter)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.True(t, frames[0].End.Before(filter.To))
}

func TestFind_FromBoundIsStrict(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, closedFrame("a", at(9, 0), at(10, 0)))
	require.NoError(t, err)

	filter := findFilter()
	filter.From = at(9, 0) // equal to start: excluded, bound is strict
	frames, err := store.Find(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, frames)

	filter.From = at(8, 59)
	frames, err = store.Find(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, frames, 1)
}
