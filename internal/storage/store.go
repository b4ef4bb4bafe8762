package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for punch frame operations.
type Store interface {
	Insert(ctx context.Context, frame *Frame) (string, error)
	UpdateFields(ctx context.Context, id string, patch FramePatch) error
	SoftDelete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (*Frame, error)
	FindByShortID(ctx context.Context, prefix string) (*Frame, error)
	Find(ctx context.Context, filter FrameFilter) ([]Frame, error)
	StartedFrame(ctx context.Context) (*Frame, error)
	LastFrame(ctx context.Context) (*Frame, error)
	Projects(ctx context.Context) ([]string, error)
	TagNames(ctx context.Context) ([]string, error)
	HasProject(ctx context.Context, name string) (bool, error)
	HasTag(ctx context.Context, name string) (bool, error)
	WouldCollide(ctx context.Context, start, end time.Time) (string, error)
	WouldCollideAtStart(ctx context.Context, start time.Time) (string, error)
	WouldCollideExcluding(ctx context.Context, start, end time.Time, excludeID string) (string, error)
	WouldCollideAtStartExcluding(ctx context.Context, start time.Time, excludeID string) (string, error)
	Close() error
}

// frameColumns is the canonical select list for frame rows.
const frameColumns = `id, start, "end", project, deleted, last_update`

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	insertFrame *sql.Stmt
	insertTag   *sql.Stmt
	getFrame    *sql.Stmt
	getTags     *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertFrame, err = s.db.Prepare(`
		INSERT INTO frames (id, start, "end", project, deleted, last_update)
		VALUES (?, ?, ?, ?, 0, ?)
	`)
	if err != nil {
		return err
	}

	s.insertTag, err = s.db.Prepare(`
		INSERT INTO frame_tags (frame_id, position, tag) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getFrame, err = s.db.Prepare(`
		SELECT ` + frameColumns + ` FROM frames WHERE id = ? AND deleted = 0
	`)
	if err != nil {
		return err
	}

	s.getTags, err = s.db.Prepare(`
		SELECT tag FROM frame_tags WHERE frame_id = ? ORDER BY position
	`)
	if err != nil {
		return err
	}

	return nil
}

// generateID creates a frame id: a random v4 UUID string.
func generateID() string {
	return uuid.New().String()
}

// formatTime renders a timestamp for storage: UTC RFC3339, second
// resolution.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// validateInterval enforces start < end for closed intervals.
func validateInterval(start time.Time, end *time.Time) error {
	if end == nil {
		return nil
	}
	s := start.Truncate(time.Second)
	e := end.Truncate(time.Second)
	if !s.Before(e) {
		return &ValidationError{
			Start: s.Format(time.RFC3339),
			End:   e.Format(time.RFC3339),
		}
	}
	return nil
}

// Insert persists a new frame and its tags in one transaction. The frame's
// ID is generated when unset and LastUpdate is refreshed. Collision checks
// are the caller's responsibility; Insert only rejects malformed intervals.
func (s *SQLiteStore) Insert(ctx context.Context, frame *Frame) (string, error) {
	if err := validateInterval(frame.Start, frame.End); err != nil {
		return "", err
	}

	if frame.ID == "" {
		frame.ID = generateID()
	}
	frame.LastUpdate = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var endVal interface{}
	if frame.End != nil {
		endVal = formatTime(*frame.End)
	}

	_, err = tx.StmtContext(ctx, s.insertFrame).ExecContext(ctx,
		frame.ID, formatTime(frame.Start), endVal, frame.Project,
		formatTime(frame.LastUpdate),
	)
	if err != nil {
		return "", fmt.Errorf("insert frame: %w", err)
	}

	for i, tag := range frame.Tags {
		_, err = tx.StmtContext(ctx, s.insertTag).ExecContext(ctx, frame.ID, i, tag)
		if err != nil {
			return "", fmt.Errorf("insert tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	return frame.ID, nil
}

// UpdateFields applies a partial update to a non-deleted frame, refreshing
// last_update. The resulting interval is re-validated; collision checks
// against other frames remain the caller's responsibility.
func (s *SQLiteStore) UpdateFields(ctx context.Context, id string, patch FramePatch) error {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	start := current.Start
	if patch.Start != nil {
		start = *patch.Start
	}
	end := current.End
	if patch.ClearEnd {
		end = nil
	} else if patch.End != nil {
		end = patch.End
	}
	project := current.Project
	if patch.Project != nil {
		project = *patch.Project
	}

	if err := validateInterval(start, end); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var endVal interface{}
	if end != nil {
		endVal = formatTime(*end)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE frames SET start = ?, "end" = ?, project = ?, last_update = ?
		 WHERE id = ? AND deleted = 0`,
		formatTime(start), endVal, project, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update frame: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return &NotFoundError{ID: id}
	}

	if patch.Tags != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM frame_tags WHERE frame_id = ?", id,
		); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		for i, tag := range *patch.Tags {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO frame_tags (frame_id, position, tag) VALUES (?, ?, ?)",
				id, i, tag,
			); err != nil {
				return fmt.Errorf("insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// SoftDelete marks a frame deleted. It returns false without an error when
// the frame was already deleted, so callers can still report success, and
// NotFoundError when the id never existed.
func (s *SQLiteStore) SoftDelete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE frames SET deleted = 1, last_update = ? WHERE id = ? AND deleted = 0`,
		formatTime(time.Now()), id,
	)
	if err != nil {
		return false, fmt.Errorf("soft delete: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	// Distinguish "already deleted" from "never existed".
	var deleted bool
	err = s.db.QueryRowContext(ctx,
		"SELECT deleted FROM frames WHERE id = ?", id,
	).Scan(&deleted)
	if err == sql.ErrNoRows {
		return false, &NotFoundError{ID: id}
	}
	if err != nil {
		return false, fmt.Errorf("check frame: %w", err)
	}
	return false, nil
}

// FindByID retrieves a single non-deleted frame by its full id.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*Frame, error) {
	row := s.getFrame.QueryRowContext(ctx, id)
	frame, err := s.scanFrameRow(ctx, row.Scan)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get frame: %w", err)
	}
	return frame, nil
}

// FindByShortID resolves a leading id prefix against the non-deleted
// frames. It fails with AmbiguousError when more than one frame matches.
func (s *SQLiteStore) FindByShortID(ctx context.Context, prefix string) (*Frame, error) {
	if prefix == "" {
		return nil, &NotFoundError{}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+frameColumns+` FROM frames
		 WHERE deleted = 0 AND substr(id, 1, ?) = ?`,
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	frames, err := s.collectFrames(ctx, rows)
	if err != nil {
		return nil, err
	}

	switch len(frames) {
	case 0:
		return nil, &NotFoundError{ID: prefix}
	case 1:
		return &frames[0], nil
	default:
		return nil, &AmbiguousError{Prefix: prefix, Matches: len(frames)}
	}
}

// Find returns the non-deleted frames matching the filter, most recent
// start first. The filter must already carry its defaults; Validate runs
// before any query.
func (s *SQLiteStore) Find(ctx context.Context, filter FrameFilter) ([]Frame, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	clauses := []string{"deleted = 0", "start > ?"}
	args := []interface{}{formatTime(filter.From)}

	if len(filter.IgnoredProjects) > 0 {
		clauses = append(clauses,
			"project NOT IN ("+placeholders(len(filter.IgnoredProjects))+")")
		for _, p := range filter.IgnoredProjects {
			args = append(args, p)
		}
	}
	if len(filter.Projects) > 0 {
		clauses = append(clauses,
			"project IN ("+placeholders(len(filter.Projects))+")")
		for _, p := range filter.Projects {
			args = append(args, p)
		}
	}

	query := `SELECT ` + frameColumns + ` FROM frames WHERE ` +
		joinClauses(clauses) + ` ORDER BY start DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	frames, err := s.collectFrames(ctx, rows)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	matched := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if !filter.matchTags(f.Tags) {
			continue
		}
		if !filter.matchBound(&f, now) {
			continue
		}
		matched = append(matched, f)
	}

	return matched, nil
}

// StartedFrame returns the currently running frame, or NotFoundError when
// no frame is open.
func (s *SQLiteStore) StartedFrame(ctx context.Context) (*Frame, error) {
	return s.queryOne(ctx,
		`SELECT `+frameColumns+` FROM frames
		 WHERE deleted = 0 AND "end" IS NULL
		 ORDER BY start DESC LIMIT 1`,
	)
}

// LastFrame returns the most recently started non-deleted frame, running
// or not.
func (s *SQLiteStore) LastFrame(ctx context.Context) (*Frame, error) {
	return s.queryOne(ctx,
		`SELECT `+frameColumns+` FROM frames
		 WHERE deleted = 0
		 ORDER BY start DESC LIMIT 1`,
	)
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, args ...interface{}) (*Frame, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	frame, err := s.scanFrameRow(ctx, row.Scan)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{}
	}
	if err != nil {
		return nil, fmt.Errorf("query frame: %w", err)
	}
	return frame, nil
}

// Projects returns the distinct project names among non-deleted frames.
func (s *SQLiteStore) Projects(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT DISTINCT project FROM frames WHERE deleted = 0 ORDER BY project`,
	)
}

// TagNames returns the distinct tags among non-deleted frames.
func (s *SQLiteStore) TagNames(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT DISTINCT t.tag FROM frame_tags t
		 JOIN frames f ON f.id = t.frame_id
		 WHERE f.deleted = 0 ORDER BY t.tag`,
	)
}

// HasProject reports whether any non-deleted frame uses the project.
func (s *SQLiteStore) HasProject(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx,
		`SELECT 1 FROM frames WHERE deleted = 0 AND project = ? LIMIT 1`, name)
}

// HasTag reports whether any non-deleted frame carries the tag.
func (s *SQLiteStore) HasTag(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx,
		`SELECT 1 FROM frame_tags t
		 JOIN frames f ON f.id = t.frame_id
		 WHERE f.deleted = 0 AND t.tag = ? LIMIT 1`, name)
}

func (s *SQLiteStore) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// scanFrameRow scans one frame row via the given scan func and loads its
// tags. The scan source must be fully consumed (a QueryRow) so the tag
// query does not race the open result set.
func (s *SQLiteStore) scanFrameRow(ctx context.Context, scan func(...interface{}) error) (*Frame, error) {
	f, err := scanFrame(scan)
	if err != nil {
		return nil, err
	}
	f.Tags, err = s.loadTags(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// scanFrame scans one frame row without its tags.
func scanFrame(scan func(...interface{}) error) (*Frame, error) {
	var f Frame
	var startStr, updateStr string
	var endStr sql.NullString

	if err := scan(&f.ID, &startStr, &endStr, &f.Project, &f.Deleted, &updateStr); err != nil {
		return nil, err
	}

	var err error
	f.Start, err = parseTimestamp(startStr)
	if err != nil {
		return nil, err
	}
	if endStr.Valid {
		end, err := parseTimestamp(endStr.String)
		if err != nil {
			return nil, err
		}
		f.End = &end
	}
	f.LastUpdate, _ = parseTimestamp(updateStr)

	return &f, nil
}

// collectFrames drains and closes rows, then loads tags for each frame.
// Tags are loaded after the result set closes so a single connection
// suffices.
func (s *SQLiteStore) collectFrames(ctx context.Context, rows *sql.Rows) ([]Frame, error) {
	frames := []Frame{}
	for rows.Next() {
		f, err := scanFrame(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, *f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range frames {
		tags, err := s.loadTags(ctx, frames[i].ID)
		if err != nil {
			return nil, err
		}
		frames[i].Tags = tags
	}
	return frames, nil
}

func (s *SQLiteStore) loadTags(ctx context.Context, frameID string) ([]string, error) {
	rows, err := s.getTags.QueryContext(ctx, frameID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	out := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}

func joinClauses(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertFrame, s.insertTag, s.getFrame, s.getTags}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
