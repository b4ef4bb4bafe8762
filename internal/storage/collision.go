package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// WouldCollide reports whether the candidate interval [start, end)
// intersects any non-deleted frame. It returns the conflicting frame's id,
// or "" when the interval is free. A running frame is treated as extending
// to positive infinity.
func (s *SQLiteStore) WouldCollide(ctx context.Context, start, end time.Time) (string, error) {
	return s.collide(ctx, start, end, "")
}

// WouldCollideAtStart reports whether starting a new open-ended frame at
// start would overrun an existing frame: any frame whose end is strictly
// after start, or that is still running, conflicts.
func (s *SQLiteStore) WouldCollideAtStart(ctx context.Context, start time.Time) (string, error) {
	return s.collideAtStart(ctx, start, "")
}

// WouldCollideExcluding is WouldCollide with one frame exempted, used when
// re-validating an edited frame against everything but itself.
func (s *SQLiteStore) WouldCollideExcluding(ctx context.Context, start, end time.Time, excludeID string) (string, error) {
	return s.collide(ctx, start, end, excludeID)
}

// WouldCollideAtStartExcluding is WouldCollideAtStart with one frame
// exempted.
func (s *SQLiteStore) WouldCollideAtStartExcluding(ctx context.Context, start time.Time, excludeID string) (string, error) {
	return s.collideAtStart(ctx, start, excludeID)
}

func (s *SQLiteStore) collide(ctx context.Context, start, end time.Time, excludeID string) (string, error) {
	query := `
		SELECT id FROM frames
		WHERE deleted = 0
		  AND start < ?
		  AND ("end" IS NULL OR "end" > ?)
	`
	args := []interface{}{formatTime(end), formatTime(start)}
	if excludeID != "" {
		query += " AND id != ?"
		args = append(args, excludeID)
	}
	query += " ORDER BY start DESC LIMIT 1"

	return s.conflictID(ctx, query, args...)
}

func (s *SQLiteStore) collideAtStart(ctx context.Context, start time.Time, excludeID string) (string, error) {
	query := `
		SELECT id FROM frames
		WHERE deleted = 0
		  AND ("end" IS NULL OR "end" > ?)
	`
	args := []interface{}{formatTime(start)}
	if excludeID != "" {
		query += " AND id != ?"
		args = append(args, excludeID)
	}
	query += " ORDER BY start DESC LIMIT 1"

	return s.conflictID(ctx, query, args...)
}

func (s *SQLiteStore) conflictID(ctx context.Context, query string, args ...interface{}) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("collision check: %w", err)
	}
	return id, nil
}
