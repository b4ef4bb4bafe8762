package storage

import "fmt"

// ValidationError reports a malformed frame interval (start at or after end).
type ValidationError struct {
	Start string
	End   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid interval: start %s is not before end %s", e.Start, e.End)
}

// OverlapError reports that a candidate interval collides with an existing
// frame. ConflictID is the full id of the conflicting frame.
type OverlapError struct {
	ConflictID string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlaps existing frame %s", e.ConflictID)
}

// NotFoundError reports that no non-deleted frame matches the given id or
// short id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return "no frame found"
	}
	return fmt.Sprintf("no frame found with id %s", e.ID)
}

// AmbiguousError reports that a short id prefix matches more than one frame.
type AmbiguousError struct {
	Prefix  string
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("id %s is ambiguous: %d frames match", e.Prefix, e.Matches)
}

// ConfigurationError reports an invalid filter specification, detected
// before any query runs.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid filter: " + e.Reason
}
