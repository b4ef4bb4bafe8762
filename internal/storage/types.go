package storage

import "time"

// Frame represents a single recorded span of time against a project.
type Frame struct {
	ID         string
	Start      time.Time
	End        *time.Time // nil = currently running
	Project    string
	Tags       []string // insertion order preserved
	Deleted    bool
	LastUpdate time.Time
}

// Running reports whether the frame has no end yet.
func (f *Frame) Running() bool {
	return f.End == nil
}

// ShortIDLength is the number of leading id characters shown to the user.
const ShortIDLength = 7

// ShortID returns the leading characters of the frame id used for terse
// user-facing reference.
func (f *Frame) ShortID() string {
	if len(f.ID) < ShortIDLength {
		return f.ID
	}
	return f.ID[:ShortIDLength]
}

// Duration returns the elapsed time of the frame. A running frame is
// measured against now.
func (f *Frame) Duration(now time.Time) time.Duration {
	if f.End != nil {
		return f.End.Sub(f.Start)
	}
	return now.Sub(f.Start)
}

// FramePatch describes a partial update to a frame. Nil fields are left
// untouched. ClearEnd reopens the frame (sets end to NULL) and wins over
// End when both are set.
type FramePatch struct {
	Start    *time.Time
	End      *time.Time
	ClearEnd bool
	Project  *string
	Tags     *[]string
}
