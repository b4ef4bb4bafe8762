package storage

import "time"

// FrameFilter describes which frames a read command wants. The zero value
// is not usable directly; pass it through WithDefaults first.
type FrameFilter struct {
	From time.Time // inclusive lower bound on start
	To   time.Time // inclusive upper bound

	Projects        []string // empty = all projects
	IgnoredProjects []string
	Tags            []string // frame matches with at least one (empty = all)
	IgnoredTags     []string // frame excluded with at least one

	// IncludeCurrent keeps the running frame in the results when To is in
	// the future.
	IncludeCurrent bool
}

// WithDefaults fills unset time bounds: From becomes now minus 7 days and
// To tomorrow end-of-day.
func (f FrameFilter) WithDefaults(now time.Time) FrameFilter {
	if f.From.IsZero() {
		f.From = now.AddDate(0, 0, -7)
	}
	if f.To.IsZero() {
		tomorrow := now.AddDate(0, 0, 1)
		f.To = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
			23, 59, 59, 0, now.Location())
	}
	return f
}

// Validate rejects contradictory filter specifications before any query
// executes.
func (f FrameFilter) Validate() error {
	if common := intersect(f.Projects, f.IgnoredProjects); common != "" {
		return &ConfigurationError{
			Reason: "project " + common + " is both included and ignored",
		}
	}
	if common := intersect(f.Tags, f.IgnoredTags); common != "" {
		return &ConfigurationError{
			Reason: "tag " + common + " is both included and ignored",
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return &ConfigurationError{Reason: "from is after to"}
	}
	return nil
}

// matchTags applies the tag inclusion and exclusion rules to a frame's
// tags.
func (f FrameFilter) matchTags(tags []string) bool {
	if len(f.Tags) > 0 && !containsAny(tags, f.Tags) {
		return false
	}
	if containsAny(tags, f.IgnoredTags) {
		return false
	}
	return true
}

// matchBound applies the upper time bound. When To is in the future the
// running frame is kept only with IncludeCurrent; when To is already past,
// only frames that ended before To can match, so the running frame never
// does.
func (f FrameFilter) matchBound(frame *Frame, now time.Time) bool {
	if f.To.After(now) {
		if frame.End == nil {
			return f.IncludeCurrent
		}
		return true
	}
	return frame.End != nil && frame.End.Before(f.To)
}

// intersect returns one element present in both sets, or "".
func intersect(a, b []string) string {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return x
			}
		}
	}
	return ""
}

// containsAny reports whether tags contains at least one element of set.
func containsAny(tags, set []string) bool {
	for _, t := range tags {
		for _, s := range set {
			if t == s {
				return true
			}
		}
	}
	return false
}
