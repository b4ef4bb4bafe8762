// Package report groups time-ordered frames into per-calendar-day buckets
// for display. It performs no I/O; callers feed it the result of a store
// query and render the buckets themselves.
package report

import (
	"time"

	"github.com/runnerr0/punch/internal/storage"
)

// Bucket holds the frames that started on one calendar day. A frame
// belongs to the day of its start even when its interval crosses midnight.
type Bucket struct {
	Date   time.Time // midnight, local to the frame timestamps
	Frames []storage.Frame
}

// Total sums the elapsed time of every frame in the bucket. A running
// frame contributes its live elapsed time against now.
func (b *Bucket) Total(now time.Time) time.Duration {
	var total time.Duration
	for i := range b.Frames {
		total += b.Frames[i].Duration(now)
	}
	return total
}

// Build walks the frame sequence and opens a new bucket whenever the start
// date changes. The input must already be ordered by start; buckets and
// the frames within them follow the same order. With oldestFirst set, each
// new bucket and frame is prepended instead, so a descending input renders
// oldest day first.
func Build(frames []storage.Frame, oldestFirst bool) []Bucket {
	var buckets []Bucket
	var currentDay time.Time

	for _, frame := range frames {
		day := startOfDay(frame.Start)
		if len(buckets) == 0 || !day.Equal(currentDay) {
			bucket := Bucket{Date: day, Frames: []storage.Frame{frame}}
			if oldestFirst {
				buckets = append([]Bucket{bucket}, buckets...)
			} else {
				buckets = append(buckets, bucket)
			}
			currentDay = day
			continue
		}

		if oldestFirst {
			buckets[0].Frames = append([]storage.Frame{frame}, buckets[0].Frames...)
		} else {
			last := len(buckets) - 1
			buckets[last].Frames = append(buckets[last].Frames, frame)
		}
	}

	return buckets
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
