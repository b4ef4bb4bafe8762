package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/report"
	"github.com/runnerr0/punch/internal/storage"
)

// bucketJSON is the JSON output structure for one day of the log.
type bucketJSON struct {
	Date         string      `json:"date"`
	TotalSeconds int64       `json:"total_seconds"`
	Frames       []frameJSON `json:"frames"`
}

type frameJSON struct {
	ID              string   `json:"id"`
	Start           string   `json:"start"`
	End             string   `json:"end,omitempty"`
	Project         string   `json:"project"`
	Tags            []string `json:"tags"`
	DurationSeconds int64    `json:"duration_seconds"`
}

// Execute implements the go-flags Commander interface for LogCommand.
func (c *LogCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the log logic against a provided store (used by
// tests).
func (c *LogCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	filter, err := c.buildFilter(cfg)
	if err != nil {
		return err
	}

	frames, err := store.Find(ctx, filter)
	if err != nil {
		return err
	}

	buckets := report.Build(frames, c.Reverse)
	now := time.Now()

	if c.globals != nil && c.globals.JSON {
		return printBucketsJSON(buckets, now)
	}

	printBuckets(buckets, now)
	return nil
}

// buildFilter turns the command flags into a filter specification with
// defaults applied.
func (c *LogCommand) buildFilter(cfg *config.Config) (storage.FrameFilter, error) {
	filter := storage.FrameFilter{
		Projects:        c.Projects,
		IgnoredProjects: c.IgnoreProjects,
		Tags:            c.Tags,
		IgnoredTags:     c.IgnoreTags,
		IncludeCurrent:  c.Current,
	}

	var err error
	if c.From != "" {
		filter.From, err = parseTimeArg(c.From, cfg)
		if err != nil {
			return filter, err
		}
	}
	if c.To != "" {
		filter.To, err = parseTimeArg(c.To, cfg)
		if err != nil {
			return filter, err
		}
	}

	return filter.WithDefaults(time.Now()), nil
}

func printBuckets(buckets []report.Bucket, now time.Time) {
	for i, bucket := range buckets {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s (%s)\n",
			timeColor.Sprint(bucket.Date.Format("Mon 02 January 2006")),
			elapsedColor.Sprint(formatDuration(bucket.Total(now))),
		)
		for _, frame := range bucket.Frames {
			endLabel := "now"
			if frame.End != nil {
				endLabel = frame.End.Local().Format("15:04")
			}
			fmt.Printf("\t%s  %s to %s  %10s  %s%s\n",
				frame.ShortID(),
				frame.Start.Local().Format("15:04"),
				endLabel,
				formatDuration(frame.Duration(now)),
				projectColor.Sprint(frame.Project),
				tagList(frame.Tags),
			)
		}
	}
}

func printBucketsJSON(buckets []report.Bucket, now time.Time) error {
	out := make([]bucketJSON, 0, len(buckets))
	for _, bucket := range buckets {
		b := bucketJSON{
			Date:         bucket.Date.Format("2006-01-02"),
			TotalSeconds: int64(bucket.Total(now).Seconds()),
			Frames:       make([]frameJSON, 0, len(bucket.Frames)),
		}
		for _, frame := range bucket.Frames {
			fj := frameJSON{
				ID:              frame.ID,
				Start:           frame.Start.UTC().Format(time.RFC3339),
				Project:         frame.Project,
				Tags:            frame.Tags,
				DurationSeconds: int64(frame.Duration(now).Seconds()),
			}
			if fj.Tags == nil {
				fj.Tags = []string{}
			}
			if frame.End != nil {
				fj.End = frame.End.UTC().Format(time.RFC3339)
			}
			b.Frames = append(b.Frames, fj)
		}
		out = append(out, b)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
