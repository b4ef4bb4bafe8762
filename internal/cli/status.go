package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Running        bool     `json:"running"`
	ID             string   `json:"id,omitempty"`
	Project        string   `json:"project,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Start          string   `json:"start,omitempty"`
	ElapsedSeconds int64    `json:"elapsed_seconds,omitempty"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the status logic against a provided store (used by
// tests).
func (c *StatusCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	flagged := 0
	for _, b := range []bool{c.ShowProject, c.ShowTags, c.ShowElapsed} {
		if b {
			flagged++
		}
	}
	if flagged > 1 {
		return fmt.Errorf("--project, --tags and --elapsed are mutually exclusive")
	}

	ctx := context.Background()

	frame, err := store.StartedFrame(ctx)
	if isNotFound(err) {
		if c.globals != nil && c.globals.JSON {
			enc := json.NewEncoder(os.Stdout)
			return enc.Encode(statusJSON{Running: false})
		}
		fmt.Println("No project started.")
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now()

	if c.globals != nil && c.globals.JSON {
		out := statusJSON{
			Running:        true,
			ID:             frame.ID,
			Project:        frame.Project,
			Tags:           frame.Tags,
			Start:          frame.Start.UTC().Format(time.RFC3339),
			ElapsedSeconds: int64(now.Sub(frame.Start).Seconds()),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if c.ShowProject {
		fmt.Println(projectColor.Sprint(frame.Project))
		return nil
	}
	if c.ShowTags {
		fmt.Println(tagColor.Sprint(strings.Join(frame.Tags, ", ")))
		return nil
	}
	if c.ShowElapsed {
		fmt.Println(elapsedColor.Sprint(humanizeSince(frame.Start, now)))
		return nil
	}

	fmt.Printf("Project %s%s started %s (%s)\n",
		projectColor.Sprint(frame.Project),
		tagList(frame.Tags),
		elapsedColor.Sprint(humanizeSince(frame.Start, now)),
		timeColor.Sprint(frame.Start.Local().Format(cfg.Display.DatetimeFormat)),
	)
	return nil
}
