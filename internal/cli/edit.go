package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// editableFrame is the JSON document presented in the editor. Times use
// the configured display format.
type editableFrame struct {
	Start   string   `json:"start"`
	End     string   `json:"end,omitempty"`
	Project string   `json:"project"`
	Tags    []string `json:"tags"`
}

// Execute implements the go-flags Commander interface for EditCommand.
func (c *EditCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the edit logic against a provided store (used by
// tests).
func (c *EditCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	var frame *storage.Frame
	var err error
	if c.Args.ID != "" {
		frame, err = store.FindByShortID(ctx, c.Args.ID)
		if err != nil {
			return err
		}
	} else {
		frame, err = store.LastFrame(ctx)
		if isNotFound(err) {
			return fmt.Errorf("no frames recorded yet, it's time to create your first one")
		}
		if err != nil {
			return err
		}
	}

	start := frame.Start
	end := frame.End
	project := frame.Project
	tags := frame.Tags

	if c.Start != "" || c.End != "" || c.Project != "" || len(c.Tags) > 0 {
		if c.Start != "" {
			start, err = parseTimeArg(c.Start, cfg)
			if err != nil {
				return err
			}
		}
		if c.End != "" {
			if strings.EqualFold(c.End, "none") {
				end = nil
			} else {
				t, err := parseTimeArg(c.End, cfg)
				if err != nil {
					return err
				}
				end = &t
			}
		}
		if c.Project != "" {
			project = c.Project
		}
		if len(c.Tags) > 0 {
			tags = parseTags(c.Tags)
		}
	} else {
		start, end, project, tags, err = c.editInEditor(frame, cfg)
		if err != nil {
			return err
		}
	}

	if err := c.validate(ctx, store, frame, start, end); err != nil {
		return err
	}

	patch := storage.FramePatch{
		Start:   &start,
		Project: &project,
		Tags:    &tags,
	}
	if end == nil {
		patch.ClearEnd = true
	} else {
		patch.End = end
	}

	if err := store.UpdateFields(ctx, frame.ID, patch); err != nil {
		return err
	}

	fmt.Printf("Edited frame %s (%s)\n", frame.ShortID(), projectColor.Sprint(project))
	return nil
}

// editInEditor round-trips the frame through $EDITOR as a JSON document.
func (c *EditCommand) editInEditor(frame *storage.Frame, cfg *config.Config) (time.Time, *time.Time, string, []string, error) {
	layout := cfg.Display.DatetimeFormat

	doc := editableFrame{
		Start:   frame.Start.Local().Format(layout),
		Project: frame.Project,
		Tags:    frame.Tags,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if frame.End != nil {
		doc.End = frame.End.Local().Format(layout)
	}

	initial, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return time.Time{}, nil, "", nil, err
	}

	edited, err := openInEditor(initial)
	if err != nil {
		return time.Time{}, nil, "", nil, err
	}

	var out editableFrame
	if err := json.Unmarshal(edited, &out); err != nil {
		return time.Time{}, nil, "", nil, fmt.Errorf("parsing edited frame: %w", err)
	}
	if out.Project == "" {
		return time.Time{}, nil, "", nil, fmt.Errorf("project must not be empty")
	}

	start, err := parseTimeArg(out.Start, cfg)
	if err != nil {
		return time.Time{}, nil, "", nil, err
	}
	var end *time.Time
	if out.End != "" {
		t, err := parseTimeArg(out.End, cfg)
		if err != nil {
			return time.Time{}, nil, "", nil, err
		}
		end = &t
	}

	return start, end, out.Project, out.Tags, nil
}

// validate re-checks the edited interval against every frame but the one
// being edited, plus the single-running-frame invariant when the end is
// removed.
func (c *EditCommand) validate(ctx context.Context, store storage.Store, frame *storage.Frame, start time.Time, end *time.Time) error {
	if end == nil {
		running, err := store.StartedFrame(ctx)
		if err == nil && running.ID != frame.ID {
			return fmt.Errorf("project %s is already started", running.Project)
		}
		if err != nil && !isNotFound(err) {
			return err
		}
		conflict, err := store.WouldCollideAtStartExcluding(ctx, start, frame.ID)
		if err != nil {
			return err
		}
		if conflict != "" {
			return &storage.OverlapError{ConflictID: conflict}
		}
		return nil
	}

	conflict, err := store.WouldCollideExcluding(ctx, start, *end, frame.ID)
	if err != nil {
		return err
	}
	if conflict != "" {
		return &storage.OverlapError{ConflictID: conflict}
	}
	return nil
}
