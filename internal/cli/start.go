package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// Execute implements the go-flags Commander interface for StartCommand.
func (c *StartCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the start logic against a provided store (used by
// tests).
func (c *StartCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	at := time.Now()
	if c.At != "" {
		var err error
		at, err = parseTimeArg(c.At, cfg)
		if err != nil {
			return err
		}
	}

	// Only one frame may run at a time.
	running, err := store.StartedFrame(ctx)
	if err == nil {
		return fmt.Errorf("project %s is already started", running.Project)
	}
	if !isNotFound(err) {
		return err
	}

	if conflict, err := store.WouldCollideAtStart(ctx, at); err != nil {
		return err
	} else if conflict != "" {
		return &storage.OverlapError{ConflictID: conflict}
	}

	tags := parseTags(c.Args.Tags)
	if err := confirmNewNames(ctx, store, c.Args.Project, tags, c.ConfirmProject, c.ConfirmTags); err != nil {
		return err
	}

	frame := &storage.Frame{
		Start:   at,
		Project: c.Args.Project,
		Tags:    tags,
	}
	if _, err := store.Insert(ctx, frame); err != nil {
		return err
	}

	fmt.Printf("Starting project %s%s at %s\n",
		projectColor.Sprint(frame.Project),
		tagList(frame.Tags),
		timeColor.Sprint(at.Format(cfg.Display.DatetimeFormat)),
	)
	return nil
}

// confirmNewNames asks before first use of an unknown project or tag when
// the respective confirm flag is set.
func confirmNewNames(ctx context.Context, store storage.Store, project string, tags []string, confirmProject, confirmTags bool) error {
	if confirmProject {
		known, err := store.HasProject(ctx, project)
		if err != nil {
			return err
		}
		if !known && !confirm(fmt.Sprintf("Project %q does not exist yet. Create it?", project)) {
			return fmt.Errorf("aborted")
		}
	}
	if confirmTags {
		for _, tag := range tags {
			known, err := store.HasTag(ctx, tag)
			if err != nil {
				return err
			}
			if !known && !confirm(fmt.Sprintf("Tag %q does not exist yet. Create it?", tag)) {
				return fmt.Errorf("aborted")
			}
		}
	}
	return nil
}

// isNotFound reports whether err is the storage not-found kind.
func isNotFound(err error) bool {
	var nf *storage.NotFoundError
	return errors.As(err, &nf)
}
