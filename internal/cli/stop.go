package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// Execute implements the go-flags Commander interface for StopCommand.
func (c *StopCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the stop logic against a provided store (used by
// tests).
func (c *StopCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	at := time.Now()
	if c.At != "" {
		var err error
		at, err = parseTimeArg(c.At, cfg)
		if err != nil {
			return err
		}
	}

	frame, err := store.StartedFrame(ctx)
	if isNotFound(err) {
		fmt.Println("No project started.")
		return nil
	}
	if err != nil {
		return err
	}

	end := at
	if err := store.UpdateFields(ctx, frame.ID, storage.FramePatch{End: &end}); err != nil {
		return err
	}

	now := time.Now()
	fmt.Printf("Stopping project %s%s, started %s and stopped %s\n",
		projectColor.Sprint(frame.Project),
		tagList(frame.Tags),
		elapsedColor.Sprint(humanizeSince(frame.Start, now)),
		elapsedColor.Sprint(humanizeSince(at, now)),
	)
	return nil
}
