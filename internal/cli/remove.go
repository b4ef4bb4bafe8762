package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// Execute implements the go-flags Commander interface for RemoveCommand.
func (c *RemoveCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the remove logic against a provided store (used by
// tests).
func (c *RemoveCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	frame, err := store.FindByShortID(ctx, c.Args.ID)
	if err != nil {
		return err
	}

	if !c.Force {
		span := frame.Start.Local().Format(cfg.Display.DatetimeFormat)
		if frame.End != nil {
			span += " to " + frame.End.Local().Format(cfg.Display.DatetimeFormat)
		}
		question := fmt.Sprintf("You are about to remove frame %s (%s, %s). Continue?",
			frame.ShortID(), projectColor.Sprint(frame.Project), span)
		if !confirm(question) {
			return fmt.Errorf("aborted")
		}
	}

	// A frame deleted between lookup and delete still counts as removed.
	if _, err := store.SoftDelete(ctx, frame.ID); err != nil {
		return err
	}

	fmt.Printf("Frame %s removed.\n", frame.ShortID())
	return nil
}
