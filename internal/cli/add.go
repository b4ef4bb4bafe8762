package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the add logic against a provided store (used by
// tests).
func (c *AddCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	from, err := parseTimeArg(c.From, cfg)
	if err != nil {
		return err
	}
	to, err := parseTimeArg(c.To, cfg)
	if err != nil {
		return err
	}

	if conflict, err := store.WouldCollide(ctx, from, to); err != nil {
		return err
	} else if conflict != "" {
		return &storage.OverlapError{ConflictID: conflict}
	}

	tags := parseTags(c.Args.Tags)
	if err := confirmNewNames(ctx, store, c.Args.Project, tags, c.ConfirmProject, c.ConfirmTags); err != nil {
		return err
	}

	frame := &storage.Frame{
		Start:   from,
		End:     &to,
		Project: c.Args.Project,
		Tags:    tags,
	}
	if _, err := store.Insert(ctx, frame); err != nil {
		return err
	}

	fmt.Printf("Added frame %s for project %s%s from %s to %s\n",
		frame.ShortID(),
		projectColor.Sprint(frame.Project),
		tagList(frame.Tags),
		timeColor.Sprint(from.Format(cfg.Display.DatetimeFormat)),
		timeColor.Sprint(to.Format(cfg.Display.DatetimeFormat)),
	)
	return nil
}
