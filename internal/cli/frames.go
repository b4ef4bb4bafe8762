package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// allFramesFilter matches every non-deleted frame, running included.
func allFramesFilter() storage.FrameFilter {
	return storage.FrameFilter{
		From:           time.Unix(0, 0),
		To:             time.Now().AddDate(100, 0, 0),
		IncludeCurrent: true,
	}
}

// Execute implements the go-flags Commander interface for FramesCommand.
func (c *FramesCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the frames listing against a provided store (used
// by tests).
func (c *FramesCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	frames, err := store.Find(ctx, allFramesFilter())
	if err != nil {
		return err
	}

	// Find returns most recent first; list oldest first.
	ids := make([]string, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		ids = append(ids, frames[i].ShortID())
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(ids)
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
