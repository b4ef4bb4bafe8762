package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// Execute implements the go-flags Commander interface for TagsCommand.
func (c *TagsCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the tags listing against a provided store (used by
// tests).
func (c *TagsCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	tags, err := store.TagNames(context.Background())
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(tags)
	}

	for _, t := range tags {
		fmt.Println(tagColor.Sprint(t))
	}
	return nil
}
