package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// Execute implements the go-flags Commander interface for ProjectsCommand.
func (c *ProjectsCommand) Execute(args []string) error {
	store, db, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs the projects listing against a provided store
// (used by tests).
func (c *ProjectsCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	projects, err := store.Projects(context.Background())
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(projects)
	}

	for _, p := range projects {
		fmt.Println(projectColor.Sprint(p))
	}
	return nil
}
