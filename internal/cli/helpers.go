package cli

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/punch/internal/config"
	"github.com/runnerr0/punch/internal/storage"
)

// Colors used across commands, matching status/log output conventions.
var (
	projectColor = color.New(color.FgMagenta)
	tagColor     = color.New(color.FgCyan)
	elapsedColor = color.New(color.FgGreen)
	timeColor    = color.New(color.FgCyan)
)

// openStore loads the configuration, opens the SQLite database it points
// at, runs migrations, and returns a ready-to-use store.
func openStore(globals *GlobalFlags) (*storage.SQLiteStore, *sql.DB, *config.Config, error) {
	var cfg *config.Config
	var err error
	if globals != nil && globals.Config != "" {
		cfg, err = config.Load(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, cfg, nil
}

// parseTags strips the leading + from tag arguments. Plain words are
// accepted too.
func parseTags(args []string) []string {
	var tags []string
	for _, a := range args {
		t := strings.TrimPrefix(a, "+")
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseTimeArg parses a user-supplied timestamp in the configured display
// format, falling back to a few unambiguous layouts. Date-less layouts
// resolve against today.
func parseTimeArg(s string, cfg *config.Config) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}

	layouts := []string{
		cfg.Display.DatetimeFormat,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	// Bare clock time means today.
	if t, err := time.ParseInLocation("15:04", s, time.Local); err == nil {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(),
			t.Hour(), t.Minute(), 0, 0, time.Local), nil
	}

	return time.Time{}, fmt.Errorf("cannot parse time %q (expected %q)", s, cfg.Display.DatetimeFormat)
}

// formatDuration renders a duration as "1h 02m 03s", dropping the hour
// part when zero.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// humanizeSince renders how long ago t was, coarsely.
func humanizeSince(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "a few seconds ago"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) - h*60
		return fmt.Sprintf("%dh %02dm ago", h, m)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "a day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

// tagList renders tags as "[a, b]" or "" when there are none.
func tagList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " [" + tagColor.Sprint(strings.Join(tags, ", ")) + "]"
}

// confirm asks a yes/no question on stdout and reads the answer from
// stdin. Anything but y/yes declines.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
