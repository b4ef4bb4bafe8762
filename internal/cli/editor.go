package cli

import (
	"fmt"
	"os"
	"os/exec"
)

// openInEditor writes initial to a temp file, opens it in the user's
// editor, and returns the edited content. $VISUAL and $EDITOR are honored,
// with a fallback to common terminal editors.
func openInEditor(initial []byte) ([]byte, error) {
	file, err := os.CreateTemp("", "punch-edit-*.json")
	if err != nil {
		return nil, err
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.Write(initial); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, err
	}

	editor := resolveEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found; set $EDITOR")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	return os.ReadFile(path)
}

func resolveEditor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	for _, e := range []string{"nano", "vim", "vi"} {
		if path, err := exec.LookPath(e); err == nil {
			return path
		}
	}
	return ""
}
