package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// EditorFunc collects free-form text from the user. The boolean is
// false when the user abandoned the edit.
type EditorFunc func(ctx context.Context, seed string) (string, bool, error)

// OpenEditor runs $EDITOR (vim when unset) on a temp file seeded with
// the given text and returns the saved content. A non-zero editor exit
// counts as an abandoned edit, not an error.
func OpenEditor(ctx context.Context, seed string) (string, bool, error) {
	file, err := os.CreateTemp("", "gitscribe-*.txt")
	if err != nil {
		return "", false, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.WriteString(seed); err != nil {
		file.Close()
		return "", false, fmt.Errorf("failed to seed temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", false, fmt.Errorf("failed to close temp file: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to run editor %s: %w", editor, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(edited), true, nil
}
