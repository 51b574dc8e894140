package changes

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// readme filename candidates in priority order
var readmeNames = []string{"README.md", "README.txt", "README", "Readme.md"}

// FindReadme reads the first README variant present at the repository
// root. A missing README returns empty content without error.
func FindReadme(root string) (string, error) {
	for _, name := range readmeNames {
		path := filepath.Join(root, name)
		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		slog.Debug("Found README file", "path", path)
		return string(content), nil
	}
	return "", nil
}
