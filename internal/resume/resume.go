package resume

import (
	"fmt"
	"os"
	"strings"
)

// Load reads the resume as plain UTF-8 text (a .txt or .md export). The
// returned text is trimmed; an empty file is an error since the matcher
// has nothing to score against.
func Load(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("resume file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume file %q: %w", path, err)
	}

	text := strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff"))
	if text == "" {
		return "", fmt.Errorf("resume file %q is empty", path)
	}

	return text, nil
}
