package speckit

import (
	"fmt"
	"os"
	"path/filepath"
)

// WorktreeMarkers identify a worktree root, in order of preference.
var WorktreeMarkers = []string{ScaffoldDir, ".git"}

// FindWorktree walks up from start looking for a directory holding one of
// WorktreeMarkers. If none is found, returns start made absolute. An
// empty start means the current working directory.
func FindWorktree(start string) (string, error) {
	dir := start
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		dir = cwd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	current := dir
	for {
		for _, marker := range WorktreeMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root. specify init will create the
			// scaffold in the starting directory.
			return dir, nil
		}
		current = parent
	}
}
