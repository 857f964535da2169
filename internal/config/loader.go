package config

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Loader resolves configuration with layered precedence:
//  1. DefaultConfig
//  2. User config (~/.config/speckit-mcp/config.yaml)
//  3. Project config (speckit-mcp.yaml in the repo or a parent directory)
//  4. An explicit --config file
type Loader struct {
	logger  *slog.Logger
	homeDir func() (string, error)
}

// NewLoader creates a configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, homeDir: os.UserHomeDir}
}

// Load builds the configuration. repoPath overrides repo.path when set;
// explicitPath, if set, must exist.
func (l *Loader) Load(repoPath, explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	if userPath := l.userConfigPath(); userPath != "" {
		if err := cfg.ApplyFile(userPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userPath))
		} else if !os.IsNotExist(err) {
			l.logger.Warn("Failed to load user config", slog.String("path", userPath), slog.String("error", err.Error()))
		}
	}

	start := repoPath
	if start == "" {
		start = cfg.Repo.Path
	}
	if projectPath := findProjectConfig(start); projectPath != "" {
		if err := cfg.ApplyFile(projectPath); err != nil {
			l.logger.Warn("Failed to load project config", slog.String("path", projectPath), slog.String("error", err.Error()))
		} else {
			l.logger.Debug("Loaded project config", slog.String("path", projectPath))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if explicitPath != "" {
		if err := cfg.ApplyFile(explicitPath); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", explicitPath, err)
		}
		l.logger.Debug("Loaded explicit config", slog.String("path", explicitPath))
	}

	if repoPath != "" {
		cfg.Repo.Path = repoPath
	}
	if cfg.Repo.Path == "" {
		if root := detectGitRoot(); root != "" {
			cfg.Repo.Path = root
			l.logger.Debug("Auto-detected git root", slog.String("path", root))
		} else if cwd, err := os.Getwd(); err == nil {
			cfg.Repo.Path = cwd
			l.logger.Debug("Using current directory as repo root", slog.String("path", cwd))
		}
	}
	if abs, err := filepath.Abs(cfg.Repo.Path); err == nil {
		cfg.Repo.Path = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (l *Loader) userConfigPath() string {
	home, err := l.homeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig walks up from start looking for speckit-mcp.yaml.
// An empty start means the current directory.
func findProjectConfig(start string) string {
	dir := start
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ProjectConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// detectGitRoot returns the top-level directory of the enclosing git
// repository, or "" outside one.
func detectGitRoot() string {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
