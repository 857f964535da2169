package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// --- DefaultConfig ---

func TestDefaultConfig_SetsDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Specify.Binary != "specify" {
		t.Errorf("Specify.Binary = %s, want specify", cfg.Specify.Binary)
	}
	if cfg.Specify.AI != "opencode" {
		t.Errorf("Specify.AI = %s, want opencode", cfg.Specify.AI)
	}
	if cfg.Workflow.ConstitutionGating {
		t.Error("Workflow.ConstitutionGating should default to false")
	}
	if cfg.Commands.Timeout != 60*time.Second {
		t.Errorf("Commands.Timeout = %s, want 60s", cfg.Commands.Timeout)
	}
	if !cfg.Journal.Enabled {
		t.Error("Journal.Enabled should default to true")
	}
	if cfg.Journal.Dir == "" {
		t.Error("Journal.Dir should be set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

// --- Validate ---

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty binary", func(c *Config) { c.Specify.Binary = "" }, "specify.binary"},
		{"empty ai", func(c *Config) { c.Specify.AI = "" }, "specify.ai"},
		{"zero timeout", func(c *Config) { c.Commands.Timeout = 0 }, "commands.timeout"},
		{"empty test argv", func(c *Config) { c.Tests["unit"] = nil }, "tests.unit"},
		{"blank test command", func(c *Config) { c.Tests["e2e"] = []string{""} }, "tests.e2e"},
		{"journal without dir", func(c *Config) { c.Journal.Dir = "" }, "journal.dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_DisabledJournalNeedsNoDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Journal.Enabled = false
	cfg.Journal.Dir = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

// --- TestCommand ---

func TestTestCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tests["all"] = []string{"go", "test", "./..."}
	cfg.Tests["unit"] = []string{"go", "test", "-short", "./..."}

	argv, ok := cfg.TestCommand("")
	if !ok || strings.Join(argv, " ") != "go test ./..." {
		t.Errorf("TestCommand(\"\") = %v, %v; want default 'all' command", argv, ok)
	}

	argv, ok = cfg.TestCommand("unit")
	if !ok || argv[2] != "-short" {
		t.Errorf("TestCommand(unit) = %v, %v", argv, ok)
	}

	// Returned argv is a copy.
	argv[0] = "mutated"
	if again, _ := cfg.TestCommand("unit"); again[0] != "go" {
		t.Error("TestCommand should return a copy")
	}

	if _, ok := cfg.TestCommand("integration"); ok {
		t.Error("TestCommand(integration) should report false")
	}
}

// --- Files ---

func TestApplyFile_OverridesOnlySetKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layer.yaml")
	content := "workflow:\n  constitution_gating: true\ncommands:\n  timeout: 5s\ntests:\n  unit: [go, test, ./...]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}

	if !cfg.Workflow.ConstitutionGating {
		t.Error("constitution_gating: true should override the default")
	}
	if cfg.Commands.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Commands.Timeout)
	}
	if cfg.Specify.Binary != "specify" {
		t.Errorf("Binary = %s, unset keys must keep their value", cfg.Specify.Binary)
	}
	if got := cfg.Tests["unit"]; len(got) != 3 {
		t.Errorf("Tests[unit] = %v", got)
	}
}

func TestApplyFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workflow: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := DefaultConfig().ApplyFile(path); err == nil {
		t.Error("ApplyFile should fail on invalid YAML")
	}
}

func TestApplyFile_Missing(t *testing.T) {
	err := DefaultConfig().ApplyFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("ApplyFile(missing) = %v, want not-exist error", err)
	}
}

// --- Loader ---

func newTestLoader(t *testing.T, home string) *Loader {
	t.Helper()
	l := NewLoader(nil)
	l.homeDir = func() (string, error) { return home, nil }
	return l
}

func TestLoader_Layering(t *testing.T) {
	home := t.TempDir()
	repo := t.TempDir()

	userCfg := filepath.Join(home, UserConfigDir, UserConfigFile)
	if err := os.MkdirAll(filepath.Dir(userCfg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userCfg, []byte("specify:\n  ai: claude\ncommands:\n  timeout: 10s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := filepath.Join(repo, ProjectConfigFile)
	if err := os.WriteFile(projectCfg, []byte("commands:\n  timeout: 20s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := newTestLoader(t, home).Load(repo, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Specify.AI != "claude" {
		t.Errorf("AI = %s, want claude from user config", cfg.Specify.AI)
	}
	if cfg.Commands.Timeout != 20*time.Second {
		t.Errorf("Timeout = %s, want 20s from project config", cfg.Commands.Timeout)
	}
	if cfg.Repo.Path != repo {
		t.Errorf("Repo.Path = %s, want %s", cfg.Repo.Path, repo)
	}
}

func TestLoader_ProjectConfigInParent(t *testing.T) {
	repo := t.TempDir()
	sub := filepath.Join(repo, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repo, ProjectConfigFile), []byte("specify:\n  binary: /opt/specify\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := newTestLoader(t, t.TempDir()).Load(sub, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Specify.Binary != "/opt/specify" {
		t.Errorf("Binary = %s, want /opt/specify", cfg.Specify.Binary)
	}
}

func TestLoader_ExplicitFileWins(t *testing.T) {
	repo := t.TempDir()
	explicit := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(explicit, []byte("workflow:\n  constitution_gating: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := newTestLoader(t, t.TempDir()).Load(repo, explicit)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Workflow.ConstitutionGating {
		t.Error("explicit config should enable constitution gating")
	}
}

func TestLoader_ExplicitFileMissing(t *testing.T) {
	_, err := newTestLoader(t, t.TempDir()).Load(t.TempDir(), "/does/not/exist.yaml")
	if err == nil {
		t.Fatal("Load should fail when an explicit config file is missing")
	}
}

func TestLoader_InvalidResult(t *testing.T) {
	repo := t.TempDir()
	if err := os.WriteFile(filepath.Join(repo, ProjectConfigFile), []byte("commands:\n  timeout: -1s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := newTestLoader(t, t.TempDir()).Load(repo, "")
	if err == nil || !strings.Contains(err.Error(), "commands.timeout") {
		t.Errorf("Load = %v, want commands.timeout validation error", err)
	}
}
