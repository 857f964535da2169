package updater

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- normalizeVersion ---

func TestNormalizeVersion_StripsV(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"", ""},
		{"vv1.0.0", "v1.0.0"}, // only strips one leading v
	}

	for _, tt := range tests {
		if got := normalizeVersion(tt.input); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// --- isNewer ---

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"newer patch", "0.2.0", "0.2.1", true},
		{"newer minor", "0.2.0", "0.3.0", true},
		{"newer major", "0.2.0", "1.0.0", true},
		{"same version", "0.2.0", "0.2.0", false},
		{"older version", "0.3.0", "0.2.0", false},
		{"empty current", "", "0.2.0", false},
		{"empty latest", "0.2.0", "", false},
		{"dev current", "dev", "0.2.0", false},
		{"two part version", "0.2", "0.3.0", true},
		{"minor jump", "0.9.0", "0.10.0", true},
		{"prerelease is older", "1.0.0", "1.0.0-rc.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNewer(tt.current, tt.latest); got != tt.want {
				t.Errorf("isNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

// --- Check ---

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	origEndpoint, origClient := releaseEndpoint, httpClient
	releaseEndpoint = srv.URL
	httpClient = srv.Client()
	t.Cleanup(func() {
		releaseEndpoint = origEndpoint
		httpClient = origClient
	})
}

func TestCheck_UpdateAvailable(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "speckit-mcp/") {
			t.Errorf("User-Agent = %q", ua)
		}
		_ = json.NewEncoder(w).Encode(release{TagName: "v0.4.0", HTMLURL: "https://example.test/r/0.4.0"})
	})

	result, err := Check(context.Background(), "v0.3.1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.UpdateAvailable {
		t.Error("UpdateAvailable should be true")
	}
	if result.LatestVersion != "0.4.0" || result.CurrentVersion != "0.3.1" {
		t.Errorf("versions = %s → %s", result.CurrentVersion, result.LatestVersion)
	}
	if n := result.Notice(); !strings.Contains(n, "v0.4.0") || !strings.Contains(n, "https://example.test/r/0.4.0") {
		t.Errorf("Notice = %q", n)
	}
}

func TestCheck_UpToDate(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(release{TagName: "v0.3.1"})
	})

	result, err := Check(context.Background(), "0.3.1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.UpdateAvailable {
		t.Error("UpdateAvailable should be false")
	}
	if result.Notice() != "" {
		t.Errorf("Notice = %q, want empty", result.Notice())
	}
}

func TestCheck_HTTPError(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	result, err := Check(context.Background(), "0.1.0")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("Check error = %v, want 403", err)
	}
	if result == nil || result.UpdateAvailable {
		t.Error("a failed check should still return a non-updating result")
	}
}

func TestCheck_BadJSON(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	if _, err := Check(context.Background(), "0.1.0"); err == nil {
		t.Error("Check should fail on malformed JSON")
	}
}

func TestCheck_Cancelled(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(release{TagName: "v9.9.9"})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Check(ctx, "0.1.0"); err == nil {
		t.Error("Check should fail with a cancelled context")
	}
}

func TestNotice_Nil(t *testing.T) {
	var r *Result
	if r.Notice() != "" {
		t.Error("nil Result should have no notice")
	}
}
