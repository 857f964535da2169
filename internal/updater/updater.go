// Package updater checks GitHub for a newer speckit-mcp release.
//
// The check is advisory only. serve runs it in the background and logs a
// notice on stderr; `version --check` runs it in the foreground. Installing
// the new binary is left to the user's package manager or release page.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// githubRepo is the repository path for API calls.
	githubRepo = "HendryAvila/speckit-mcp"

	// checkTimeout is how long we wait for the GitHub API.
	checkTimeout = 10 * time.Second
)

// For testing: allow overriding the release URL and HTTP client.
var (
	releaseEndpoint = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	httpClient      = &http.Client{Timeout: checkTimeout}
)

// release holds the fields we read from the GitHub releases API.
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result describes how the running version compares to the latest release.
type Result struct {
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
	ReleaseURL      string `json:"releaseUrl,omitempty"`
}

// Check queries GitHub for the latest release. Development builds
// ("dev" or any non-semver version) never report an update.
func Check(ctx context.Context, currentVersion string) (*Result, error) {
	result := &Result{CurrentVersion: normalizeVersion(currentVersion)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return result, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "speckit-mcp/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return result, fmt.Errorf("parsing release info: %w", err)
	}

	result.LatestVersion = normalizeVersion(rel.TagName)
	result.ReleaseURL = rel.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result, nil
}

// Notice formats a one-line update notice, or "" when none is due.
func (r *Result) Notice() string {
	if r == nil || !r.UpdateAvailable {
		return ""
	}
	return fmt.Sprintf("speckit-mcp v%s is available (running v%s): %s",
		r.LatestVersion, r.CurrentVersion, r.ReleaseURL)
}

// normalizeVersion strips one leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer reports whether latest is a higher semantic version than current.
// Either side failing to parse means no.
func isNewer(current, latest string) bool {
	c, l := "v"+current, "v"+latest
	if !semver.IsValid(c) || !semver.IsValid(l) {
		return false
	}
	return semver.Compare(l, c) > 0
}
