// Package version reports the build version and looks for newer releases.
package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Version is the current build, overridden with -ldflags at release time
var Version = "0.1.0"

const (
	// ReleasesURL answers with the latest GitHub release as JSON
	ReleasesURL = "https://api.github.com/repos/studiowebux/reqshot/releases/latest"

	checkTimeout = 5 * time.Second
)

// Release describes the latest published release
type Release struct {
	Version string
	URL     string
	Newer   bool
}

// Checker queries a releases endpoint
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a Checker for the public releases endpoint
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Latest fetches the latest release and compares it with current
func (c *Checker) Latest(ctx context.Context, current string) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Release{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "reqshot/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Release{}, fmt.Errorf("failed to read response: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return Release{}, fmt.Errorf("release response is not JSON")
	}

	fields := gjson.GetManyBytes(data, "tag_name", "html_url")
	release := Release{
		Version: strings.TrimPrefix(fields[0].String(), "v"),
		URL:     fields[1].String(),
	}
	release.Newer = release.Version != "" && IsNewer(release.Version, current)

	return release, nil
}

// IsNewer reports whether latest is a higher version than current.
// Pre-release and build suffixes ("-dev", "+abc") are ignored.
func IsNewer(latest, current string) bool {
	l := parse(strings.TrimPrefix(latest, "v"))
	c := parse(strings.TrimPrefix(current, "v"))

	for len(l) < len(c) {
		l = append(l, 0)
	}
	for len(c) < len(l) {
		c = append(c, 0)
	}

	for i := range l {
		if l[i] != c[i] {
			return l[i] > c[i]
		}
	}
	return false
}

func parse(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	var parts []int
	for _, part := range strings.Split(v, ".") {
		if n, err := strconv.Atoi(part); err == nil {
			parts = append(parts, n)
		}
	}
	return parts
}
