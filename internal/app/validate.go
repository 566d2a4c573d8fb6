package app

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	githubOwnerRe = regexp.MustCompile(`^[a-zA-Z0-9][-a-zA-Z0-9]*$`)
	githubRepoRe  = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// IsValidGitHubURL reports whether raw names a GitHub repository: an
// absolute http(s) URL on github.com with at least an owner/repo path.
func IsValidGitHubURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := strings.ToLower(parsed.Host)
	if host != "github.com" && !strings.HasSuffix(host, ".github.com") {
		return false
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 {
		return false
	}
	return githubOwnerRe.MatchString(parts[0]) && githubRepoRe.MatchString(parts[1])
}
