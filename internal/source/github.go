package source

import (
	"fmt"
	"regexp"
)

var githubBlobRegexp = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/blob/([^/]+)/(.*)`)

// RawGitHubURL rewrites a GitHub blob view URL into its raw content URL.
// Anything else is returned unchanged.
func RawGitHubURL(u string) string {
	m := githubBlobRegexp.FindStringSubmatch(u)
	if m == nil {
		return u
	}

	owner, repo, branch, path := m[1], m[2], m[3], m[4]
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/refs/heads/%s/%s", owner, repo, branch, path)
}
