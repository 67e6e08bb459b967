package provider

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// GitHubRef identifies a GitHub repository and optional ref and subdirectory.
type GitHubRef struct {
	Owner string
	Repo  string
	// Ref is a branch, tag or commit. Empty means the default branch.
	Ref string
	// Path is an optional subdirectory inside the repository.
	Path string
}

// CloneURL returns the https clone URL of the repository.
func (r GitHubRef) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", r.Owner, r.Repo)
}

// String formats the reference as a human-readable URL.
func (r GitHubRef) String() string {
	s := fmt.Sprintf("github.com/%s/%s", r.Owner, r.Repo)
	if r.Path != "" {
		s = s + "/" + r.Path
	}
	if r.Ref != "" {
		s = s + "@" + r.Ref
	}
	return s
}

// ParseGitHubURL parses a GitHub source into a GitHubRef.
// Supported formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo/tree/branch/path
//   - git@github.com:owner/repo.git
//   - github.com/owner/repo
//   - github.com/owner/repo/path
//   - owner/repo
//   - owner/repo/path
func ParseGitHubURL(raw string) (*GitHubRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	switch {
	case strings.HasPrefix(s, "git@github.com:"):
		s = strings.TrimPrefix(s, "git@github.com:")
	case strings.HasPrefix(s, "https://github.com/"):
		s = strings.TrimPrefix(s, "https://github.com/")
	case strings.HasPrefix(s, "http://github.com/"):
		s = strings.TrimPrefix(s, "http://github.com/")
	case strings.HasPrefix(s, "github.com/"):
		s = strings.TrimPrefix(s, "github.com/")
	case strings.Contains(s, "://"), strings.HasPrefix(s, "git@"):
		return nil, fmt.Errorf("not a GitHub URL: %s", raw)
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")

	if idx := strings.Index(s, "/tree/"); idx != -1 {
		ref, err := parseOwnerRepoPath(s[:idx])
		if err != nil {
			return nil, err
		}
		branchPath := s[idx+len("/tree/"):]
		if slash := strings.Index(branchPath, "/"); slash != -1 {
			ref.Ref = branchPath[:slash]
			ref.Path = branchPath[slash+1:]
		} else {
			ref.Ref = branchPath
		}
		return ref, nil
	}

	return parseOwnerRepoPath(s)
}

// parseOwnerRepoPath parses "owner/repo" or "owner/repo/path" format.
func parseOwnerRepoPath(s string) (*GitHubRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid GitHub URL format, expected owner/repo: %s", s)
	}

	owner := parts[0]
	repo := strings.TrimSuffix(parts[1], ".git")
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo cannot be empty: %s", s)
	}

	ref := &GitHubRef{Owner: owner, Repo: repo}
	if len(parts) > 2 {
		ref.Path = strings.Join(parts[2:], "/")
	}
	return ref, nil
}

// isNonGitHubRemote reports whether source is a URL for a host other than GitHub.
func isNonGitHubRemote(source string) bool {
	if strings.HasPrefix(source, "git@") {
		return !strings.HasPrefix(source, "git@github.com:")
	}
	if !strings.Contains(source, "://") {
		return false
	}
	u, err := url.Parse(source)
	if err != nil {
		return true
	}
	return u.Host != "github.com"
}

// IsLocalPath reports whether source names a local filesystem path:
// absolute paths, "./" or "../" relative paths, "~/" paths and file:// URLs.
func IsLocalPath(source string) bool {
	switch {
	case source == "":
		return false
	case strings.HasPrefix(source, "file://"):
		return true
	case filepath.IsAbs(source):
		return true
	case source == "." || source == "..":
		return true
	case strings.HasPrefix(source, "./"), strings.HasPrefix(source, "../"), strings.HasPrefix(source, "~/"):
		return true
	}
	return false
}

// ParseFileURL extracts the path from a file:// URL.
func ParseFileURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid file URL: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URL: %s", raw)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("remote file URLs are not supported: %s", raw)
	}
	if u.Path == "" {
		return "", fmt.Errorf("file URL has no path: %s", raw)
	}
	return filepath.FromSlash(u.Path), nil
}
