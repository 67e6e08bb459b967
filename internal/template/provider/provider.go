// Package provider fetches template sources (git repositories, GitHub
// archives and local directories) into a local directory.
package provider

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
)

// Fetcher materializes a template source at localPath.
// localPath must not exist or be empty when Fetch is called.
type Fetcher interface {
	Fetch(ctx context.Context, source, localPath string, useClone bool) error
}

// SourceFetcher picks a fetcher based on the shape of the source.
//
// Local directories are copied. Everything else is cloned with git when
// useClone is set. Without clone, GitHub sources are downloaded as a tarball
// and other remotes still fall back to git.
type SourceFetcher struct {
	Local  *LocalFetcher
	Git    *GitFetcher
	GitHub *GitHubFetcher
	logger zerolog.Logger
}

// NewSourceFetcher creates a SourceFetcher. token authenticates GitHub and
// git requests when non-empty.
func NewSourceFetcher(token string) *SourceFetcher {
	return &SourceFetcher{
		Local:  NewLocalFetcher(),
		Git:    NewGitFetcher(token),
		GitHub: NewGitHubFetcher(token),
		logger: logging.GetLogger("provider"),
	}
}

// Fetch implements Fetcher.
func (f *SourceFetcher) Fetch(ctx context.Context, source, localPath string, useClone bool) error {
	kind := f.Kind(source, useClone)
	f.logger.Debug().Str("source", source).Str("kind", kind).Str("path", localPath).Msg("fetching template source")

	switch kind {
	case "local":
		return f.Local.Fetch(ctx, source, localPath, useClone)
	case "github":
		return f.GitHub.Fetch(ctx, source, localPath, useClone)
	default:
		return f.Git.Fetch(ctx, source, localPath, useClone)
	}
}

// Kind names the fetcher used for source: "local", "git" or "github".
func (f *SourceFetcher) Kind(source string, useClone bool) string {
	if IsLocalPath(source) {
		return "local"
	}
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return "local"
	}
	if useClone {
		return "git"
	}
	if _, err := ParseGitHubURL(source); err == nil && !isNonGitHubRemote(source) {
		return "github"
	}
	return "git"
}

// GetGitHubTokenFromEnv retrieves the GitHub token from environment variables.
// Checks GITHUB_TOKEN first, then falls back to GH_TOKEN.
func GetGitHubTokenFromEnv() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("GH_TOKEN")
}
