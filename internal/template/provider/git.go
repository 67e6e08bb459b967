package provider

import (
	"context"
	"errors"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
)

// GitFetcher clones repositories with go-git.
type GitFetcher struct {
	// Token authenticates https clones when non-empty.
	Token  string
	logger zerolog.Logger
}

// NewGitFetcher creates a GitFetcher.
func NewGitFetcher(token string) *GitFetcher {
	return &GitFetcher{Token: token, logger: logging.GetLogger("provider")}
}

// Name returns the fetcher name.
func (p *GitFetcher) Name() string {
	return "git"
}

// Fetch performs a shallow clone of source into localPath. GitHub shorthand
// sources ("owner/repo", "github.com/owner/repo/tree/branch") are expanded;
// a subdirectory in the shorthand is ignored since the whole repository is
// the template source.
func (p *GitFetcher) Fetch(ctx context.Context, source, localPath string, _ bool) error {
	opts := &git.CloneOptions{
		URL:   source,
		Depth: 1,
	}
	if !isNonGitHubRemote(source) {
		if ref, err := ParseGitHubURL(source); err == nil {
			opts.URL = ref.CloneURL()
			if ref.Ref != "" {
				opts.ReferenceName = plumbing.NewBranchReferenceName(ref.Ref)
				opts.SingleBranch = true
			}
		}
	}
	if p.Token != "" && strings.HasPrefix(opts.URL, "https://") {
		opts.Auth = &http.BasicAuth{Username: "forge", Password: p.Token}
	}

	p.logger.Debug().Str("url", opts.URL).Str("path", localPath).Msg("cloning repository")
	if _, err := git.PlainCloneContext(ctx, localPath, false, opts); err != nil {
		switch {
		case errors.Is(err, transport.ErrRepositoryNotFound):
			return NewNotFoundError(p.Name(), source)
		case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
			return NewAuthError(p.Name(), source)
		case errors.Is(err, context.DeadlineExceeded):
			return NewTimeoutError(p.Name(), source)
		default:
			return NewFetchError(p.Name(), source, err)
		}
	}
	return nil
}
