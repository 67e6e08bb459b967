package provider

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
)

// DefaultGitHubAPI is the API endpoint used for tarball downloads.
const DefaultGitHubAPI = "https://api.github.com"

// GitHubFetcher downloads GitHub repositories as tarballs.
type GitHubFetcher struct {
	// HTTPClient is the HTTP client for API requests.
	HTTPClient *http.Client
	// Token is the optional GitHub personal access token for private repos.
	Token string
	// BaseURL is the API endpoint. Empty means DefaultGitHubAPI.
	BaseURL string
	logger  zerolog.Logger
}

// NewGitHubFetcher creates a GitHubFetcher.
func NewGitHubFetcher(token string) *GitHubFetcher {
	return &GitHubFetcher{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Token:      token,
		logger:     logging.GetLogger("provider"),
	}
}

// Name returns the fetcher name.
func (p *GitHubFetcher) Name() string {
	return "github"
}

// Fetch downloads the repository tarball and extracts it into localPath.
// When the source names a subdirectory, only that subdirectory is extracted.
func (p *GitHubFetcher) Fetch(ctx context.Context, source, localPath string, _ bool) error {
	ref, err := ParseGitHubURL(source)
	if err != nil {
		return NewInvalidURLError(p.Name(), source, err)
	}

	body, err := p.download(ctx, ref)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	n, err := extractTarball(body, localPath, ref.Path)
	if err != nil {
		return NewFetchError(p.Name(), ref.String(), fmt.Errorf("failed to extract archive: %w", err))
	}
	if n == 0 && ref.Path != "" {
		return NewInvalidTemplateError(p.Name(), ref.String(),
			fmt.Sprintf("subdirectory '%s' not found in repository", ref.Path), nil)
	}

	p.logger.Debug().Str("repo", ref.String()).Int("files", n).Msg("archive extracted")
	return nil
}

// download requests the tarball and returns the response body on success.
func (p *GitHubFetcher) download(ctx context.Context, ref *GitHubRef) (io.ReadCloser, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultGitHubAPI
	}
	archiveURL := fmt.Sprintf("%s/repos/%s/%s/tarball", strings.TrimSuffix(base, "/"), ref.Owner, ref.Repo)
	if ref.Ref != "" {
		archiveURL += "/" + ref.Ref
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, NewFetchError(p.Name(), ref.String(), err)
	}
	if p.Token != "" {
		req.Header.Set("Authorization", "token "+p.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	p.logger.Debug().Str("url", archiveURL).Msg("downloading archive")
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewTimeoutError(p.Name(), ref.String())
		}
		return nil, NewFetchError(p.Name(), ref.String(), err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, NewNotFoundError(p.Name(), ref.String())
	case http.StatusUnauthorized, http.StatusForbidden:
		_ = resp.Body.Close()
		return nil, NewAuthError(p.Name(), ref.String())
	default:
		_ = resp.Body.Close()
		return nil, NewFetchError(p.Name(), ref.String(),
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
}

// extractTarball extracts a gzipped GitHub tarball into dest. GitHub archives
// wrap everything in a "<repo>-<ref>/" root directory, which is stripped.
// When subdir is set, only entries below it are extracted, relative to it.
// It returns the number of files written.
func extractTarball(r io.Reader, dest, subdir string) (int, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, err
	}

	prefix := strings.Trim(subdir, "/")
	tr := tar.NewReader(gzr)
	written := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("failed to read tar entry: %w", err)
		}

		parts := strings.SplitN(header.Name, "/", 2)
		if len(parts) < 2 || parts[1] == "" {
			continue
		}
		rel := path.Clean(parts[1])
		if prefix != "" {
			if rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
				continue
			}
			rel = strings.TrimPrefix(strings.TrimPrefix(rel, prefix), "/")
			if rel == "" {
				continue
			}
		}
		if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
			return written, fmt.Errorf("archive entry escapes destination: %s", header.Name)
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return written, fmt.Errorf("failed to create parent directory: %w", err)
			}
			mode := os.FileMode(header.Mode).Perm() | 0600
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
			if err != nil {
				return written, fmt.Errorf("failed to create file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return written, fmt.Errorf("failed to write file %s: %w", target, err)
			}
			if err := out.Close(); err != nil {
				return written, err
			}
			written++
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return written, fmt.Errorf("failed to create parent directory: %w", err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return written, fmt.Errorf("failed to create symlink %s: %w", target, err)
			}
			written++
		}
	}
	return written, nil
}
