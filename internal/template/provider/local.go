package provider

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
)

// LocalFetcher copies a local template directory.
type LocalFetcher struct {
	// BaseDir resolves relative sources. Empty means the working directory.
	BaseDir string
	logger  zerolog.Logger
}

// NewLocalFetcher creates a LocalFetcher.
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{logger: logging.GetLogger("provider")}
}

// Name returns the fetcher name.
func (p *LocalFetcher) Name() string {
	return "local"
}

// Fetch copies the directory named by source into localPath.
// Version control metadata is not copied.
func (p *LocalFetcher) Fetch(ctx context.Context, source, localPath string, _ bool) error {
	absPath, err := p.resolvePath(source)
	if err != nil {
		return NewInvalidURLError(p.Name(), source, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewNotFoundError(p.Name(), source)
		}
		return NewFetchError(p.Name(), source, err)
	}
	if !info.IsDir() {
		return NewInvalidTemplateError(p.Name(), source, "path must be a directory", nil)
	}

	dest, err := filepath.Abs(localPath)
	if err != nil {
		return NewFetchError(p.Name(), source, err)
	}
	if isSubPath(absPath, dest) {
		return NewInvalidTemplateError(p.Name(), source, "cache path is inside the source directory", nil)
	}

	p.logger.Debug().Str("from", absPath).Str("to", dest).Msg("copying local template source")
	var copied int
	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(absPath, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			if d.Name() == ".git" && path != absPath {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0755)
		}

		// Stat follows symlinks; dangling links and special files are skipped.
		fi, err := os.Stat(path)
		if err != nil {
			p.logger.Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		if err := copyFile(path, target, fi.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to copy %s: %w", rel, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return NewFetchError(p.Name(), source, err)
	}

	p.logger.Debug().Int("files", copied).Msg("local template source copied")
	return nil
}

// resolvePath resolves a source to an absolute path.
func (p *LocalFetcher) resolvePath(source string) (string, error) {
	path := source
	if strings.HasPrefix(path, "file://") {
		parsed, err := ParseFileURL(path)
		if err != nil {
			return "", err
		}
		path = parsed
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	baseDir := p.BaseDir
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		baseDir = cwd
	}
	return filepath.Clean(filepath.Join(baseDir, path)), nil
}

// isSubPath checks if child is parent or lies under it.
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel == "." || (!filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// copyFile copies src to dst, creating parent directories.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
