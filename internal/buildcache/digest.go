// Package buildcache decides whether a build can be skipped by comparing a
// content digest of the build inputs with the digest persisted by the
// previous build.
package buildcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/tacogips/forge/internal/template/model"
)

// Digest is a lowercase hex SHA-256.
type Digest string

// String returns the digest text.
func (d Digest) String() string { return string(d) }

// Short returns the first 12 characters, for display.
func (d Digest) Short() string {
	if len(d) <= 12 {
		return string(d)
	}
	return string(d[:12])
}

// Valid reports whether d looks like a SHA-256 hex digest.
func (d Digest) Valid() bool {
	if len(d) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(string(d))
	return err == nil
}

// DefaultExcludes returns the doublestar patterns never hashed: dependency
// and VCS directories, lockfiles and the marker file.
func DefaultExcludes() []string {
	return []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/package-lock.json",
		"**/yarn.lock",
		"**/pnpm-lock.yaml",
		"**/go.sum",
		"**/" + model.SourceHashFile,
	}
}

// prunedDirs are never descended into.
var prunedDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
}

// FileDigest is the digest of one file.
type FileDigest struct {
	Path   string
	Digest Digest
}

// ListFiles returns the slash-separated relative paths of the regular files
// under dir that match none of the default excludes nor exclude.
func ListFiles(dir string, exclude []string) ([]string, error) {
	patterns := append(DefaultExcludes(), exclude...)
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, ok := prunedDirs[d.Name()]; ok && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, p := range patterns {
			if matched, _ := doublestar.Match(p, rel); matched {
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// HashFile digests the content of one file. The path does not take part,
// so moving a file leaves the aggregate digest unchanged.
func HashFile(root, rel string) (Digest, error) {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// FileDigests hashes every listed file of dir with bounded concurrency and
// returns the results sorted by digest.
func FileDigests(ctx context.Context, dir string, exclude []string) ([]FileDigest, error) {
	files, err := ListFiles(dir, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	digests := make([]FileDigest, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := HashFile(dir, rel)
			if err != nil {
				return fmt.Errorf("failed to hash %s: %w", rel, err)
			}
			digests[i] = FileDigest{Path: rel, Digest: d}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(digests, func(i, j int) bool { return digests[i].Digest < digests[j].Digest })
	return digests, nil
}

// Fold combines file digests into one. Input order does not matter.
func Fold(digests []FileDigest) Digest {
	sorted := make([]string, len(digests))
	for i, d := range digests {
		sorted[i] = string(d.Digest)
	}
	sort.Strings(sorted)

	h := sha256.New()
	for _, d := range sorted {
		h.Write([]byte(d))
		h.Write([]byte{'\n'})
	}
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

// ComputeDigest returns the aggregate digest of dir.
func ComputeDigest(ctx context.Context, dir string, exclude []string) (Digest, error) {
	digests, err := FileDigests(ctx, dir, exclude)
	if err != nil {
		return "", err
	}
	return Fold(digests), nil
}
