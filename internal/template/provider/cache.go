package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// CacheDirEnv overrides the template cache directory.
const CacheDirEnv = "FORGE_CACHE_DIR"

// DefaultCacheDir returns the template cache directory: $FORGE_CACHE_DIR when
// set, otherwise forge/templates under the XDG cache home.
func DefaultCacheDir() string {
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, "forge", "templates")
}

// CacheKey returns the cache entry name for source: the first 16 hex
// characters of its SHA-256.
func CacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])[:16]
}

// CachePath maps source to its entry under cacheDir. An empty cacheDir uses
// DefaultCacheDir.
func CachePath(cacheDir, source string) string {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir()
	}
	return filepath.Join(cacheDir, CacheKey(source))
}

// PrepareCachePath removes any previous entry at path and makes sure its
// parent exists, so a fetch always starts from scratch.
func PrepareCachePath(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to clear cache entry %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}
