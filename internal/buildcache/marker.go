package buildcache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/forge/internal/template/model"
)

// MarkerPath returns the marker file path inside dir.
func MarkerPath(dir string) string {
	return filepath.Join(dir, model.SourceHashFile)
}

// LoadPersistedDigest reads the marker of dir. Missing, unreadable and
// malformed markers all report false.
func LoadPersistedDigest(dir string) (Digest, bool) {
	data, err := os.ReadFile(MarkerPath(dir))
	if err != nil {
		return "", false
	}
	d := Digest(strings.TrimSpace(string(data)))
	if !d.Valid() {
		return "", false
	}
	return d, true
}

// PersistDigest overwrites the marker of dir with d.
func PersistDigest(dir string, d Digest) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(MarkerPath(dir), []byte(string(d)+"\n"), 0644)
}
