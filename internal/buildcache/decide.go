package buildcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/forge/internal/logging"
)

// Decision is the outcome of Decide.
type Decision int

const (
	// Rebuild means the output directory was cleared and a build must run.
	Rebuild Decision = iota
	// UpToDate means the previous output is current and nothing was touched.
	UpToDate
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case UpToDate:
		return "up-to-date"
	case Rebuild:
		return "rebuild"
	default:
		return "unknown"
	}
}

// DecideOptions configures Decide.
type DecideOptions struct {
	// SourceDir holds the build inputs to digest.
	SourceDir string
	// OutputDir holds the build output and the marker.
	OutputDir string
	// Exclude adds doublestar patterns to DefaultExcludes.
	Exclude []string
	// SkipOnMatch allows reporting UpToDate when digests match.
	SkipOnMatch bool
}

// Outcome reports a decision with the digests involved.
type Outcome struct {
	Decision Decision
	Current  Digest
	// Previous is empty when no usable marker existed.
	Previous Digest
}

// ErrOutputContainsSource is returned when clearing the output directory
// would delete the build inputs.
var ErrOutputContainsSource = errors.New("output directory must not be or contain the source directory")

// Decide digests SourceDir and compares it with the marker in OutputDir.
// On a match with SkipOnMatch it returns UpToDate without writing anything.
// Otherwise it empties OutputDir and persists the new digest; a marker write
// failure is logged and does not fail the call. An OutputDir equal to or
// above SourceDir is rejected before anything is read.
func Decide(ctx context.Context, opts DecideOptions) (*Outcome, error) {
	logger := logging.GetLogger("buildcache")

	source, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}
	output, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if source == output || isWithin(output, source) {
		return nil, fmt.Errorf("%w: source %s, output %s", ErrOutputContainsSource, source, output)
	}
	opts.SourceDir, opts.OutputDir = source, output

	exclude := append([]string(nil), opts.Exclude...)
	if isWithin(source, output) {
		rel, err := filepath.Rel(source, output)
		if err != nil {
			return nil, fmt.Errorf("failed to relate output to source: %w", err)
		}
		exclude = append(exclude, filepath.ToSlash(rel)+"/**")
	}

	current, err := ComputeDigest(ctx, opts.SourceDir, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to compute digest: %w", err)
	}
	previous, _ := LoadPersistedDigest(opts.OutputDir)
	out := &Outcome{Current: current, Previous: previous}

	if opts.SkipOnMatch && previous != "" && previous == current {
		logger.Info().Str("digest", current.Short()).Msg("build output is up to date")
		out.Decision = UpToDate
		return out, nil
	}

	logger.Info().
		Str("current", current.Short()).
		Str("previous", previous.Short()).
		Msg("inputs changed, clearing output")
	if err := ClearDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := PersistDigest(opts.OutputDir, current); err != nil {
		logger.Warn().Err(err).Str("dir", opts.OutputDir).Msg("failed to persist digest")
	}
	out.Decision = Rebuild
	return out, nil
}

// ClearDir removes everything inside dir, creating dir when missing.
func ClearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// isWithin reports whether child lies strictly inside parent. Both paths
// must be absolute and clean.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
