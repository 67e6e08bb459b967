package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
	"github.com/tacogips/forge/internal/template/model"
)

// TreeWriter materializes a file tree under a directory.
type TreeWriter interface {
	Write(ctx context.Context, dir string, tree model.FileTree) error
}

// FileWriter writes trees to the filesystem.
type FileWriter struct {
	preserveExecutable bool
	logger             zerolog.Logger
}

// NewFileWriter creates a FileWriter.
// If preserveExecutable is true, payload modes are kept (with owner read/write
// forced on). Otherwise files are created with 0644.
func NewFileWriter(preserveExecutable bool) *FileWriter {
	return &FileWriter{
		preserveExecutable: preserveExecutable,
		logger:             logging.GetLogger("generator"),
	}
}

// Write writes every payload of tree below dir in sorted path order.
func (w *FileWriter) Write(ctx context.Context, dir string, tree model.FileTree) error {
	if err := w.CreateDir(dir); err != nil {
		return err
	}
	for _, rel := range tree.Paths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ValidateTargetPath(rel); err != nil {
			return newGeneratorError(GeneratorPathError, "refusing to write", rel, err)
		}
		payload := tree[rel]
		if err := w.WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), payload.Content, payload.Mode); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes content to path atomically using a temporary file and
// rename. Parent directories are created as needed.
func (w *FileWriter) WriteFile(path string, content []byte, mode os.FileMode) error {
	w.logger.Debug().Str("path", path).Int("size", len(content)).Msg("writing file")

	if parent := filepath.Dir(path); parent != "" && parent != "." {
		if err := w.CreateDir(parent); err != nil {
			return newGeneratorError(GeneratorWriteFailed, "failed to create parent directory", path, err)
		}
	}

	fileMode := os.FileMode(0644)
	if w.preserveExecutable && mode != 0 {
		fileMode = mode | 0600
	}

	tempFile := path + ".tmp"
	f, err := os.OpenFile(tempFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create temporary file", path, err)
	}

	_, err = f.Write(content)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to write file content", path, err)
	}
	if closeErr != nil {
		_ = os.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to close file", path, closeErr)
	}

	// OpenFile honours umask; set the final mode explicitly.
	if err := os.Chmod(tempFile, fileMode); err != nil {
		_ = os.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to set file mode", path, err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to rename temporary file", path, err)
	}
	return nil
}

// CreateDir creates a directory and any missing parents with 0755.
func (w *FileWriter) CreateDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create directory", path, err)
	}
	return nil
}

// DryRunWriter prints the tree instead of writing it.
type DryRunWriter struct {
	out io.Writer
}

// NewDryRunWriter creates a DryRunWriter printing to out.
func NewDryRunWriter(out io.Writer) *DryRunWriter {
	return &DryRunWriter{out: out}
}

// Write lists each target path with its size.
func (w *DryRunWriter) Write(ctx context.Context, dir string, tree model.FileTree) error {
	if _, err := fmt.Fprintf(w.out, "would write %d file(s) to %s\n", len(tree), dir); err != nil {
		return err
	}
	for _, rel := range tree.Paths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload := tree[rel]
		kind := "text"
		if payload.Binary {
			kind = "binary"
		}
		if _, err := fmt.Fprintf(w.out, "  %s (%d bytes, %s)\n", rel, len(payload.Content), kind); err != nil {
			return err
		}
	}
	return nil
}

// IsEmptyDir reports whether dir is missing or has no entries.
func IsEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
