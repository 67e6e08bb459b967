// Package generator assembles the file tree of a scaffold: it lists a
// template directory, renders every file with bounded concurrency, maps each
// path to its target and hands the tree to a writer.
package generator

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tacogips/forge/internal/logging"
	"github.com/tacogips/forge/internal/template/model"
	"github.com/tacogips/forge/internal/template/render"
)

// BuildOptions configures a tree build.
type BuildOptions struct {
	// TemplateDir is the directory holding the template files.
	TemplateDir string
	// Data is the render context. It is read concurrently and must not be
	// mutated during the build.
	Data render.Context
	// DoNotCopy excludes template-relative paths. May be nil.
	DoNotCopy *DoNotCopySet
	// Concurrency bounds the number of files rendered at once.
	// Zero means GOMAXPROCS.
	Concurrency int
}

// BuildResult describes an assembled tree.
type BuildResult struct {
	// Tree maps target paths to payloads.
	Tree model.FileTree
	// Sources maps each target path to the template path it came from.
	Sources map[string]string
	// Excluded lists template paths removed by the do-not-copy set.
	Excluded []string
	// Suppressed lists template paths that resolved to no content.
	Suppressed []string
	// Collisions lists target paths produced by more than one template path.
	Collisions []string
	// Errors holds per-file failures. Failed files are left out of Tree.
	Errors []error
}

// Builder builds file trees from template directories.
type Builder struct {
	processor Processor
	logger    zerolog.Logger
}

// NewBuilder creates a Builder that renders files with processor.
func NewBuilder(processor Processor) *Builder {
	return &Builder{
		processor: processor,
		logger:    logging.GetLogger("generator"),
	}
}

type fileOutcome struct {
	payload *model.Payload
	err     error
}

// Build lists, filters and renders the template directory. Per-file errors
// are collected in the result; only listing failures and context
// cancellation are returned as errors.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if opts.TemplateDir == "" {
		return nil, newGeneratorError(GeneratorListFailed, "template directory cannot be empty", "", nil)
	}
	done := logging.LogOperationStart(b.logger, "build tree")
	defer done()

	files, err := ListTemplateFiles(opts.TemplateDir)
	if err != nil {
		return nil, newGeneratorError(GeneratorListFailed, "failed to list template files", opts.TemplateDir, err)
	}

	result := &BuildResult{
		Tree:    make(model.FileTree),
		Sources: make(map[string]string),
	}

	selected := make([]model.TemplateFile, 0, len(files))
	for _, f := range files {
		if opts.DoNotCopy != nil && opts.DoNotCopy.Matches(f.Path) {
			b.logger.Debug().Str("file", f.Path).Msg("excluded by do-not-copy set")
			result.Excluded = append(result.Excluded, f.Path)
			continue
		}
		selected = append(selected, f)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]fileOutcome, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range selected {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			payload, err := b.processor.Process(gctx, f, opts.Data)
			outcomes[i] = fileOutcome{payload: payload, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Sequential assembly in sorted source order keeps collisions deterministic.
	for i, f := range selected {
		out := outcomes[i]
		if out.err != nil {
			b.logger.Warn().Err(out.err).Str("file", f.Path).Msg("skipping file")
			result.Errors = append(result.Errors, out.err)
			continue
		}
		if out.payload == nil {
			result.Suppressed = append(result.Suppressed, f.Path)
			continue
		}

		target := TransformPath(f.Path)
		if err := ValidateTargetPath(target); err != nil {
			result.Errors = append(result.Errors, newGeneratorError(GeneratorPathError, "invalid target path", f.Path, err))
			continue
		}

		if prev, exists := result.Sources[target]; exists {
			b.logger.Warn().
				Str("target", target).
				Str("previous", prev).
				Str("current", f.Path).
				Msg("target path collision, later file wins")
			result.Collisions = append(result.Collisions, target)
		}
		result.Tree[target] = *out.payload
		result.Sources[target] = f.Path
	}

	b.logger.Debug().
		Int("files", len(files)).
		Int("written", len(result.Tree)).
		Int("excluded", len(result.Excluded)).
		Int("suppressed", len(result.Suppressed)).
		Int("errors", len(result.Errors)).
		Msg("tree assembled")

	return result, nil
}

// Summary returns a one-line description of the result.
func (r *BuildResult) Summary() string {
	return fmt.Sprintf("%d file(s), %d excluded, %d suppressed, %d error(s)",
		len(r.Tree), len(r.Excluded), len(r.Suppressed), len(r.Errors))
}
