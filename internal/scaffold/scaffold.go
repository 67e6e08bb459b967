// Package scaffold sequences a project creation: configuration layers,
// lifecycle hooks, template selection, prompts, rendering and writing.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/config"
	"github.com/tacogips/forge/internal/logging"
	"github.com/tacogips/forge/internal/template/generator"
	"github.com/tacogips/forge/internal/template/provider"
	"github.com/tacogips/forge/internal/template/render"
	"github.com/tacogips/forge/internal/template/resolver"
)

// PromptProvider asks questions and returns answers keyed by prompt name.
// On error it returns the answers gathered before the failure.
type PromptProvider interface {
	Ask(ctx context.Context, prompts []config.Prompt) (map[string]any, error)
}

// Options describe one Create call.
type Options struct {
	ProjectName string
	// TargetDir defaults to ProjectName.
	TargetDir string
	config.Options
	// Data is merged into the render context after the layers' template data.
	Data map[string]any
	// Force allows writing into a non-empty target directory.
	Force bool
	// DryRun skips the target directory check and finishCreate hooks.
	DryRun bool
}

// Result describes a completed Create call.
type Result struct {
	TargetDir string
	Selection *Selection
	Build     *generator.BuildResult
	// Data is the final render context.
	Data render.Context
	// LayerErrors holds isolated configuration, prompt and hook failures.
	LayerErrors []error
}

// Scaffolder creates projects from templates.
type Scaffolder struct {
	resolver *config.Resolver
	selector *Selector
	prompter PromptProvider
	writer   generator.TreeWriter
	renderer render.Renderer
	builder  *generator.Builder
	logger   zerolog.Logger
}

// Option configures a Scaffolder.
type Option func(*Scaffolder)

// WithRenderer replaces the default template engine.
func WithRenderer(r render.Renderer) Option {
	return func(sc *Scaffolder) { sc.renderer = r }
}

// WithDefaultSource sets the template source used when none is configured
// and the source prompt is left blank.
func WithDefaultSource(source string) Option {
	return func(sc *Scaffolder) { sc.selector.defaultSource = strings.TrimSpace(source) }
}

// New creates a Scaffolder. prompter may be nil to skip prompts.
func New(res *config.Resolver, fetcher provider.Fetcher, prompter PromptProvider, writer generator.TreeWriter, opts ...Option) *Scaffolder {
	sc := &Scaffolder{
		resolver: res,
		selector: NewSelector(fetcher, prompter),
		prompter: prompter,
		writer:   writer,
		renderer: render.NewEngine(),
		logger:   logging.GetLogger("scaffold"),
	}
	for _, opt := range opts {
		opt(sc)
	}
	sc.builder = generator.NewBuilder(generator.NewFileProcessor(resolver.New(sc.renderer)))
	return sc
}

// Create scaffolds a project. Only invalid options, selection failures,
// listing failures and write failures abort it; configuration and hook
// failures are collected in Result.LayerErrors and per-file render failures
// in Result.Build.Errors.
func (sc *Scaffolder) Create(ctx context.Context, opts Options) (*Result, error) {
	if opts.ProjectName == "" {
		return nil, errors.New("project name is required")
	}
	if opts.TargetDir == "" {
		opts.TargetDir = opts.ProjectName
	}
	targetDir, err := filepath.Abs(opts.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target directory: %w", err)
	}
	if !opts.Force && !opts.DryRun {
		empty, err := generator.IsEmptyDir(targetDir)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect target directory: %w", err)
		}
		if !empty {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotEmpty, targetDir)
		}
	}

	done := logging.LogOperationStart(sc.logger, "create "+opts.ProjectName)
	defer done()

	result := &Result{TargetDir: targetDir}
	s := newSession(opts.ProjectName, targetDir)

	if _, err := sc.resolver.ResolveUserConfig(); err != nil {
		result.LayerErrors = append(result.LayerErrors, err)
	}
	result.LayerErrors = append(result.LayerErrors, sc.Dispatch(ctx, config.HookInitCreate, s)...)

	sc.resolver.ApplyCLIDefaults(&opts.Options)
	selection, err := sc.selector.Select(ctx, opts.Options)
	if err != nil {
		return nil, err
	}
	result.Selection = selection

	if _, err := sc.resolver.ResolveTemplateConfig(selection.Dir); err != nil {
		result.LayerErrors = append(result.LayerErrors, err)
	}

	for _, layer := range sc.resolver.Layers() {
		s.data.Merge(layer.TemplateData)
	}
	s.data.Merge(opts.Data)
	result.LayerErrors = append(result.LayerErrors, sc.collectPrompts(ctx, s)...)

	s.AddDoNotCopy(sc.resolver.DoNotCopy()...)
	result.LayerErrors = append(result.LayerErrors, sc.Dispatch(ctx, config.HookBeforeCreate, s)...)

	build, err := sc.builder.Build(ctx, generator.BuildOptions{
		TemplateDir: selection.Dir,
		Data:        s.data.Clone(),
		DoNotCopy:   s.doNotCopy,
	})
	if err != nil {
		return nil, err
	}
	result.Build = build
	result.Data = s.data.Clone()

	if err := sc.writer.Write(ctx, targetDir, build.Tree); err != nil {
		return nil, fmt.Errorf("failed to write project: %w", err)
	}

	if opts.DryRun {
		sc.logger.Info().Msg("dry run, skipping finishCreate hooks")
	} else {
		result.LayerErrors = append(result.LayerErrors, sc.Dispatch(ctx, config.HookFinishCreate, s)...)
	}

	sc.logger.Info().
		Str("template", selection.Name).
		Str("target", targetDir).
		Str("summary", build.Summary()).
		Msg("project created")
	return result, nil
}

// collectPrompts asks each layer's prompts, template layer first. A prompt
// whose when condition is falsy is skipped. A layer whose prompts fail keeps
// the answers gathered before the failure.
func (sc *Scaffolder) collectPrompts(ctx context.Context, s *session) []error {
	if sc.prompter == nil {
		return nil
	}
	var errs []error
	for _, layer := range sc.resolver.Layers() {
		if err := sc.askLayer(ctx, layer, s); err != nil {
			lerr := config.NewLayerError(layer.Kind, config.PhasePrompts, err)
			sc.logger.Error().Err(err).Str("layer", string(layer.Kind)).Str("phase", config.PhasePrompts).Msg("prompt collection failed")
			errs = append(errs, lerr)
		}
	}
	return errs
}

func (sc *Scaffolder) askLayer(ctx context.Context, layer *config.Layer, s *session) error {
	for _, p := range layer.Prompts {
		if p.When != "" {
			ok, err := sc.renderer.Evaluate(p.When, s.data)
			if err != nil {
				return fmt.Errorf("prompt %s: %w", p.Name, err)
			}
			if !ok {
				continue
			}
		}
		answers, err := sc.prompter.Ask(ctx, []config.Prompt{p})
		s.data.Merge(answers)
		if err != nil {
			return fmt.Errorf("prompt %s: %w", p.Name, err)
		}
	}
	return nil
}
