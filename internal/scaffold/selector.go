package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/config"
	"github.com/tacogips/forge/internal/logging"
	"github.com/tacogips/forge/internal/template/model"
	"github.com/tacogips/forge/internal/template/provider"
)

// Prompt names used during selection.
const (
	templateChoicePrompt = "templateName"
	templateSourcePrompt = "templateSource"
)

// Selection is the outcome of template selection.
type Selection struct {
	Source    string
	CachePath string
	// Dir is the chosen template directory.
	Dir string
	// Name is the chosen template directory name.
	Name string
	// Available lists every template directory of the source.
	Available []string
}

// Selector fetches a template source and chooses one template directory.
type Selector struct {
	fetcher  provider.Fetcher
	prompter PromptProvider
	// defaultSource is used when no source is configured and the prompt
	// answer is blank.
	defaultSource string
	logger        zerolog.Logger
}

// NewSelector creates a Selector. prompter may be nil, in which case a
// source with several templates requires an explicit name.
func NewSelector(fetcher provider.Fetcher, prompter PromptProvider) *Selector {
	return &Selector{
		fetcher:  fetcher,
		prompter: prompter,
		logger:   logging.GetLogger("scaffold"),
	}
}

// Select fetches opts.TemplateSource into its cache entry, replacing any
// previous copy, and picks the template directory. Every failure is a
// *SelectionError.
func (s *Selector) Select(ctx context.Context, opts config.Options) (*Selection, error) {
	source, err := s.source(ctx, opts.TemplateSource)
	if err != nil {
		return nil, newSelectionError("", "missing source", err)
	}

	cachePath := provider.CachePath(opts.CacheDir, source)
	if err := provider.PrepareCachePath(cachePath); err != nil {
		return nil, newSelectionError(source, "cache unavailable", err)
	}

	s.logger.Info().Str("source", source).Str("cache", cachePath).Bool("clone", opts.CloneEnabled()).Msg("fetching template source")
	if err := s.fetcher.Fetch(ctx, source, cachePath, opts.CloneEnabled()); err != nil {
		if rmErr := os.RemoveAll(cachePath); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("cache", cachePath).Msg("failed to remove partial cache entry")
		}
		return nil, newSelectionError(source, "fetch failed", err)
	}

	available, err := ListTemplateDirs(cachePath)
	if err != nil {
		return nil, newSelectionError(source, "cannot list template directories", err)
	}
	if len(available) == 0 {
		return nil, newSelectionError(source, "empty source", ErrNoTemplates)
	}

	name, err := s.choose(ctx, opts.TemplateName, available)
	if err != nil {
		return nil, newSelectionError(source, "no template chosen", err)
	}

	s.logger.Debug().Str("template", name).Strs("available", available).Msg("template selected")
	return &Selection{
		Source:    source,
		CachePath: cachePath,
		Dir:       filepath.Join(cachePath, name),
		Name:      name,
		Available: available,
	}, nil
}

// source returns the configured source, or asks for one. A blank answer
// falls back to the default source.
func (s *Selector) source(ctx context.Context, configured string) (string, error) {
	if source := strings.TrimSpace(configured); source != "" {
		return source, nil
	}
	if s.prompter != nil {
		answers, err := s.prompter.Ask(ctx, []config.Prompt{{
			Name:    templateSourcePrompt,
			Message: "Template source (git URL, owner/repo or local path)",
			Type:    config.PromptInput,
			Default: s.defaultSource,
		}})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoTemplateSource, err)
		}
		if answer, _ := answers[templateSourcePrompt].(string); strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer), nil
		}
	}
	if s.defaultSource != "" {
		s.logger.Info().Str("source", s.defaultSource).Msg("using default template source")
		return s.defaultSource, nil
	}
	return "", ErrNoTemplateSource
}

func (s *Selector) choose(ctx context.Context, requested string, available []string) (string, error) {
	if requested != "" {
		for _, name := range available {
			if name == requested {
				return name, nil
			}
		}
		return "", fmt.Errorf("%w %q (available: %s)", ErrUnknownTemplate, requested, strings.Join(available, ", "))
	}
	if len(available) == 1 {
		return available[0], nil
	}
	if s.prompter == nil {
		return "", ErrAmbiguousTemplate
	}

	answers, err := s.prompter.Ask(ctx, []config.Prompt{{
		Name:    templateChoicePrompt,
		Message: "Which template?",
		Type:    config.PromptSelect,
		Choices: available,
	}})
	if err != nil {
		return "", err
	}
	choice, _ := answers[templateChoicePrompt].(string)
	for _, name := range available {
		if name == choice {
			return name, nil
		}
	}
	return "", ErrAmbiguousTemplate
}

// ListTemplateDirs returns the sorted names of the immediate, non-hidden
// subdirectories of root. Dependency directories are not templates.
func ListTemplateDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || isSkippedDir(name) {
			continue
		}
		dirs = append(dirs, name)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isSkippedDir(name string) bool {
	for _, d := range model.SkippedDirs() {
		if d == name {
			return true
		}
	}
	return false
}
