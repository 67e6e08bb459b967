package generator

import (
	"context"

	"github.com/tacogips/forge/internal/template/model"
	"github.com/tacogips/forge/internal/template/render"
	"github.com/tacogips/forge/internal/template/resolver"
)

// Processor turns one template file into its payload.
type Processor interface {
	// Process returns the payload for file, or nil when the file is suppressed.
	Process(ctx context.Context, file model.TemplateFile, data render.Context) (*model.Payload, error)
}

// FileProcessor implements Processor with the front matter resolver.
type FileProcessor struct {
	resolver *resolver.Resolver
}

// NewFileProcessor creates a FileProcessor.
func NewFileProcessor(r *resolver.Resolver) *FileProcessor {
	return &FileProcessor{resolver: r}
}

// Process resolves file against data.
func (p *FileProcessor) Process(ctx context.Context, file model.TemplateFile, data render.Context) (*model.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := p.resolver.Resolve(file.AbsPath, data)
	if err != nil {
		return nil, newGeneratorError(GeneratorProcessFailed, "failed to process template", file.Path, err)
	}
	if payload != nil && payload.Mode == 0 {
		payload.Mode = file.Mode
	}
	return payload, nil
}
