package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/tacogips/forge/internal/config"
	"github.com/tacogips/forge/internal/scaffold"
	"github.com/tacogips/forge/internal/template/generator"
	"github.com/tacogips/forge/internal/template/provider"
)

type createOptions struct {
	template     string
	templateName string
	clone        bool
	cacheDir     string
	data         []string
	force        bool
	dryRun       bool
}

// defaultSourceEnv names the template source offered when none is
// configured and the source prompt is left blank.
const defaultSourceEnv = "FORGE_DEFAULT_TEMPLATE"

// scaffoldFactory builds the Scaffolder for a create run. Tests replace it.
var scaffoldFactory = func(cmd *cobra.Command, opts *createOptions) *scaffold.Scaffolder {
	interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)

	var writer generator.TreeWriter = generator.NewFileWriter(true)
	if opts.dryRun {
		writer = generator.NewDryRunWriter(cmd.OutOrStdout())
	}
	return scaffold.New(
		config.NewResolver(),
		provider.NewSourceFetcher(getGitHubToken()),
		newSurveyPrompter(interactive),
		writer,
		scaffold.WithDefaultSource(os.Getenv(defaultSourceEnv)),
	)
}

func newCreateCmd() *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create <project-name> [target-dir]",
		Short: "Create a project from a template",
		Long: `Create a project directory from a template.

Source Formats:
  - Local path: ./templates or /absolute/path
  - GitHub: github.com/owner/repo, owner/repo, owner/repo/sub/dir
  - GitHub with ref: github.com/owner/repo/tree/v1.2.0/templates
  - Any git remote (with --clone): git@host:org/repo.git

Without a source from -t, a config file or FORGE_TEMPLATESOURCE, forge asks
for one; a blank answer uses FORGE_DEFAULT_TEMPLATE.

When the source holds several template directories, pick one with
--template-name or answer the prompt.

Examples:
  forge create my-app -t ./templates
  forge create my-app -t owner/repo --template-name go-cli
  forge create my-app ./apps/my-app -t owner/repo --data license=MIT
  forge create my-app -t owner/repo --dry-run`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, FlagTemplate, "t", "", DescTemplate)
	cmd.Flags().StringVar(&opts.templateName, FlagTemplateName, "", DescTemplateName)
	cmd.Flags().BoolVar(&opts.clone, FlagClone, false, DescClone)
	cmd.Flags().StringVar(&opts.cacheDir, FlagCacheDir, "", DescCacheDir)
	cmd.Flags().StringArrayVar(&opts.data, FlagData, nil, DescData)
	cmd.Flags().BoolVarP(&opts.force, FlagForce, "f", false, DescForce)
	cmd.Flags().BoolVar(&opts.dryRun, FlagDryRun, false, DescDryRun)
	return cmd
}

func runCreate(cmd *cobra.Command, args []string, opts *createOptions) error {
	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	data, err := parseDataFlags(opts.data)
	if err != nil {
		return err
	}

	createOpts := scaffold.Options{
		ProjectName: args[0],
		Options: config.Options{
			TemplateSource: opts.template,
			TemplateName:   opts.templateName,
			CacheDir:       opts.cacheDir,
		},
		Data:   data,
		Force:  opts.force,
		DryRun: opts.dryRun,
	}
	if len(args) > 1 {
		createOpts.TargetDir = args[1]
	}
	if cmd.Flags().Changed(FlagClone) {
		createOpts.Clone = &opts.clone
	}

	result, err := scaffoldFactory(cmd, opts).Create(cmd.Context(), createOpts)
	if err != nil {
		if errors.Is(err, scaffold.ErrNoTemplateSource) {
			p.info("Pass --%s or set templateSource in project.config.yaml", FlagTemplate)
		}
		return err
	}

	reportCreate(p, result, opts.dryRun)
	return nil
}

func reportCreate(p *printer, result *scaffold.Result, dryRun bool) {
	for _, err := range result.LayerErrors {
		p.warning("%v", err)
	}
	for _, err := range result.Build.Errors {
		p.warning("skipped: %v", err)
	}
	for _, target := range result.Build.Collisions {
		p.warning("%s was produced by more than one template file; the last one was kept", target)
	}

	if dryRun {
		p.info("Dry run: %s", result.Build.Summary())
		return
	}
	var total int64
	for _, payload := range result.Build.Tree {
		total += int64(len(payload.Content))
	}
	p.success("Created %s from template %s", result.TargetDir, result.Selection.Name)
	p.detail("%s, %s written", result.Build.Summary(), formatBytes(total))
}
