package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tacogips/forge/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration layers",
	}
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var templateDir string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration layers",
		Long: `Print the user configuration layer found from the current directory, and
the template layer of --template-dir when given. Environment overrides
(FORGE_*) are included.

Examples:
  forge config show
  forge config show --template-dir ./templates/go-cli`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := config.NewResolver(config.WithCommandRunner(nil))
			p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

			if _, err := res.ResolveUserConfig(); err != nil {
				p.warning("%v", err)
			}
			if templateDir != "" {
				if _, err := res.ResolveTemplateConfig(templateDir); err != nil {
					p.warning("%v", err)
				}
			}

			layers := res.Layers()
			if len(layers) == 0 {
				p.info("No configuration found")
				return nil
			}
			for _, layer := range layers {
				if err := printLayer(cmd, p, layer); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Template directory whose layer is shown too")
	return cmd
}

func printLayer(cmd *cobra.Command, p *printer, layer *config.Layer) error {
	source := layer.Path
	if source == "" {
		source = "environment"
	}
	p.header(fmt.Sprintf("%s layer (%s)", layer.Kind, source))

	data, err := yaml.Marshal(layer.Raw)
	if err != nil {
		return fmt.Errorf("failed to encode %s layer: %w", layer.Kind, err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
