// Package cli implements the forge command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tacogips/forge/internal/logging"
)

// Global flags
var (
	globalVerbosity int
	globalNoColor   bool
	globalQuiet     bool
)

// NewRootCmd builds the forge command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "Project scaffolding from templates",
		Long: `forge creates projects from template directories.

Templates come from a local directory, a GitHub repository or any git remote.
Each template directory may carry a project.config.yaml that defines prompts,
default data and lifecycle hooks. A project.config.yaml found in the current
directory or one of its parents supplies user defaults.

Template files are Go templates. A file may start with front matter that
decides whether it is written (when), which file it builds on (extend) and
which parts of that file it replaces (replace).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(globalVerbosity, globalNoColor || !isTerminal(os.Stderr))
		},
	}

	rootCmd.PersistentFlags().CountVarP(&globalVerbosity, FlagVerbose, "v", DescVerbose)
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, FlagQuiet, "q", false, DescQuiet)

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newBuildCacheCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError prints an error message to stderr
func printError(err error) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
