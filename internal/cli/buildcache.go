package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/forge/internal/buildcache"
)

func newBuildCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-cache",
		Short: "Skip rebuilds whose inputs did not change",
		Long: `Compare a digest of build inputs with the digest recorded in the build
output directory (.srchash).

Dependency directories, VCS metadata and lockfiles are never hashed. An output
directory nested in the source directory is excluded automatically.`,
	}
	cmd.AddCommand(newBuildCacheCheckCmd())
	cmd.AddCommand(newBuildCacheDigestCmd())
	cmd.AddCommand(newBuildCacheClearCmd())
	return cmd
}

func newBuildCacheCheckCmd() *cobra.Command {
	var (
		output  string
		exclude []string
		noSkip  bool
	)

	cmd := &cobra.Command{
		Use:   "check <source-dir>",
		Short: "Decide whether the build output is current",
		Long: `Print "up-to-date" when the recorded digest matches the inputs. Otherwise
empty the output directory, record the new digest and print "rebuild".

Examples:
  forge build-cache check ./src --output ./dist
  forge build-cache check . --output ./dist --exclude '**/*.md'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--%s is required", FlagOutput)
			}
			outcome, err := buildcache.Decide(cmd.Context(), buildcache.DecideOptions{
				SourceDir:   args[0],
				OutputDir:   output,
				Exclude:     exclude,
				SkipOnMatch: !noSkip,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Decision)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, FlagOutput, "o", "", DescOutput)
	cmd.Flags().StringArrayVar(&exclude, FlagExclude, nil, DescExclude)
	cmd.Flags().BoolVar(&noSkip, "no-skip", false, "Always clear the output directory")
	return cmd
}

func newBuildCacheDigestCmd() *cobra.Command {
	var (
		exclude []string
		files   bool
	)

	cmd := &cobra.Command{
		Use:   "digest <dir>",
		Short: "Print the content digest of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			digests, err := buildcache.FileDigests(cmd.Context(), args[0], exclude)
			if err != nil {
				return err
			}
			if files {
				for _, d := range digests {
					fmt.Fprintf(out, "%s  %s\n", d.Digest.Short(), d.Path)
				}
			}
			fmt.Fprintln(out, buildcache.Fold(digests))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&exclude, FlagExclude, nil, DescExclude)
	cmd.Flags().BoolVar(&files, "files", false, "List per-file digests")
	return cmd
}

func newBuildCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <output-dir>",
		Short: "Empty a build output directory, including its digest marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := buildcache.ClearDir(args[0]); err != nil {
				return fmt.Errorf("failed to clear %s: %w", args[0], err)
			}
			newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).success("Cleared %s", args[0])
			return nil
		},
	}
}
