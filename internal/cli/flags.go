package cli

import (
	"fmt"
	"os/exec"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tacogips/forge/internal/template/provider"
)

// Common flag names and descriptions
const (
	// Flag names
	FlagTemplate     = "template"
	FlagTemplateName = "template-name"
	FlagClone        = "clone"
	FlagCacheDir     = "cache-dir"
	FlagData         = "data"
	FlagForce        = "force"
	FlagDryRun       = "dry-run"
	FlagVerbose      = "verbose"
	FlagNoColor      = "no-color"
	FlagQuiet        = "quiet"
	FlagExclude      = "exclude"
	FlagOutput       = "output"

	// Flag descriptions
	DescTemplate     = "Template source: local path, GitHub URL, owner/repo or git remote"
	DescTemplateName = "Template directory inside the source"
	DescClone        = "Fetch the source with git clone instead of a tarball"
	DescCacheDir     = "Directory holding fetched templates"
	DescData         = "Template data as key=value, repeatable"
	DescForce        = "Write into a non-empty target directory"
	DescDryRun       = "Show the files that would be written"
	DescVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	DescNoColor      = "Disable colored output"
	DescQuiet        = "Suppress non-error output"
	DescExclude      = "Extra doublestar pattern excluded from the digest, repeatable"
	DescOutput       = "Build output directory holding the digest marker"
)

// parseDataFlags turns key=value pairs into template data. Values are
// decoded as YAML scalars so that true, 3 and 1.5 keep their types.
func parseDataFlags(pairs []string) (map[string]any, error) {
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s value %q: expected key=value", FlagData, pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		if _, isMap := value.(map[string]any); isMap {
			value = raw
		}
		data[key] = value
	}
	return data, nil
}

// getGitHubToken retrieves GitHub token from environment or gh CLI.
// Priority: GITHUB_TOKEN env > GH_TOKEN env > gh auth token command
func getGitHubToken() string {
	if token := provider.GetGitHubTokenFromEnv(); token != "" {
		return token
	}

	if _, err := exec.LookPath("gh"); err == nil {
		cmd := exec.Command("gh", "auth", "token")
		output, err := cmd.Output()
		if err == nil {
			if token := strings.TrimSpace(string(output)); token != "" {
				return token
			}
		}
	}

	return ""
}
