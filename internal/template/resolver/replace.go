package resolver

import (
	"fmt"
	"regexp"
	"strings"
)

// blockPattern matches one replace block. Three marker styles are accepted:
//
//	<!-- replace --> ... <!-- /replace -->
//	{{/* replace */}} ... {{/* /replace */}}
//	# replace / // replace on their own line, closed by # /replace or // /replace
var blockPattern = regexp.MustCompile(`(?s)` +
	`(?:<!--[ \t]*replace[ \t]*-->|\{\{/\*[ \t]*replace[ \t]*\*/\}\}|(?m:^[ \t]*(?:#|//)[ \t]*replace[ \t]*$))` +
	`(.*?)` +
	`(?:<!--[ \t]*/replace[ \t]*-->|\{\{/\*[ \t]*/replace[ \t]*\*/\}\}|(?m:^[ \t]*(?:#|//)[ \t]*/replace[ \t]*$))`)

// extractBlocks returns the contents of every replace block in document order.
func extractBlocks(body string) []string {
	matches := blockPattern.FindAllStringSubmatch(body, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, strings.TrimSpace(m[1]))
	}
	return blocks
}

// patternRegexp matches pattern either as a template placeholder of that
// name ({{X}}, {{ X }}, {{.X}}, {{- .X -}}) or as literal text. The
// placeholder alternative is listed first so it wins at the same offset.
func patternRegexp(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	return regexp.Compile(`\{\{-?\s*\.?` + quoted + `\s*-?\}\}|` + quoted)
}

// replaceAll substitutes every occurrence of pattern in base with fragment.
func replaceAll(base, pattern, fragment string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("replace pattern cannot be empty")
	}
	re, err := patternRegexp(pattern)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllLiteralString(base, fragment), nil
}

// applyReplace merges the current file's body into the base template.
// A single scalar pattern receives the whole trimmed body. A list of patterns
// receives the body's replace blocks by position.
func applyReplace(base, body string, patterns []string, isList bool) (string, error) {
	if len(patterns) == 0 {
		return base, nil
	}

	if !isList {
		return replaceAll(base, patterns[0], strings.TrimSpace(body))
	}

	blocks := extractBlocks(body)
	if len(blocks) != len(patterns) {
		return "", fmt.Errorf("replace lists %d pattern(s) but body has %d replace block(s)",
			len(patterns), len(blocks))
	}

	result := base
	for i, pattern := range patterns {
		var err error
		result, err = replaceAll(result, pattern, blocks[i])
		if err != nil {
			return "", fmt.Errorf("replace[%d]: %w", i, err)
		}
	}
	return result, nil
}
