package templating

import (
	"regexp"
)

// variableTokenPattern matches a bare {{identifier}} token. Block tokens such
// as {{#if x}}, {{/each}} and helper calls like {{formatCurrency total}} never
// match because '#', '/' and spaces are outside the identifier alphabet.
var variableTokenPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DetectVariables scans template text for {{identifier}} tokens and returns
// the distinct identifiers in first-occurrence order.
func DetectVariables(text string) []string {
	matches := variableTokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if isControlToken(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// isControlToken guards the exclusion rule independently of the regex
func isControlToken(name string) bool {
	return name == "" || name[0] == '#' || name[0] == '/'
}

// IsValidVariableKey reports whether key can be used as a {{key}} token
func IsValidVariableKey(key string) bool {
	return identifierPattern.MatchString(key)
}
