package apexlog

import (
	"fmt"
	"regexp"
	"strings"
)

// NamespacePattern overrides the built-in namespace heuristics (§4.2) for a
// single qualified-name shape, following the same "{variable}" pattern
// syntax used by the rest of the corpus's dataset-aliasing config:
//
//   - Match: "{ns}.*" matched against the event's composed Text.
//   - Namespace: the literal namespace to assign, or "{ns}" to reuse the
//     captured variable verbatim.
//
// Patterns are tried in order; the first match wins (SPEC_FULL.md §12).
type NamespacePattern struct {
	Match     string `yaml:"match"`
	Namespace string `yaml:"namespace"`
}

type compiledNamespacePattern struct {
	regex     *regexp.Regexp
	namespace string
}

var namespaceVariableRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\*?\}`)

// compileNamespacePattern mirrors internal/aliasing's compilePattern: literal
// characters are escaped, "{var}" becomes a non-slash capture group, and
// "{var*}" captures greedily including slashes. A variable used more than
// once in the same pattern is rejected as an error.
func compileNamespacePattern(pattern string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(pattern)
	result := escaped
	seen := make(map[string]bool)

	for _, m := range namespaceVariableRegex.FindAllStringSubmatch(pattern, -1) {
		fullMatch, varName := m[0], m[1]
		if seen[varName] {
			return nil, fmt.Errorf("duplicate variable {%s} in namespace pattern %q", varName, pattern)
		}

		seen[varName] = true

		capture := "(?P<" + varName + ">[^/]+)"
		if strings.HasSuffix(fullMatch, "*}") {
			capture = "(?P<" + varName + ">.+)"
		}

		result = strings.Replace(result, regexp.QuoteMeta(fullMatch), capture, 1)
	}

	return regexp.Compile("^" + result + "$")
}

// compileNamespacePatterns compiles every configured pattern, silently
// skipping any that fail to compile: namespace overrides are an optional
// enrichment, not load-bearing, so a bad pattern degrades to "ignored"
// rather than aborting the parse.
func compileNamespacePatterns(patterns []NamespacePattern) []compiledNamespacePattern {
	if len(patterns) == 0 {
		return nil
	}

	compiled := make([]compiledNamespacePattern, 0, len(patterns))

	for _, p := range patterns {
		regex, err := compileNamespacePattern(p.Match)
		if err != nil {
			continue
		}

		compiled = append(compiled, compiledNamespacePattern{regex: regex, namespace: p.Namespace})
	}

	return compiled
}

// applyNamespacePatterns overrides e.Namespace when a configured pattern
// matches e.Text, substituting any captured variable into the configured
// namespace template. Leaves the built-in heuristic's result untouched when
// nothing matches. root.Namespaces is kept in sync with the override via
// root.reviseNamespace, so the set of distinct namespaces in the tree (§3)
// reflects the overridden value rather than the pre-override heuristic's.
func applyNamespacePatterns(root *Root, e *Event, patterns []compiledNamespacePattern) {
	if len(patterns) == 0 {
		return
	}

	for _, cp := range patterns {
		match := cp.regex.FindStringSubmatch(e.Text)
		if match == nil {
			continue
		}

		ns := cp.namespace

		for i, name := range cp.regex.SubexpNames() {
			if i > 0 && name != "" && i < len(match) {
				ns = strings.ReplaceAll(ns, "{"+name+"}", match[i])
			}
		}

		old := e.Namespace
		e.Namespace = ns
		root.reviseNamespace(old, ns)

		return
	}
}
