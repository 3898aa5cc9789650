package apexlog

import (
	"regexp"
	"strconv"
	"strings"
)

// Option configures a Parse call. The zero-value configuration reproduces
// the behaviour of the un-expanded spec exactly; options only ever add
// optional heuristics on top (see SPEC_FULL.md §12).
type Option func(*parseConfig)

type parseConfig struct {
	namespacePatterns []NamespacePattern
}

// WithNamespacePatterns layers operator-supplied namespace-inference
// patterns on top of the built-in heuristics (§4.2, SPEC_FULL.md §12).
// Patterns are tried, in order, before the qualified-name/sub-kind rules;
// the first match wins. With no patterns configured, behaviour is
// unchanged from spec.md.
func WithNamespacePatterns(patterns []NamespacePattern) Option {
	return func(c *parseConfig) {
		c.namespacePatterns = patterns
	}
}

// Parse consumes a raw debug log buffer and returns the resulting call
// tree. This is the parser's sole entry point (spec.md §6): no file or
// network I/O happens here, and no error is ever returned — diagnostics
// accumulate on the returned Root instead (spec.md §7).
func Parse(data []byte, opts ...Option) *Root {
	cfg := &parseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	root := &Root{
		ByteSize: int64(len(data)),
		GovernorLimits: GovernorLimitState{
			ByNamespace: make(map[string]GovernorLimits),
		},
	}

	builder := newTreeBuilder(root)
	namespacePatterns := compileNamespacePatterns(cfg.namespacePatterns)

	sawFirstEvent := false
	lastTimestamp := int64(0)

	for _, line := range splitLines(data) {
		kind, tl := tokenizeLine(line)

		switch kind {
		case lineBlank:
			continue

		case lineMalformed:
			if !sawFirstEvent && isDebugLevelPreamble(line) {
				root.DebugLevels = append(root.DebugLevels, strings.TrimSpace(line))

				continue
			}

			root.ParsingErrors = append(root.ParsingErrors, "Unable to parse log line: "+line)

		case lineContinuation:
			if issue, ok := classifyNonEventLine(line); ok {
				issue.Timestamp = lastTimestamp
				root.LogIssues = append(root.LogIssues, issue)

				continue
			}

			builder.attachContinuation(line)

		case lineEvent:
			if !knownKinds[Kind(tl.typeToken)] {
				root.ParsingErrors = append(root.ParsingErrors, "Unknown log line: "+tl.typeToken)

				continue
			}

			if !sawFirstEvent {
				if ms, ok := parseWallClockMillis(tl.wallClock); ok {
					root.StartTime = &ms
				}

				sawFirstEvent = true
			}

			e := newEvent(root, Kind(tl.typeToken), tl)
			applyNamespacePatterns(root, e, namespacePatterns)
			builder.insert(e)
			lastTimestamp = e.Timestamp
		}
	}

	builder.finish()
	aggregate(root)

	return root
}

// splitLines splits a raw log buffer into lines on "\n", tolerating but not
// requiring a trailing "\r" on each line (spec.md §6). The trailing
// newline, if any, does not produce a spurious empty final line.
func splitLines(data []byte) []string {
	s := string(data)
	if s == "" {
		return nil
	}

	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	return lines
}

// debugLevelPreamblePattern matches the log-level declaration line that
// precedes the first event in a debug log, e.g.
// "52.0 APEX_CODE,FINE;APEX_PROFILING,INFO;CALLOUT,INFO".
var debugLevelPreamblePattern = regexp.MustCompile(`^[0-9.]+\s+[A-Za-z_]+,[A-Za-z_]+(;[A-Za-z_]+,[A-Za-z_]+)*\s*$`)

func isDebugLevelPreamble(line string) bool {
	return debugLevelPreamblePattern.MatchString(strings.TrimSpace(line))
}

// parseWallClockMillis parses a "HH:MM:SS.f" wall-clock prefix into
// milliseconds since midnight (§3, §4.4).
func parseWallClockMillis(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}

	secParts := strings.SplitN(parts[2], ".", 2)

	seconds, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, false
	}

	millis := 0

	if len(secParts) == 2 {
		frac := secParts[1]
		for len(frac) < 3 {
			frac += "0"
		}

		frac = frac[:3]

		millis, err = strconv.Atoi(frac)
		if err != nil {
			return 0, false
		}
	}

	total := int64(hours)*3600000 + int64(minutes)*60000 + int64(seconds)*1000 + int64(millis)

	return total, true
}
