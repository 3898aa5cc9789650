package apexlog

import "strings"

const exceptionSummaryLimit = 99

// emitExceptionIssue runs on EXCEPTION_THROWN's on_after hook (§4.3, §4.5).
// Only uncaught governor-limit exceptions are surfaced as a LogIssue; other
// exceptions are ordinary control flow in Apex (caught exceptions are
// common) and are not diagnostic-worthy on their own.
func emitExceptionIssue(root *Root, e *Event) {
	e.TotalThrownCount = 1

	if !strings.Contains(e.Text, "System.LimitException") {
		return
	}

	summary, detail := truncateSummary(e.Text)

	root.LogIssues = append(root.LogIssues, LogIssue{
		Timestamp: e.Timestamp,
		Summary:   summary,
		Message:   detail,
		Severity:  SeverityError,
	})
}

// emitFatalIssue runs on FATAL_ERROR's on_after hook (§4.5).
func emitFatalIssue(root *Root, e *Event) {
	first, rest := splitFirstLine(e.Text)

	root.LogIssues = append(root.LogIssues, LogIssue{
		Timestamp: e.Timestamp,
		Summary:   first,
		Message:   rest,
		Severity:  SeverityError,
	})
}

// truncateSummary cuts text at the first newline or at exceptionSummaryLimit
// characters, whichever comes first, appending an ellipsis when truncated.
// detail is the full original text, but only when truncation actually
// occurred (§4.5).
func truncateSummary(text string) (summary string, detail string) {
	cut := len(text)
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		cut = nl
	}

	truncated := cut < len(text)

	if cut > exceptionSummaryLimit {
		cut = exceptionSummaryLimit
		truncated = true
	}

	summary = text[:cut]
	if truncated {
		summary += "..."

		return summary, text
	}

	return summary, ""
}

func splitFirstLine(text string) (first string, rest string) {
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		return text[:nl], strings.TrimPrefix(text[nl+1:], "")
	}

	return text, ""
}

// classifyNonEventLine recognises the free-form diagnostic markers §4.5
// calls out for lines that are neither events nor continuation text owners:
// skip markers and the log-size-exceeded banner. Returns ok=false when the
// line carries no recognised diagnostic.
func classifyNonEventLine(line string) (issue LogIssue, ok bool) {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.Contains(trimmed, "MAXIMUM DEBUG LOG SIZE REACHED"):
		return LogIssue{Summary: trimmed, Severity: SeverityWarning}, true
	case strings.HasPrefix(trimmed, "*** Skipped"):
		return LogIssue{Summary: trimmed, Severity: SeverityInfo}, true
	default:
		return LogIssue{}, false
	}
}
