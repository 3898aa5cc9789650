package apexlog

import "strings"

// newEvent builds a typed Event from a tokenized line. kind has already been
// validated against knownKinds by the caller (parse.go); everything else —
// text composition, namespace inference, category assignment, behavioural
// flags — happens here, the single place per-kind specialisation lives
// (§4.2, §9: "function-pointer / match expression branching on kind").
func newEvent(root *Root, kind Kind, tl tokenizedLine) *Event {
	info := lookupKindInfo(kind)

	e := &Event{
		Kind:           kind,
		Timestamp:      tl.timestampNs,
		LineNumber:     parseLineNumberToken(field(tl.fields, 2)),
		LogLine:        strings.Join(tl.fields, "|"),
		Category:       info.category,
		DebugCategory:  info.debugCategory,
		CPUType:        info.cpuType,
		AcceptsText:    info.acceptsText,
		IsExit:         info.isExit,
		IsParent:       info.isParent,
		NextLineIsExit: info.nextLineIsExit,
		Discontinuity:  info.discontinuity,
	}

	if len(info.exitTypes) > 0 {
		e.ExitTypes = make(map[Kind]bool, len(info.exitTypes))
		for _, k := range info.exitTypes {
			e.ExitTypes[k] = true
		}
	}

	e.Text = composeText(kind, tl.fields)
	e.Namespace = inferNamespace(root, kind, tl.fields)
	applyCounters(e, tl.fields)

	if kind == KindSOQLExecuteExplain {
		e.QueryPlan = parseQueryPlan(e.Text)
	}

	if e.Namespace == "" {
		e.Namespace = "default"
	}

	root.observeNamespace(e.Namespace)

	return e
}

// applyCounters sets the "self" DML/SOQL/SOSL operation and row counts
// contributed directly by this event, per §3's count invariants. The
// aggregator (aggregate.go) rolls these up into Total on every ancestor.
func applyCounters(e *Event, fields []string) {
	switch e.Kind {
	case KindDMLBegin:
		e.DMLCount.Self = 1
		if n, ok := trailingInt(field(fields, 5)); ok {
			e.DMLRowCount.Self = n
		}
	case KindSOQLExecuteBegin:
		e.SOQLCount.Self = 1
	case KindSOQLExecuteEnd:
		if n, ok := trailingInt(field(fields, 3)); ok {
			e.SOQLRowCount.Self = n
		}
	case KindSOSLExecuteBegin:
		e.SOSLCount.Self = 1
	case KindSOSLExecuteEnd:
		if n, ok := trailingInt(field(fields, 3)); ok {
			e.SOSLRowCount.Self = n
		}
	}
}

// trailingInt extracts the final run of decimal digits in s, e.g. "Rows:5"
// -> 5. Returns ok=false if s contains no digits.
func trailingInt(s string) (int64, bool) {
	end := -1

	for i := len(s) - 1; i >= 0; i-- {
		if s[i] >= '0' && s[i] <= '9' {
			end = i + 1

			break
		}
	}

	if end < 0 {
		return 0, false
	}

	start := end

	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}

	var n int64

	for i := start; i < end; i++ {
		n = n*10 + int64(s[i]-'0')
	}

	return n, true
}

// composeText builds the per-kind display text from the raw field array.
// Most kinds show the field the Apex runtime uses as the human-readable
// payload (a signature, a query string, a URL); kinds with no obvious
// single field fall back to joining everything after the type token.
func composeText(kind Kind, fields []string) string {
	switch kind {
	case KindMethodEntry, KindMethodExit:
		return field(fields, 4)
	case KindConstructorEntry, KindConstructorExit:
		return field(fields, 5) + field(fields, 4)
	case KindSystemMethodEntry, KindSystemMethodExit,
		KindSystemConstructorEntry, KindSystemConstructorExit:
		return field(fields, 3)
	case KindCodeUnitStarted, KindCodeUnitFinished:
		return field(fields, 4)
	case KindDMLBegin:
		return strings.TrimSpace(field(fields, 3) + " " + field(fields, 4))
	case KindSOQLExecuteBegin:
		return field(fields, 4)
	case KindSOSLExecuteBegin:
		return field(fields, 3)
	case KindCalloutRequest:
		return field(fields, 3)
	case KindFlowElementBegin, KindFlowElementEnd:
		return strings.TrimSpace(field(fields, 3) + " " + field(fields, 4))
	case KindFlowBulkElementBegin, KindFlowBulkElementEnd:
		return strings.TrimSpace(field(fields, 2) + " " + field(fields, 3))
	case KindWFCriteriaBegin:
		return strings.TrimSpace(field(fields, 3) + " " + field(fields, 5))
	case KindWFRuleEvalBegin:
		return field(fields, 2)
	case KindWFRuleInvocation, KindWFFieldUpdate, KindWFEmailSent,
		KindWFEmailAlert, KindWFApproval, KindWFApprovalSubmit,
		KindWFEvalEntryCriteria, KindWFNextApprover, KindWFProcessFound,
		KindWFProcessNode, KindWFFormula, KindWFAction:
		return field(fields, 2)
	case KindVFApexCallStart:
		return strings.TrimSpace(field(fields, 3) + "." + field(fields, 4))
	case KindEnteringManagedPkg:
		return field(fields, 2)
	case KindUserDebug:
		return field(fields, 4)
	case KindExceptionThrown, KindFatalError:
		return field(fields, 3)
	case KindSOQLExecuteExplain:
		return field(fields, 3)
	case KindVariableAssignment:
		return strings.TrimSpace(field(fields, 3) + " = " + field(fields, 4))
	default:
		if len(fields) <= 2 {
			return ""
		}

		return strings.Join(fields[2:], " | ")
	}
}

// inferNamespace implements the heuristics of §4.2. The rules are
// deliberately imprecise (spec §9 flags this as an open question inherited
// from the source analyzer); this preserves the documented behaviour rather
// than guessing at intent for malformed identifiers.
func inferNamespace(root *Root, kind Kind, fields []string) string {
	switch kind {
	case KindMethodEntry, KindMethodExit:
		return namespaceFromQualifiedName(root, field(fields, 4))
	case KindConstructorEntry, KindConstructorExit:
		return namespaceFromQualifiedName(root, field(fields, 5))
	case KindCodeUnitStarted:
		return namespaceFromCodeUnit(field(fields, 3), field(fields, 4))
	case KindEnteringManagedPkg:
		return lastDottedSegment(field(fields, 2))
	default:
		return ""
	}
}

// namespaceFromQualifiedName applies the 2-segment/3-segment heuristic to a
// dotted qualified name such as "ns.Outer.Inner.method(args)".
//
//   - 1 segment before "(": namespace left unset (caller defaults to "default").
//   - 2 segments: namespace is "default".
//   - 3 segments: the leading segment is the namespace.
//   - 4+ segments: the leading segment is the namespace only if it is
//     already a namespace seen elsewhere in the log; otherwise unset. The
//     source analyzer's own comments call this branch's intent unclear for
//     4-segment names; we preserve observed behaviour rather than guess.
func namespaceFromQualifiedName(root *Root, sig string) string {
	name := sig
	if idx := strings.IndexByte(sig, '('); idx >= 0 {
		name = sig[:idx]
	}

	segments := strings.Split(name, ".")
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}

	lead := segments[0]

	switch len(segments) {
	case 1:
		return ""
	case 2:
		return "default"
	case 3:
		return lead
	default:
		if root.Namespaces[lead] {
			return lead
		}

		return ""
	}
}

// codeUnitSubKind extracts the sub-kind token from a CODE_UNIT_STARTED
// path/name field: the text before the first ':' or '/'.
func codeUnitSubKind(pathField string) string {
	if i := strings.IndexAny(pathField, ":/"); i >= 0 {
		return pathField[:i]
	}

	return pathField
}

// namespaceFromCodeUnit dispatches on the CODE_UNIT_STARTED sub-kind
// (§4.2, spec.md line 96). Each of the seven sub-kinds gets its own rule
// below rather than falling through to a shared default; see DESIGN.md's
// "CODE_UNIT_STARTED sub-kind dispatch" entry for the reasoning behind each
// branch (grounding is by Salesforce naming convention, not
// original_source/, which kept no files for this rule).
func namespaceFromCodeUnit(pathField, name string) string {
	switch codeUnitSubKind(pathField) {
	case "apex":
		// Anonymous Execute Apex blocks always run unpackaged - there is no
		// API name to extract a namespace prefix from.
		return "default"
	case "__sfdc_trigger", "VF", "EventService", "Workflow", "Flow":
		// Trigger, Visualforce page, platform event, workflow object, and
		// flow API names all carry an optional managed-package namespace
		// prefix separated by "__" (e.g. "mynamespace__MyFlow").
		return namespaceFromManagedPackageName(name)
	case "Validation":
		// name is "Object.RuleName"; any namespace prefix lives on the
		// object segment, not the validation rule's own name.
		object := name
		if i := strings.IndexByte(name, '.'); i >= 0 {
			object = name[:i]
		}

		return namespaceFromManagedPackageName(object)
	default:
		return "default"
	}
}

// namespaceFromManagedPackageName extracts the namespace prefix from a
// managed-package API name of the form "namespace__Rest", defaulting when
// no such prefix is present. A trailing all-lowercase "__c"/"__e"-style type
// suffix is not a namespace separator and is ignored, so "MyEvent__e" has
// no namespace while "ns__MyEvent__e" has "ns".
func namespaceFromManagedPackageName(name string) string {
	if i := strings.LastIndex(name, "__"); i > 0 {
		suffix := name[i+2:]
		if suffix != "" && strings.ToLower(suffix) == suffix {
			name = name[:i]
		}
	}

	if i := strings.Index(name, "__"); i > 0 {
		return name[:i]
	}

	return "default"
}

// lastDottedSegment returns the final "."-delimited token of s, or s itself
// if it contains no ".".
func lastDottedSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}

	return s
}
