package apexlog

// treeBuilder holds the open-frame stack described in §4.3 and drives
// placement, push/pop, truncation recovery, pseudo-exit resolution, and the
// four on_after hooks. One treeBuilder is created per Parse call and
// discarded once the tree is built; it holds no state beyond a single
// parse.
type treeBuilder struct {
	root *Root
	// stack[0] is always &root.Event. Frames above it are currently open
	// parent events, nearest-open-frame last.
	stack []*Event
	// last is the most recently inserted event, the target of continuation
	// attachment and the subject of the next on_after call.
	last *Event
	// pendingPseudoExit is a pseudo-exit event awaiting the next event's
	// timestamp to become its exit stamp (§4.3).
	pendingPseudoExit *Event
}

func newTreeBuilder(root *Root) *treeBuilder {
	return &treeBuilder{
		root:  root,
		stack: []*Event{&root.Event},
	}
}

func tsPtr(ts int64) *int64 {
	v := ts
	return &v
}

func (b *treeBuilder) top() *Event {
	return b.stack[len(b.stack)-1]
}

// insert places e into the tree and updates builder state. It must be
// called once per event, in log order.
func (b *treeBuilder) insert(e *Event) {
	if b.pendingPseudoExit != nil {
		b.pendingPseudoExit.ExitStamp = tsPtr(e.Timestamp)
		b.pendingPseudoExit = nil
	}

	if b.last != nil {
		b.runOnAfter(b.last, e)
	}

	if e.IsExit {
		b.handleExit(e)
	} else {
		b.top().addChild(e)
	}

	if e.IsParent && !e.IsExit {
		b.stack = append(b.stack, e)
	}

	if e.NextLineIsExit {
		b.pendingPseudoExit = e
	}

	b.last = e
}

// handleExit implements §4.3's exit-matching algorithm: locate the nearest
// open frame whose ExitTypes accepts e.Kind, truncate every frame above it,
// and attach e as a child of the matched frame. An unmatched exit is an
// orphan: it attaches as a leaf under the current (unmodified) top of stack
// and the stack is left alone (§7: orphan exits are not an error).
func (b *treeBuilder) handleExit(e *Event) {
	for i := len(b.stack) - 1; i >= 1; i-- {
		f := b.stack[i]
		if f.ExitTypes != nil && f.ExitTypes[e.Kind] {
			f.addChild(e)

			for j := i + 1; j < len(b.stack); j++ {
				b.stack[j].IsTruncated = true
				b.stack[j].ExitStamp = tsPtr(e.Timestamp)
			}

			f.ExitStamp = tsPtr(e.Timestamp)
			b.stack = b.stack[:i]

			return
		}
	}

	// Orphan exit: no open frame claims it.
	b.top().addChild(e)
}

// attachContinuation appends a continuation line to the most recent event's
// text, if it accepts one, or records a parsing error (§4.3, §7).
func (b *treeBuilder) attachContinuation(line string) {
	if b.last != nil && b.last.AcceptsText {
		b.last.Text += "\n" + line

		return
	}

	b.root.ParsingErrors = append(
		b.root.ParsingErrors,
		"Unable to attach continuation text: "+line,
	)
}

// runOnAfter dispatches the four on_after hooks (§4.3, §9). prev is the
// just-completed event; next is the event about to be inserted, or nil at
// end-of-log.
func (b *treeBuilder) runOnAfter(prev *Event, next *Event) {
	switch prev.Kind {
	case KindLimitUsageForNS:
		applyLimitUsagePayload(b.root, prev)
	case KindEnteringManagedPkg:
		if prev.ExitStamp == nil {
			if next != nil {
				prev.ExitStamp = tsPtr(next.Timestamp)
			} else {
				prev.ExitStamp = tsPtr(prev.Timestamp)
			}

			b.popIfTop(prev)
		}
	case KindExceptionThrown:
		emitExceptionIssue(b.root, prev)
	case KindFatalError:
		emitFatalIssue(b.root, prev)
	}
}

// popIfTop removes e from the stack if it is currently the top frame. It is
// always the top in practice (on_after runs before any other push can
// intervene) but the check keeps the builder defensive rather than
// corrupting the stack if that invariant is ever violated.
func (b *treeBuilder) popIfTop(e *Event) {
	if len(b.stack) > 0 && b.top() == e {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// finish runs end-of-log cleanup (§4.3 "Termination"): resolves any pending
// pseudo-exit against its own timestamp, runs the last event's on_after
// hook with no following event, and truncates every frame still open above
// root.
func (b *treeBuilder) finish() {
	if b.pendingPseudoExit != nil {
		b.pendingPseudoExit.ExitStamp = tsPtr(b.pendingPseudoExit.Timestamp)
		b.pendingPseudoExit = nil
	}

	if b.last != nil {
		b.runOnAfter(b.last, nil)
	}

	lastTimestamp := b.root.Timestamp
	if b.last != nil {
		lastTimestamp = b.last.Timestamp
	}

	for i := len(b.stack) - 1; i >= 1; i-- {
		f := b.stack[i]
		if f.ExitStamp == nil {
			f.IsTruncated = true
			f.ExitStamp = tsPtr(lastTimestamp)
		}
	}

	b.stack = b.stack[:1]
}
