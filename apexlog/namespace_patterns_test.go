package apexlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNamespacePatterns_FirstMatchWins(t *testing.T) {
	root := &Root{}
	e := &Event{Text: "ns.Cls.method()", Namespace: "default"}
	root.observeNamespace(e.Namespace)
	patterns := compileNamespacePatterns([]NamespacePattern{
		{Match: "{ns}.Cls.method()", Namespace: "{ns}-first"},
		{Match: "{ns}.Cls.method()", Namespace: "{ns}-second"},
	})

	applyNamespacePatterns(root, e, patterns)

	assert.Equal(t, "ns-first", e.Namespace)
}

func TestApplyNamespacePatterns_NoMatchLeavesNamespaceUntouched(t *testing.T) {
	root := &Root{}
	e := &Event{Text: "something else entirely", Namespace: "default"}
	root.observeNamespace(e.Namespace)
	patterns := compileNamespacePatterns([]NamespacePattern{
		{Match: "{ns}.Cls.method()", Namespace: "{ns}-override"},
	})

	applyNamespacePatterns(root, e, patterns)

	assert.Equal(t, "default", e.Namespace)
}

func TestApplyNamespacePatterns_OverrideUpdatesRootNamespaces(t *testing.T) {
	root := &Root{}
	e := &Event{Text: "ns.Cls.method()", Namespace: "default"}
	root.observeNamespace(e.Namespace)
	patterns := compileNamespacePatterns([]NamespacePattern{
		{Match: "{ns}.Cls.method()", Namespace: "{ns}-override"},
	})

	applyNamespacePatterns(root, e, patterns)

	assert.Equal(t, "ns-override", e.Namespace)
	assert.True(t, root.Namespaces["ns-override"], "root.Namespaces should contain the overridden namespace")
	assert.False(t, root.Namespaces["default"], "root.Namespaces should not retain the pre-override namespace once nothing else uses it")
}

func TestApplyNamespacePatterns_OverrideKeepsPreOverrideNamespaceIfStillReferenced(t *testing.T) {
	root := &Root{}
	root.observeNamespace("default") // another event still carries "default"
	e := &Event{Text: "ns.Cls.method()", Namespace: "default"}
	root.observeNamespace(e.Namespace)
	patterns := compileNamespacePatterns([]NamespacePattern{
		{Match: "{ns}.Cls.method()", Namespace: "{ns}-override"},
	})

	applyNamespacePatterns(root, e, patterns)

	assert.True(t, root.Namespaces["ns-override"])
	assert.True(t, root.Namespaces["default"], "root.Namespaces should keep \"default\" while another event still carries it")
}

func TestCompileNamespacePatterns_SkipsInvalidPattern(t *testing.T) {
	compiled := compileNamespacePatterns([]NamespacePattern{
		// Duplicate named capture group: invalid regex, must be skipped.
		{Match: "{ns}.{ns}.method()", Namespace: "x"},
		{Match: "{ns}.valid", Namespace: "{ns}"},
	})

	require.Len(t, compiled, 1)
}

func TestCompileNamespacePatterns_GreedyVariable(t *testing.T) {
	root := &Root{}
	e := &Event{Text: "a/b/c.method()"}
	patterns := compileNamespacePatterns([]NamespacePattern{
		{Match: "{path*}.method()", Namespace: "{path}"},
	})

	applyNamespacePatterns(root, e, patterns)

	assert.Equal(t, "a/b/c", e.Namespace)
}
