package marklint

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

// recordingHandler captures raw log messages so tests can assert on
// multi-line warning output without text-handler escaping.
type recordingHandler struct {
	mu       sync.Mutex
	messages []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) all() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}

func parseDoc(t *testing.T, src string, build BuildIdentity) *Document {
	t.Helper()
	doc, err := NewParser().ParseMarkdownDoc(strings.NewReader(src), MetaData{
		Source: "docs/intro.md",
		Build:  build,
	})
	require.NoError(t, err)
	return doc
}

func collectDirectives(root ast.Node) []Directive {
	var out []Directive
	walkDirectives(root, func(d Directive) { out = append(out, d) })
	return out
}

// literalStrings returns the values of all string nodes in the tree, i.e.
// the output of the rewriter.
func literalStrings(root ast.Node) []string {
	var out []string
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if s, ok := c.(*ast.String); ok {
				out = append(out, string(s.Value))
			}
			visit(c)
		}
	}
	visit(root)
	return out
}

func TestHandledDirectivesAreNeverTouched(t *testing.T) {
	// every kind, every shape: a handled marker alone decides
	doc := parseDoc(t, "A :tm mark.\n\n::note\n\n:::tip\ncontent\n:::\n", BuildClient)
	for _, d := range collectDirectives(doc.Root) {
		d.MarkHandled("claimed")
	}

	h := &recordingHandler{}
	unused, err := NewChecker(WithLogger(slog.New(h))).Check(doc)
	require.NoError(t, err)

	assert.Empty(t, unused)
	assert.Empty(t, h.all(), "no warning for a fully handled document")
	assert.Len(t, collectDirectives(doc.Root), 3, "handled directives stay in the tree")
	assert.Empty(t, literalStrings(doc.Root), "handled text directives are not rewritten")
}

func TestSimpleTextDirectiveIsRewritten(t *testing.T) {
	doc := parseDoc(t, "Acme:tm is a trademark.\n", BuildClient)
	require.Len(t, collectDirectives(doc.Root), 1)

	h := &recordingHandler{}
	unused, err := NewChecker(WithLogger(slog.New(h))).Check(doc)
	require.NoError(t, err)

	assert.Empty(t, unused)
	assert.Empty(t, h.all())
	assert.Empty(t, collectDirectives(doc.Root), "directive node replaced")
	assert.Equal(t, []string{":tm"}, literalStrings(doc.Root))
}

func TestTextDirectiveWithLabelIsNotSimple(t *testing.T) {
	doc := parseDoc(t, "Press :kbd[Enter] now.\n", BuildClient)

	h := &recordingHandler{}
	unused, err := NewChecker(WithLogger(slog.New(h))).Check(doc)
	require.NoError(t, err)

	require.Len(t, unused, 1)
	assert.Equal(t, "kbd", unused[0].Directive.DirectiveName())
	assert.Len(t, collectDirectives(doc.Root), 1, "labelled directive left structurally unchanged")
	assert.Equal(t, 1, unused[0].Directive.ChildCount(), "label content preserved")
}

func TestTextDirectiveWithAttributesIsNotSimple(t *testing.T) {
	doc := parseDoc(t, "A :badge{variant=info} here.\n", BuildClient)

	unused, err := NewChecker(WithLogger(slog.New(&recordingHandler{}))).Check(doc)
	require.NoError(t, err)

	require.Len(t, unused, 1)
	assert.Equal(t, "badge", unused[0].Directive.DirectiveName())
	assert.Len(t, collectDirectives(doc.Root), 1)
}

func TestUnusedDirectivesCollectedInDocumentOrder(t *testing.T) {
	src := ":::alpha\nfirst\n:::\n\nSome :gamma[g] text.\n\n::beta\n"
	doc := parseDoc(t, src, BuildClient)

	h := &recordingHandler{}
	unused, err := NewChecker(WithLogger(slog.New(h))).Check(doc)
	require.NoError(t, err)

	var names []string
	for _, u := range unused {
		names = append(names, u.Directive.DirectiveName())
	}
	assert.Equal(t, []string{"alpha", "gamma", "beta"}, names)

	msgs := h.all()
	require.Len(t, msgs, 1, "exactly one warning per walk")
	alphaIdx := strings.Index(msgs[0], ":::alpha")
	gammaIdx := strings.Index(msgs[0], ":gamma")
	betaIdx := strings.Index(msgs[0], "::beta")
	assert.True(t, alphaIdx < gammaIdx && gammaIdx < betaIdx, "entries listed in document order")
}

func TestSecondWalkIsNoOp(t *testing.T) {
	doc := parseDoc(t, "A :tm mark.\n", BuildClient)

	h := &recordingHandler{}
	checker := NewChecker(WithLogger(slog.New(h)))

	unused, err := checker.Check(doc)
	require.NoError(t, err)
	assert.Empty(t, unused)
	assert.Equal(t, []string{":tm"}, literalStrings(doc.Root))

	// a rewritten tree has no directive nodes left to classify
	unused, err = checker.Check(doc)
	require.NoError(t, err)
	assert.Empty(t, unused)
	assert.Equal(t, []string{":tm"}, literalStrings(doc.Root), "no further mutation on the second pass")
	assert.Empty(t, h.all())
}

func TestWarningEmittedForClientPassOnly(t *testing.T) {
	const src = "::mystery\n"

	h := &recordingHandler{}
	checker := NewChecker(WithLogger(slog.New(h)))

	// two concurrent passes over the same content, independent trees
	serverUnused, err := checker.Check(parseDoc(t, src, BuildServer))
	require.NoError(t, err)
	clientUnused, err := checker.Check(parseDoc(t, src, BuildClient))
	require.NoError(t, err)

	assert.Len(t, serverUnused, 1, "server pass still collects")
	assert.Len(t, clientUnused, 1)
	assert.Len(t, h.all(), 1, "exactly one warning across both passes")
}

func TestWarningMessageFormat(t *testing.T) {
	doc := parseDoc(t, "# Intro\n\n::note\n", BuildClient)

	h := &recordingHandler{}
	_, err := NewChecker(WithLogger(slog.New(h))).Check(doc)
	require.NoError(t, err)

	msgs := h.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], `Found 1 unused markdown directive in "docs/intro.md":`)
	assert.Contains(t, msgs[0], "- ::note (at line 3, column 1)")
	assert.Contains(t, msgs[0], DefaultSupportURL)
}

func TestMixedDocumentScenario(t *testing.T) {
	src := "A :tm mark.\n\n::warning\n\n:::tip\ncontent\n:::\n"
	doc := parseDoc(t, src, BuildClient)

	// another stage claimed the leaf directive
	for _, d := range collectDirectives(doc.Root) {
		if d.DirectiveKind() == KindLeaf {
			d.MarkHandled("renderer")
		}
	}

	h := &recordingHandler{}
	unused, err := NewChecker(WithLogger(slog.New(h))).Check(doc)
	require.NoError(t, err)

	// :tm demoted to literal text
	assert.Equal(t, []string{":tm"}, literalStrings(doc.Root))

	// handled leaf and unhandled container both structurally unchanged
	remaining := collectDirectives(doc.Root)
	require.Len(t, remaining, 2)
	assert.Equal(t, KindLeaf, remaining[0].DirectiveKind())
	assert.Equal(t, KindContainer, remaining[1].DirectiveKind())

	// only the container is reported
	require.Len(t, unused, 1)
	assert.Equal(t, "tip", unused[0].Directive.DirectiveName())

	msgs := h.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], ":::tip")
	assert.NotContains(t, msgs[0], "::warning")
	assert.NotContains(t, msgs[0], ":tm")
}

func TestAdmonitionsClaimKnownContainers(t *testing.T) {
	src := ":::tip\nok\n:::\n\n:::mystery\n?\n:::\n\n::tip\n"
	doc := parseDoc(t, src, BuildClient)

	marked := NewAdmonitions().Process(doc)
	assert.Equal(t, 1, marked, "only the known container is claimed")

	h := &recordingHandler{}
	unused, err := NewChecker(WithLogger(slog.New(h))).Check(doc)
	require.NoError(t, err)

	var names []string
	for _, u := range unused {
		names = append(names, u.Directive.DirectiveName())
	}
	// the leaf ::tip is not an admonition even though the name matches
	assert.Equal(t, []string{"mystery", "tip"}, names)
}

func TestAdmonitionsExtraNames(t *testing.T) {
	doc := parseDoc(t, ":::math\nx = 1\n:::\n", BuildClient)

	marked := NewAdmonitions("math").Process(doc)
	assert.Equal(t, 1, marked)

	unused, err := NewChecker(WithLogger(slog.New(&recordingHandler{}))).Check(doc)
	require.NoError(t, err)
	assert.Empty(t, unused)
}

func TestAdmonitionsKeepExistingMarker(t *testing.T) {
	doc := parseDoc(t, ":::tip\nok\n:::\n", BuildClient)

	dirs := collectDirectives(doc.Root)
	require.Len(t, dirs, 1)
	dirs[0].MarkHandled("other stage")

	assert.Equal(t, 0, NewAdmonitions().Process(doc))
	assert.Equal(t, "other stage", dirs[0].HandledBy())
}
