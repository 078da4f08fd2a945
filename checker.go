package marklint

import (
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark/ast"
)

type classification uint8

const (
	// classHandled: an upstream stage attached rendering metadata
	classHandled classification = iota
	// classSimpleText: unhandled text directive with no attributes and no
	// label, safe to demote to literal text
	classSimpleText
	// classUnused: every other unhandled directive, reported to the operator
	classUnused
)

// classify decides what the walk does with a directive node. Handled-ness is
// determined solely by the presence of the handled marker; name and
// attributes are never inspected for it. A text directive with a label
// (children) is not simple: label content must not be silently discarded.
func classify(d Directive) classification {
	if d.HandledBy() != nil {
		return classHandled
	}
	if d.DirectiveKind() == KindText && len(d.Attributes()) == 0 && d.ChildCount() == 0 {
		return classSimpleText
	}
	return classUnused
}

// rewriteToText replaces a simple text directive with a literal text node
// holding ":" + name. A single tree operation, so later visitors never see a
// half-migrated node.
func rewriteToText(d Directive) {
	parent := d.Parent()
	if parent == nil {
		return
	}
	literal := append([]byte{':'}, d.DirectiveName()...)
	parent.ReplaceChild(parent, d, ast.NewString(literal))
}

// walkDirectives visits every directive node under n in document order. The
// next sibling is captured before the callback runs, so the callback may
// replace the visited node without corrupting traversal.
func walkDirectives(n ast.Node, fn func(Directive)) {
	for c := n.FirstChild(); c != nil; {
		next := c.NextSibling()
		if d, ok := c.(Directive); ok {
			fn(d)
		}
		walkDirectives(c, fn)
		c = next
	}
}

// Unused records a directive left unclaimed by every processing stage, for
// the duration of one walk.
type Unused struct {
	Directive Directive
	Position  Position
}

// Checker runs the unused-directive pass: a single walk that rewrites simple
// unhandled text directives to literal text and reports every other
// unhandled directive as one warning through the configured logger.
type Checker struct {
	logger     *slog.Logger
	supportURL string
}

type CheckerOption func(*Checker)

// WithLogger sets the diagnostic sink the warning is emitted through
func WithLogger(l *slog.Logger) CheckerOption {
	return func(c *Checker) { c.logger = l }
}

// WithSupportURL overrides the support reference shown at the end of the
// warning message
func WithSupportURL(url string) CheckerOption {
	return func(c *Checker) { c.supportURL = url }
}

func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		logger:     slog.Default(),
		supportURL: DefaultSupportURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Check walks the document tree once. Simple unhandled text directives are
// rewritten in place; the remaining unhandled directives are returned in
// document order and, when the document was produced by the client pass,
// reported as a single warning.
//
// A non-nil error indicates an internal contract violation while formatting
// the report (the tree mutations are still valid); it never represents bad
// document input.
func (c *Checker) Check(doc *Document) ([]Unused, error) {
	var unused []Unused

	walkDirectives(doc.Root, func(d Directive) {
		switch classify(d) {
		case classHandled:
			// claimed by another stage, not ours to touch
		case classSimpleText:
			rewriteToText(d)
		case classUnused:
			unused = append(unused, Unused{Directive: d, Position: doc.PositionFor(d)})
		}
	})

	if err := c.maybeReport(unused, doc); err != nil {
		return unused, err
	}
	return unused, nil
}

// maybeReport emits the formatted warning at most once per walk: only when
// something was collected and only for the client pass, so concurrent passes
// over the same document yield one warning, not one per pass.
func (c *Checker) maybeReport(entries []Unused, doc *Document) error {
	if len(entries) == 0 || doc.Metadata.Build != BuildClient {
		return nil
	}
	msg, err := formatReport(entries, doc.Metadata.Source, c.supportURL)
	if err != nil {
		return fmt.Errorf("formatting unused directive report: %w", err)
	}
	c.logger.Warn(msg)
	return nil
}
