package marklint

import (
	"github.com/yuin/goldmark/ast"
)

// Kind identifies the three supported directive forms. The set is closed:
// each kind maps to exactly one marker prefix.
type Kind uint8

const (
	// KindContainer is a block directive with child content, written as
	// :::name ... :::
	KindContainer Kind = iota
	// KindLeaf is a block directive without child content, written as ::name
	KindLeaf
	// KindText is an inline directive embedded in prose, written as :name
	KindText
)

// Prefix returns the source marker for the kind. ok is false for a kind
// outside the known set, which indicates a parser bug rather than bad input.
func (k Kind) Prefix() (string, bool) {
	switch k {
	case KindContainer:
		return ":::", true
	case KindLeaf:
		return "::", true
	case KindText:
		return ":", true
	}
	return "", false
}

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindLeaf:
		return "leaf"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Directive is implemented by the three directive node types produced by the
// parser. Directive attributes use goldmark's native node attribute storage,
// so Attributes()/SetAttribute come from ast.Node.
//
// The handled marker is an opaque payload attached by whichever stage claims
// the directive for rendering (e.g. the admonition handler). This package
// never inspects the payload, only its presence.
type Directive interface {
	ast.Node

	DirectiveKind() Kind
	DirectiveName() string

	// HandledBy returns the rendering metadata attached by an upstream
	// stage, or nil if no stage has claimed this directive.
	HandledBy() any
	MarkHandled(meta any)

	// SourceOffset returns the byte offset of the directive marker in the
	// original source, or -1 when unknown.
	SourceOffset() int
}

type directiveData struct {
	name    string
	handled any
	offset  int
}

func (d *directiveData) DirectiveName() string { return d.name }
func (d *directiveData) HandledBy() any        { return d.handled }
func (d *directiveData) MarkHandled(meta any)  { d.handled = meta }
func (d *directiveData) SourceOffset() int     { return d.offset }

var (
	// KindContainerDirective is the goldmark node kind for :::name blocks
	KindContainerDirective = ast.NewNodeKind("ContainerDirective")
	// KindLeafDirective is the goldmark node kind for ::name blocks
	KindLeafDirective = ast.NewNodeKind("LeafDirective")
	// KindInlineDirective is the goldmark node kind for :name inline nodes
	KindInlineDirective = ast.NewNodeKind("InlineDirective")
)

// ContainerDirective is a block directive whose children are the markdown
// blocks between the opening and closing fences.
type ContainerDirective struct {
	ast.BaseBlock
	directiveData

	// fenceLength is the number of colons in the opening fence. The closing
	// fence must be at least as long, which allows directives to nest.
	fenceLength int
}

func NewContainerDirective(name string, offset int) *ContainerDirective {
	return &ContainerDirective{
		directiveData: directiveData{name: name, offset: offset},
		fenceLength:   3,
	}
}

func (n *ContainerDirective) Kind() ast.NodeKind  { return KindContainerDirective }
func (n *ContainerDirective) DirectiveKind() Kind { return KindContainer }

func (n *ContainerDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.name}, nil)
}

// LeafDirective is a block directive that occupies a single line. An
// optional [label] on that line is stored as a child string node.
type LeafDirective struct {
	ast.BaseBlock
	directiveData
}

func NewLeafDirective(name string, offset int) *LeafDirective {
	return &LeafDirective{directiveData: directiveData{name: name, offset: offset}}
}

func (n *LeafDirective) Kind() ast.NodeKind  { return KindLeafDirective }
func (n *LeafDirective) DirectiveKind() Kind { return KindLeaf }

func (n *LeafDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.name}, nil)
}

// InlineDirective is a text directive embedded in prose. An optional [label]
// is stored as a child string node.
type InlineDirective struct {
	ast.BaseInline
	directiveData
}

func NewInlineDirective(name string, offset int) *InlineDirective {
	return &InlineDirective{directiveData: directiveData{name: name, offset: offset}}
}

func (n *InlineDirective) Kind() ast.NodeKind  { return KindInlineDirective }
func (n *InlineDirective) DirectiveKind() Kind { return KindText }

func (n *InlineDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.name}, nil)
}
