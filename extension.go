package marklint

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Directives returns the goldmark extension that parses container (:::name),
// leaf (::name) and inline (:name) directives into the node types in this
// package. Attribute syntax ({.class #id key="value"}) is parsed with
// goldmark's own attribute parser.
func Directives() goldmark.Extender { return &directiveExtension{} }

type directiveExtension struct{}

func (e *directiveExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&directiveBlockParser{}, 500)),
		parser.WithInlineParsers(util.Prioritized(&inlineDirectiveParser{}, 500)),
	)
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// consumeLabel parses an optional [label] starting at line[i] and attaches
// it as a child string node. Returns the index just past the label, or i
// unchanged if there is none.
func consumeLabel(node ast.Node, line []byte, i int) int {
	if i >= len(line) || line[i] != '[' {
		return i
	}
	end := bytes.IndexByte(line[i+1:], ']')
	if end < 0 {
		return i
	}
	if end > 0 {
		label := make([]byte, end)
		copy(label, line[i+1:i+1+end])
		str := ast.NewString(label)
		// raw marks the node as opaque to the block-phase walker, which
		// would otherwise call Lines() on it and panic (inline node)
		str.SetRaw(true)
		node.AppendChild(node, str)
	}
	return i + end + 2
}

// parseNodeAttributes parses a {...} attribute block at the current reader
// position, if any, onto the node. The reader is restored on a failed parse.
func parseNodeAttributes(node ast.Node, reader text.Reader) {
	if reader.Peek() != '{' {
		return
	}
	savedLine, savedSeg := reader.Position()
	attrs, ok := parser.ParseAttributes(reader)
	if !ok {
		reader.SetPosition(savedLine, savedSeg)
		return
	}
	for _, a := range attrs {
		node.SetAttribute(a.Name, a.Value)
	}
}

// directiveBlockParser opens leaf directives (::name, closed after their
// opening line) and container directives (:::name, children parsed as blocks
// until a closing fence of at least the opening length).
type directiveBlockParser struct{}

func (b *directiveBlockParser) Trigger() []byte { return []byte{':'} }

func (b *directiveBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || line[pos] != ':' {
		return nil, parser.NoChildren
	}
	i := pos
	for i < len(line) && line[i] == ':' {
		i++
	}
	marker := i - pos
	if marker < 2 {
		// single-colon directives are inline, handled by inlineDirectiveParser
		return nil, parser.NoChildren
	}
	nameStart := i
	if nameStart >= len(line) || !isNameStart(line[nameStart]) {
		return nil, parser.NoChildren
	}
	for i < len(line) && isNameByte(line[i]) {
		i++
	}
	name := string(line[nameStart:i])
	offset := seg.Start + pos

	var node ast.Node
	state := parser.NoChildren
	if marker == 2 {
		leaf := NewLeafDirective(name, offset)
		i = consumeLabel(leaf, line, i)
		node = leaf
	} else {
		container := NewContainerDirective(name, offset)
		container.fenceLength = marker
		node = container
		state = parser.HasChildren
	}

	reader.Advance(i)
	parseNodeAttributes(node, reader)

	// consume the remainder of the opening line, leaving the newline for
	// the framework
	rest, _ := reader.PeekLine()
	n := len(rest)
	if n > 0 && rest[n-1] == '\n' {
		n--
	}
	reader.Advance(n)

	return node, state
}

func (b *directiveBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	cd, ok := node.(*ContainerDirective)
	if !ok {
		// leaf directives span exactly their opening line
		return parser.Close
	}

	line, segment := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 {
		i := pos
		for ; i < len(line) && line[i] == ':'; i++ {
		}
		if i-pos >= cd.fenceLength && util.IsBlank(line[i:]) {
			newline := 1
			if len(line) == 0 || line[len(line)-1] != '\n' {
				newline = 0
			}
			reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
			return parser.Close
		}
	}
	return parser.Continue | parser.HasChildren
}

func (b *directiveBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *directiveBlockParser) CanInterruptParagraph() bool { return true }

func (b *directiveBlockParser) CanAcceptIndentedLine() bool { return false }

// inlineDirectiveParser parses :name[label]{attrs} text directives.
type inlineDirectiveParser struct{}

func (p *inlineDirectiveParser) Trigger() []byte { return []byte{':'} }

func (p *inlineDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 2 || !isNameStart(line[1]) {
		return nil
	}
	// a marker continuing a previous colon run ("::x" mid-sentence) stays
	// literal rather than producing a stray text directive
	src := block.Source()
	if seg.Start > 0 && src[seg.Start-1] == ':' {
		return nil
	}
	i := 1
	for i < len(line) && isNameByte(line[i]) {
		i++
	}
	node := NewInlineDirective(string(line[1:i]), seg.Start)
	i = consumeLabel(node, line, i)
	block.Advance(i)
	parseNodeAttributes(node, block)
	return node
}
