package marklint

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
)

// BuildIdentity tags which of possibly several concurrent passes over the
// same document produced a tree. Unused-directive warnings are emitted for
// the client pass only, so a document compiled by both passes yields exactly
// one warning.
type BuildIdentity string

const (
	BuildClient BuildIdentity = "client"
	BuildServer BuildIdentity = "server"
)

// Document represents a parsed markdown document: the goldmark AST, the raw
// source it was parsed from, and metadata about where it came from
type Document struct {
	// The parsed markdown tree. Shared with later stages, which may mutate
	// directive nodes in place.
	Root ast.Node
	// The raw markdown source, used to resolve byte offsets to positions
	Content []byte
	// Metadata about the source file
	Metadata MetaData
}

type MetaData struct {
	// The source file path
	Source string
	// Which compiler pass produced this document
	Build BuildIdentity
}

// Position is a 1-based source location. The zero value means unknown.
type Position struct {
	Line   int
	Column int
}

func (p Position) Known() bool { return p.Line > 0 }

// PositionFor resolves a directive's byte offset against the document source.
// Returns the zero Position when the offset is missing or out of range.
func (d *Document) PositionFor(dir Directive) Position {
	off := dir.SourceOffset()
	if off < 0 || off > len(d.Content) {
		return Position{}
	}
	line := bytes.Count(d.Content[:off], []byte("\n")) + 1
	col := off - bytes.LastIndexByte(d.Content[:off], '\n')
	return Position{Line: line, Column: col}
}
