package marklint

import (
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

type Parser struct {
	gm goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		gm: goldmark.New(goldmark.WithExtensions(Directives())),
	}
}

// ParseMarkdownDoc parses a markdown document into a [Document] carrying the
// directive-annotated AST and the raw source for position resolution
func (p *Parser) ParseMarkdownDoc(r io.Reader, md MetaData) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	root := p.gm.Parser().Parse(text.NewReader(content))

	return &Document{
		Root:     root,
		Content:  content,
		Metadata: md,
	}, nil
}
