package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/mquill/marklint"
	"github.com/sourcegraph/go-lsp"
)

// DocumentService tracks open document contents and runs the directive
// pipeline over them on demand.
//
// The pipeline runs with the server build identity: the console warning that
// the client pass would emit stays suppressed, and unused directives surface
// as LSP diagnostics instead. A file open in an editor during a build is
// therefore reported once, not once per surface.
type DocumentService struct {
	parser      *marklint.Parser
	admonitions *marklint.Admonitions
	checker     *marklint.Checker

	mu   sync.Mutex
	docs map[lsp.DocumentURI]string
}

func NewDocumentService(cfg marklint.Config) *DocumentService {
	return &DocumentService{
		parser:      marklint.NewParser(),
		admonitions: marklint.NewAdmonitions(cfg.Admonitions...),
		checker:     marklint.NewChecker(marklint.WithSupportURL(cfg.SupportURL)),
		docs:        make(map[lsp.DocumentURI]string),
	}
}

// SetDocument stores the current full text for a document URI
func (s *DocumentService) SetDocument(uri lsp.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = text
}

func (s *DocumentService) RemoveDocument(uri lsp.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *DocumentService) DocumentText(uri lsp.DocumentURI) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[uri]
	return text, ok
}

// Diagnostics checks the tracked document and converts every unused
// directive into a warning-severity LSP diagnostic at its source range.
func (s *DocumentService) Diagnostics(uri lsp.DocumentURI) ([]lsp.Diagnostic, error) {
	text, ok := s.DocumentText(uri)
	if !ok {
		return nil, fmt.Errorf("unknown document: %s", uri)
	}

	fsPath, err := URIToPath(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid document URI: %w", err)
	}

	doc, err := s.parser.ParseMarkdownDoc(strings.NewReader(text), marklint.MetaData{
		Source: fsPath,
		Build:  marklint.BuildServer,
	})
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	s.admonitions.Process(doc)

	unused, err := s.checker.Check(doc)
	if err != nil {
		return nil, err
	}

	diagnostics := make([]lsp.Diagnostic, 0, len(unused))
	for _, u := range unused {
		name, err := marklint.FormatDirectiveName(u.Directive)
		if err != nil {
			return nil, err
		}

		var rng lsp.Range
		if u.Position.Known() {
			start := lsp.Position{Line: u.Position.Line - 1, Character: u.Position.Column - 1}
			rng = lsp.Range{
				Start: start,
				End:   lsp.Position{Line: start.Line, Character: start.Character + len(name)},
			}
		}

		diagnostics = append(diagnostics, lsp.Diagnostic{
			Range:    rng,
			Severity: lsp.Warning,
			Source:   "marklint",
			Message:  fmt.Sprintf("unused directive %s", name),
		})
	}

	return diagnostics, nil
}

// URIToPath converts a file:// URI to a filesystem path
func URIToPath(uri lsp.DocumentURI) (string, error) {
	u, err := url.Parse(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported URI scheme %q", u.Scheme)
	}

	path := u.Path
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
	}
	return filepath.FromSlash(path), nil
}

// PathToURI converts a filesystem path to a file:// URI
func PathToURI(path string) lsp.DocumentURI {
	return lsp.DocumentURI("file://" + filepath.ToSlash(path))
}
