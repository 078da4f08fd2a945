package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mquill/marklint"
	iLsp "github.com/mquill/marklint/internal/lsp"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

// Server answers LSP requests over jsonrpc2 and pushes unused-directive
// diagnostics for open markdown documents.
type Server struct {
	conn *jsonrpc2.Conn
	// tracks canceled request IDs
	cancelMap sync.Map

	// tracking for method request counts
	trackRequestCount sync.Map

	// abstraction for the directive check pipeline
	docService *iLsp.DocumentService
}

type Options struct {
	Config marklint.Config
}

func NewServer(options Options) *Server {
	cfg := options.Config
	if cfg.SupportURL == "" {
		cfg.SupportURL = marklint.DefaultSupportURL
	}
	return &Server{
		docService: iLsp.NewDocumentService(cfg),
	}
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if s.conn == nil {
		s.conn = conn
	}
	slog.Info("received request", "method", req.Method, "id", req.ID)
	reqCount, _ := s.trackRequestCount.LoadOrStore(req.Method, 1)
	if count, ok := reqCount.(int); ok {
		s.trackRequestCount.Store(req.Method, count+1)
	}

	if _, ok := s.cancelMap.Load(req.ID.String()); ok {
		slog.Debug("request was canceled", "id", req.ID)
		s.cancelMap.Delete(req.ID.String())
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		slog.Info("initializing lsp server")

		var initParams lsp.InitializeParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &initParams); err != nil {
				return nil, err
			}
		}

		kind := lsp.TDSKFull
		return lsp.InitializeResult{
			Capabilities: lsp.ServerCapabilities{
				TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{Kind: &kind},
			},
		}, nil

	case "initialized":
		slog.Info("server initialized")
		return nil, nil

	case "textDocument/didOpen":
		var params lsp.DidOpenTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		s.docService.SetDocument(params.TextDocument.URI, params.TextDocument.Text)
		s.publishDiagnostics(ctx, params.TextDocument.URI)
		return nil, nil

	case "textDocument/didChange":
		var params lsp.DidChangeTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		// full sync: the last change event carries the whole document
		if n := len(params.ContentChanges); n > 0 {
			s.docService.SetDocument(params.TextDocument.URI, params.ContentChanges[n-1].Text)
		}
		s.publishDiagnostics(ctx, params.TextDocument.URI)
		return nil, nil

	case "textDocument/didSave":
		var params lsp.DidSaveTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		s.publishDiagnostics(ctx, params.TextDocument.URI)
		return nil, nil

	case "textDocument/didClose":
		var params lsp.DidCloseTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		s.docService.RemoveDocument(params.TextDocument.URI)
		// clear stale diagnostics for the closed document
		s.notifyDiagnostics(ctx, params.TextDocument.URI, []lsp.Diagnostic{})
		return nil, nil

	case "$/cancelRequest":
		var params struct {
			ID jsonrpc2.ID `json:"id"`
		}
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		s.cancelMap.Store(params.ID.String(), struct{}{})
		return nil, nil

	case "shutdown":
		slog.Info("shutting down")
		s.printDebugStats()
		return nil, nil

	case "exit":
		slog.Info("exiting")
		return nil, conn.Close()

	default:
		slog.Debug("ignoring unsupported method", "method", req.Method)
		return nil, nil
	}
}

// publishDiagnostics rechecks the document and pushes the result to the
// client. Errors are logged, never surfaced to the editor: a document that
// fails to check simply keeps its previous diagnostics.
func (s *Server) publishDiagnostics(ctx context.Context, uri lsp.DocumentURI) {
	diagnostics, err := s.docService.Diagnostics(uri)
	if err != nil {
		slog.Error("failed to compute diagnostics", "uri", uri, "error", err)
		return
	}
	s.notifyDiagnostics(ctx, uri, diagnostics)
}

func (s *Server) notifyDiagnostics(ctx context.Context, uri lsp.DocumentURI, diagnostics []lsp.Diagnostic) {
	if s.conn == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []lsp.Diagnostic{}
	}
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	}); err != nil {
		slog.Error("failed to publish diagnostics", "uri", uri, "error", err)
	}
}

func (s *Server) printDebugStats() {
	s.trackRequestCount.Range(func(key, value any) bool {
		slog.Debug("request count", "method", key, "count", value)
		return true
	})
}
