package marklint

import "log/slog"

// DefaultAdmonitions lists the container directive names the admonition
// renderer claims out of the box.
var DefaultAdmonitions = []string{"note", "tip", "info", "warning", "danger"}

// AdmonitionMeta is the rendering metadata attached to a claimed directive.
// Its presence is what marks the directive as handled for later stages.
type AdmonitionMeta struct {
	Type string
}

// Admonitions is the upstream stage that claims well-known container
// directives for admonition rendering by attaching [AdmonitionMeta].
type Admonitions struct {
	names map[string]struct{}
}

// NewAdmonitions builds the handler for the default names plus any extras
// (typically from config).
func NewAdmonitions(extra ...string) *Admonitions {
	names := make(map[string]struct{}, len(DefaultAdmonitions)+len(extra))
	for _, n := range DefaultAdmonitions {
		names[n] = struct{}{}
	}
	for _, n := range extra {
		names[n] = struct{}{}
	}
	return &Admonitions{names: names}
}

// Process marks every recognized container directive in the document as
// handled. Directives already claimed by another stage are left alone.
// Returns the number of directives marked.
func (a *Admonitions) Process(doc *Document) int {
	marked := 0
	walkDirectives(doc.Root, func(d Directive) {
		if d.DirectiveKind() != KindContainer || d.HandledBy() != nil {
			return
		}
		if _, ok := a.names[d.DirectiveName()]; !ok {
			return
		}
		d.MarkHandled(&AdmonitionMeta{Type: d.DirectiveName()})
		marked++
	})
	if marked > 0 {
		slog.Debug("claimed admonition directives", "count", marked, "source", doc.Metadata.Source)
	}
	return marked
}
