package marklint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

// badKindDirective simulates a parser handing over a directive kind outside
// the known set.
type badKindDirective struct {
	*LeafDirective
}

func (d *badKindDirective) DirectiveKind() Kind { return Kind(42) }

func TestFormatDirectiveName(t *testing.T) {
	tests := []struct {
		name string
		dir  Directive
		want string
	}{
		{name: "container", dir: NewContainerDirective("tip", -1), want: ":::tip"},
		{name: "leaf", dir: NewLeafDirective("note", -1), want: "::note"},
		{name: "text", dir: NewInlineDirective("tm", -1), want: ":tm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDirectiveName(tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDirectiveNameUnknownKind(t *testing.T) {
	_, err := FormatDirectiveName(&badKindDirective{NewLeafDirective("x", -1)})
	assert.Error(t, err)
}

func TestFormatEntry(t *testing.T) {
	withPos, err := formatEntry(Unused{
		Directive: NewLeafDirective("note", -1),
		Position:  Position{Line: 3, Column: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "- ::note (at line 3, column 1)", withPos)

	noPos, err := formatEntry(Unused{Directive: NewLeafDirective("note", -1)})
	require.NoError(t, err)
	assert.Equal(t, "- ::note", noPos)
}

func TestFormatReport(t *testing.T) {
	tests := []struct {
		name       string
		entries    []Unused
		goldenFile string
	}{
		{
			name: "single entry",
			entries: []Unused{
				{Directive: NewLeafDirective("note", -1), Position: Position{Line: 3, Column: 1}},
			},
			goldenFile: "report/single.golden",
		},
		{
			name: "multiple entries with and without positions",
			entries: []Unused{
				{Directive: NewLeafDirective("note", -1), Position: Position{Line: 3, Column: 1}},
				{Directive: NewContainerDirective("tip", -1), Position: Position{Line: 8, Column: 1}},
				{Directive: NewInlineDirective("tm", -1)},
			},
			goldenFile: "report/multiple.golden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := formatReport(tt.entries, "docs/intro.md", DefaultSupportURL)
			require.NoError(t, err)
			golden.Assert(t, msg, tt.goldenFile)
		})
	}
}

func TestFormatReportPropagatesContractViolation(t *testing.T) {
	entries := []Unused{{Directive: &badKindDirective{NewLeafDirective("x", -1)}}}
	_, err := formatReport(entries, "docs/intro.md", DefaultSupportURL)
	assert.Error(t, err)
}
