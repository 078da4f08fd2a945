package marklint

import (
	"fmt"
	"strings"
)

// DefaultSupportURL is the stable reference appended to every unused
// directive warning.
const DefaultSupportURL = "https://github.com/mquill/marklint/blob/main/docs/directives.md"

// FormatDirectiveName renders a directive as it appears in source
// (":::tip", "::note", ":tm"). Attributes and labels are never shown, to
// keep warnings compact. An unknown kind is a parser contract violation and
// returns an error rather than a malformed name.
func FormatDirectiveName(d Directive) (string, error) {
	prefix, ok := d.DirectiveKind().Prefix()
	if !ok {
		return "", fmt.Errorf("no marker prefix for directive kind %d (name %q)", d.DirectiveKind(), d.DirectiveName())
	}
	return prefix + d.DirectiveName(), nil
}

func formatEntry(u Unused) (string, error) {
	name, err := FormatDirectiveName(u.Directive)
	if err != nil {
		return "", err
	}
	if !u.Position.Known() {
		return "- " + name, nil
	}
	return fmt.Sprintf("- %s (at line %d, column %d)", name, u.Position.Line, u.Position.Column), nil
}

// formatReport renders the full warning: a title line with the count and the
// file path (relative to the working directory, forward slashes), one entry
// line per unused directive in document order, and a trailing support
// reference.
func formatReport(entries []Unused, path, supportURL string) (string, error) {
	noun := "directive"
	if len(entries) != 1 {
		noun = "directives"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d unused markdown %s in %q:\n", len(entries), noun, DisplayPath(path))
	for _, u := range entries {
		line, err := formatEntry(u)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "An unused directive usually means a typo or an extension that is not enabled, and may render incorrectly. See %s for help.", supportURL)
	return b.String(), nil
}
