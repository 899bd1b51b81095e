// Package toggle comments and uncomments single lines with a line-comment
// marker placed right after the indentation.
package toggle

import (
	"strings"

	"github.com/sokinpui/blocktoggle/internal/document"
)

// DefaultMarker is the marker used when a profile does not set one.
const DefaultMarker = "#"

// Toggler applies a fixed marker. The zero value uses DefaultMarker.
type Toggler struct {
	Marker string
}

// New returns a Toggler for marker, falling back to DefaultMarker.
func New(marker string) Toggler {
	if marker == "" {
		marker = DefaultMarker
	}
	return Toggler{Marker: marker}
}

func (t Toggler) marker() string {
	if t.Marker == "" {
		return DefaultMarker
	}
	return t.Marker
}

// split breaks a line into indentation, content and terminator.
func split(line string) (indent, content, term string) {
	body, term := document.SplitTerminator(line)
	content = strings.TrimLeft(body, " \t")
	indent = body[:len(body)-len(content)]
	return indent, content, term
}

// IsBlank reports whether the line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// IsCommented reports whether the line's content starts with the marker.
func (t Toggler) IsCommented(line string) bool {
	_, content, _ := split(line)
	return strings.HasPrefix(content, t.marker())
}

// Comment turns "<indent><content>" into "<indent><marker> <content>".
// Blank and already commented lines are returned unchanged.
func (t Toggler) Comment(line string) string {
	if IsBlank(line) {
		return line
	}
	indent, content, term := split(line)
	if strings.HasPrefix(content, t.marker()) {
		return line
	}
	return indent + t.marker() + " " + content + term
}

// Uncomment strips one marker and at most one following space from right
// after the indentation. Lines without that marker are returned unchanged.
func (t Toggler) Uncomment(line string) string {
	if IsBlank(line) {
		return line
	}
	indent, content, term := split(line)
	rest, ok := strings.CutPrefix(content, t.marker())
	if !ok {
		return line
	}
	rest = strings.TrimPrefix(rest, " ")
	return indent + rest + term
}
