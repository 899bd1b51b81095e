// Package document holds a text file as an ordered, mutable list of lines.
// Every line keeps its own terminator so that String reproduces the input
// byte for byte.
package document

import "strings"

// Document is the line store for a single patch run.
type Document struct {
	Lines []string
}

// Parse splits text into lines, keeping "\n" or "\r\n" on each line. The
// final line has no terminator if the text does not end with a newline.
func Parse(text string) *Document {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return &Document{Lines: lines}
}

// Len returns the number of lines.
func (d *Document) Len() int {
	return len(d.Lines)
}

// String joins the lines back into text.
func (d *Document) String() string {
	var b strings.Builder
	n := 0
	for _, l := range d.Lines {
		n += len(l)
	}
	b.Grow(n)
	for _, l := range d.Lines {
		b.WriteString(l)
	}
	return b.String()
}

// SplitTerminator separates a line into its body and its terminator.
func SplitTerminator(line string) (body, term string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
