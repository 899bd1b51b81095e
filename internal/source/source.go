package source

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// Kind selects where a document is read from and written to.
type Kind int

const (
	File Kind = iota
	Stdin
	Clipboard
)

func (k Kind) String() string {
	switch k {
	case Stdin:
		return "stdin"
	case Clipboard:
		return "clipboard"
	default:
		return "file"
	}
}

// SourceProvider reads a document from stdin or the clipboard and writes the
// patched result back to stdout or the clipboard. File documents go through
// the fs package instead.
type SourceProvider struct {
	kind Kind
	in   io.Reader
	out  io.Writer
}

// New creates a SourceProvider for kind using the process's stdin and stdout.
func New(kind Kind) *SourceProvider {
	return &SourceProvider{kind: kind, in: os.Stdin, out: os.Stdout}
}

// NewWithStreams creates a stdin-style provider over arbitrary streams.
func NewWithStreams(in io.Reader, out io.Writer) *SourceProvider {
	return &SourceProvider{kind: Stdin, in: in, out: out}
}

// Kind returns the provider's source kind.
func (sp *SourceProvider) Kind() Kind {
	return sp.kind
}

// GetContent retrieves the document text.
func (sp *SourceProvider) GetContent() (string, error) {
	switch sp.kind {
	case Stdin:
		content, err := io.ReadAll(sp.in)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	case Clipboard:
		content, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("failed to read from clipboard: %w", err)
		}
		return content, nil
	default:
		return "", fmt.Errorf("source %s has no stream content", sp.kind)
	}
}

// PutContent emits the patched document text.
func (sp *SourceProvider) PutContent(content string) error {
	switch sp.kind {
	case Stdin:
		if _, err := io.WriteString(sp.out, content); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	case Clipboard:
		if err := clipboard.WriteAll(content); err != nil {
			return fmt.Errorf("failed to write to clipboard: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("source %s has no stream content", sp.kind)
	}
}
