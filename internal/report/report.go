// Package report writes a patch summary as markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sokinpui/blocktoggle/internal/fs"
	"github.com/sokinpui/blocktoggle/model"
)

// Markdown renders a summary as a markdown document.
func Markdown(s model.Summary, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# blocktoggle report\n\n")
	fmt.Fprintf(&b, "- Mode: `%s`\n", s.Mode)
	fmt.Fprintf(&b, "- Generated: %s\n", now.UTC().Format(time.RFC3339))
	if s.DryRun {
		b.WriteString("- Dry run: no files were written\n")
	}
	b.WriteString("\n## Files\n\n")

	if len(s.Files) == 0 {
		b.WriteString("No files were processed.\n")
	} else {
		b.WriteString("| File | Changed | Regions | Sub-blocks | Directives |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, f := range s.Files {
			fmt.Fprintf(&b, "| `%s` | %s | %d | %s | %s |\n",
				f.Path, yesNo(f.Changed), f.Regions, kindCounts(f.KindCounts), orDash(strings.Join(f.Directives, ", ")))
		}
	}

	var warnings []string
	for _, f := range s.Files {
		for _, w := range f.Warnings {
			warnings = append(warnings, fmt.Sprintf("`%s`: %s", f.Path, w))
		}
	}
	warnings = append(warnings, s.Warnings...)
	if len(warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if len(s.Failed) > 0 {
		b.WriteString("\n## Failed\n\n")
		for _, f := range s.Failed {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

// HTML converts the markdown report to an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// Write renders the summary and stores it at path, as HTML when path ends
// in .html or .htm and as markdown otherwise.
func Write(path string, s model.Summary, now time.Time) error {
	content := Markdown(s, now)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		html, err := HTML(content)
		if err != nil {
			return err
		}
		content = html
	}
	return fs.WriteAtomic(path, content)
}

func kindCounts(counts map[model.Kind]int) string {
	if len(counts) == 0 {
		return "-"
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
