package ui

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/sokinpui/blocktoggle/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

// --- Summaries ---

// KindCounts renders per-kind counts in a stable order, e.g. "urdf=2 usd=2".
func KindCounts(counts map[model.Kind]int) string {
	parts := make([]string, 0, len(counts))
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func PrintPatchSummary(s model.Summary) {
	Header("\n--- Patch Summary (mode: %s) ---", s.Mode)

	if s.Message != "" {
		Info(s.Message)
	}
	for _, f := range s.Files {
		switch {
		case f.Changed && s.DryRun:
			Success("Would patch: %s", f.Path)
		case f.Changed:
			Success("Patched: %s", f.Path)
		default:
			Info("No changes needed: %s", f.Path)
		}
		if f.Backup != "" {
			Path("backup     : %s", f.Backup)
		}
		Path("regions    : %d", f.Regions)
		Path("sub-blocks : %s", KindCounts(f.KindCounts))
		if len(f.Directives) > 0 {
			Path("directives : %s", strings.Join(f.Directives, ", "))
		}
		for _, w := range f.Warnings {
			Warning("  [warn] %s", w)
		}
	}
	for _, w := range s.Warnings {
		Warning("[warn] %s", w)
	}
	if len(s.Failed) > 0 {
		Error("Failed to process %d file(s):", len(s.Failed))
		for _, f := range s.Failed {
			fmt.Fprintf(os.Stderr, "  - %s\n", f)
		}
	}
}

func PrintRevertSummary(title string, reverted, failed []string) {
	Header("\n--- %s Summary ---", title)
	if len(reverted) == 0 && len(failed) == 0 {
		Info("Nothing to do.")
		return
	}
	if len(reverted) > 0 {
		Success("Successfully processed %d file(s):", len(reverted))
		for _, f := range reverted {
			fmt.Fprintf(os.Stderr, "  - %s\n", f)
		}
	}
	if len(failed) > 0 {
		Error("Failed to process %d file(s):", len(failed))
		for _, f := range failed {
			fmt.Fprintf(os.Stderr, "  - %s\n", f)
		}
	}
}

// --- Progress Bar ---

type ProgressBar struct {
	total   int
	prefix  string
	current int
}

func NewProgressBar(total int, prefix string) *ProgressBar {
	return &ProgressBar{total: total, prefix: prefix}
}

// Set moves the bar to current.
func (p *ProgressBar) Set(current int) {
	p.current = current
	p.draw()
}

func (p *ProgressBar) Finish() {
	fmt.Fprintln(os.Stderr)
}

func (p *ProgressBar) draw() {
	if p.total == 0 {
		return
	}
	const barLength = 40
	percent := float64(p.current) / float64(p.total)
	filledLength := int(percent * barLength)
	bar := strings.Repeat("█", filledLength) + strings.Repeat("-", barLength-filledLength)

	percentStr := fmt.Sprintf("%.1f%%", percent*100)
	countStr := fmt.Sprintf("[%d/%d]", p.current, p.total)

	fmt.Fprintf(os.Stderr, "\r%s |%s| %s %s", p.prefix, bar, countStr, percentStr)
}
