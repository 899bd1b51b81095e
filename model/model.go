package model

// Kind names one of the mutually exclusive sub-block categories of a profile,
// e.g. "urdf" or "usd".
type Kind string

// Span is an inclusive range of line indexes.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines covered by the span.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Region is an enclosing block bounded by a start signature and the line
// where its delimiter depth returns to zero.
type Region struct {
	Identifier string
	Span       Span
}

// SubBlock is a header/footer pair inside a region, tagged with a kind.
type SubBlock struct {
	Kind      Kind
	Span      Span
	Commented bool
}

// Directive is a single-line `NAME = "value"` assignment outside any region.
type Directive struct {
	Name  string
	Value string
	Tail  string
}

// FileResult holds the outcome of patching one file.
type FileResult struct {
	Path       string
	Backup     string
	Regions    int
	KindCounts map[Kind]int
	Directives []string
	Changed    bool
	Warnings   []string
	// Diff is the unified diff of the change, filled in dry-run mode.
	Diff string
}

// Summary holds the results of an operation for display.
type Summary struct {
	Mode     Kind
	DryRun   bool
	Files    []FileResult
	Failed   []string
	Warnings []string
	Message  string
}

// Changed lists the paths of files whose content was rewritten.
func (s Summary) Changed() []string {
	var paths []string
	for _, f := range s.Files {
		if f.Changed {
			paths = append(paths, f.Path)
		}
	}
	return paths
}
