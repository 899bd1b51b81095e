// Package patcher switches kind-tagged sub-blocks inside enclosing regions of
// a document: the requested kind is uncommented and every other kind is
// commented out. It is a line-oriented transform and never parses the host
// language.
package patcher

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/sokinpui/blocktoggle/internal/document"
	"github.com/sokinpui/blocktoggle/internal/profile"
	"github.com/sokinpui/blocktoggle/model"
)

// Options selects what a patch run changes.
type Options struct {
	Target model.Kind
	// Directives maps directive names to new values. Nil leaves all
	// directive lines untouched.
	Directives map[string]string
}

// Result summarizes a patch run.
type Result struct {
	Regions    []model.Region
	KindCounts map[model.Kind]int
	// MissingTarget counts regions without a sub-block of the target kind.
	MissingTarget int
	Directives    []string
	Changed       bool
	NoMatch       *NoMatchWarning
}

// Warnings renders the run's warnings for display.
func (r *Result) Warnings() []string {
	if r.NoMatch == nil {
		return nil
	}
	return []string{r.NoMatch.String()}
}

// Patcher applies a profile to documents.
type Patcher struct {
	profile *profile.Profile
	log     *zap.Logger
}

// New creates a Patcher. A nil logger discards output.
func New(p *profile.Profile, log *zap.Logger) *Patcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Patcher{profile: p, log: log}
}

// Profile returns the profile the patcher applies.
func (p *Patcher) Profile() *profile.Profile {
	return p.profile
}

// Patch switches every region of doc to opts.Target and rewrites directive
// lines. doc is only modified when Patch succeeds.
func (p *Patcher) Patch(doc *document.Document, opts Options) (*Result, error) {
	if !p.profile.HasKind(opts.Target) {
		return nil, fmt.Errorf("%w %q (profile %s supports %v)", ErrUnknownKind, opts.Target, p.profile.Name, p.profile.Kinds())
	}

	lines := slices.Clone(doc.Lines)
	res := &Result{KindCounts: make(map[model.Kind]int)}
	for _, k := range p.profile.Kinds() {
		res.KindCounts[k] = 0
	}

	if err := p.switchRegions(lines, opts.Target, res); err != nil {
		return nil, err
	}
	if opts.Directives != nil && p.profile.Directive != nil {
		p.rewriteDirectives(lines, opts.Directives, res)
	}

	if res.KindCounts[opts.Target] == 0 {
		res.NoMatch = &NoMatchWarning{Kind: opts.Target, Regions: len(res.Regions)}
	}

	before := doc.String()
	doc.Lines = lines
	res.Changed = doc.String() != before
	return res, nil
}

func (p *Patcher) switchRegions(lines []string, target model.Kind, res *Result) error {
	varIdx := p.profile.RegionStart.SubexpIndex("var")
	t := p.profile.Toggler

	i := 0
	for i < len(lines) {
		m := matchBody(p.profile.RegionStart, lines[i])
		if m == nil {
			i++
			continue
		}
		ident := m[varIdx]
		end, err := FindRegionEnd(lines, i, p.profile.Open, p.profile.Close)
		if err != nil {
			var mre *MalformedRegionError
			if errors.As(err, &mre) {
				mre.Identifier = ident
			}
			return err
		}

		region := model.Region{Identifier: ident, Span: model.Span{Start: i, End: end}}
		res.Regions = append(res.Regions, region)

		blocks := FindSubBlocks(lines, region.Span, p.profile)
		hasTarget := false
		for _, b := range blocks {
			res.KindCounts[b.Kind]++
			if b.Kind == target {
				hasTarget = true
				for k := b.Span.Start; k <= b.Span.End; k++ {
					lines[k] = t.Uncomment(lines[k])
				}
			} else {
				for k := b.Span.Start; k <= b.Span.End; k++ {
					lines[k] = t.Comment(lines[k])
				}
			}
		}
		if !hasTarget {
			res.MissingTarget++
		}

		p.log.Debug("region switched",
			zap.String("region", ident),
			zap.Int("start", i+1),
			zap.Int("end", end+1),
			zap.Int("subblocks", len(blocks)),
			zap.Bool("has_target", hasTarget))

		i = end + 1
	}
	return nil
}

func (p *Patcher) rewriteDirectives(lines []string, values map[string]string, res *Result) {
	inRegion := func(i int) bool {
		for _, r := range res.Regions {
			if i >= r.Span.Start && i <= r.Span.End {
				return true
			}
		}
		return false
	}

	seen := make(map[string]bool)
	for i, line := range lines {
		if inRegion(i) {
			continue
		}
		out, name, ok := RewriteDirective(p.profile.Directive, line, values)
		if !ok {
			continue
		}
		if out != line {
			p.log.Debug("directive rewritten", zap.String("name", name), zap.Int("line", i+1))
		}
		lines[i] = out
		seen[name] = true
	}
	res.Directives = slices.Sorted(maps.Keys(seen))
}
