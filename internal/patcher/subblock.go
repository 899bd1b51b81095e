package patcher

import (
	"regexp"

	"github.com/sokinpui/blocktoggle/internal/document"
	"github.com/sokinpui/blocktoggle/internal/profile"
	"github.com/sokinpui/blocktoggle/model"
)

// matchBody matches re against a line without its terminator.
func matchBody(re *regexp.Regexp, line string) []string {
	body, _ := document.SplitTerminator(line)
	return re.FindStringSubmatch(body)
}

// findFooter returns the first footer line after header, or -1 if there is
// none up to and including limit.
func findFooter(lines []string, header, limit int, footer *regexp.Regexp) int {
	for j := header + 1; j <= limit && j < len(lines); j++ {
		if matchBody(footer, lines[j]) != nil {
			return j
		}
	}
	return -1
}

// FindSubBlocks returns at most one sub-block per kind inside region, in the
// order their headers appear. Only the first header of each kind that has a
// footer inside the region is kept; a header without a footer is treated as
// plain text.
func FindSubBlocks(lines []string, region model.Span, p *profile.Profile) []model.SubBlock {
	var blocks []model.SubBlock
	seen := make(map[model.Kind]bool)
	kindIdx := p.Header.SubexpIndex("kind")

	i := region.Start
	for i <= region.End && i < len(lines) {
		m := matchBody(p.Header, lines[i])
		if m == nil {
			i++
			continue
		}
		j := findFooter(lines, i, region.End, p.Footer)
		if j < 0 {
			i++
			continue
		}
		if kind, ok := p.KindOf(m[kindIdx]); ok && !seen[kind] {
			seen[kind] = true
			blocks = append(blocks, model.SubBlock{
				Kind:      kind,
				Span:      model.Span{Start: i, End: j},
				Commented: p.Toggler.IsCommented(lines[i]),
			})
		}
		i = j + 1
	}
	return blocks
}
