package patcher

import (
	"regexp"
	"strings"

	"github.com/sokinpui/blocktoggle/internal/document"
	"github.com/sokinpui/blocktoggle/model"
)

// valueGroups are the capture groups a directive value may come from: one
// "val" group, or "dval"/"sval" alternatives for double and single quotes.
var valueGroups = []string{"val", "dval", "sval"}

// ParseDirective matches a `NAME = "value"  # tail` line.
func ParseDirective(re *regexp.Regexp, line string) (model.Directive, string, bool) {
	body, _ := document.SplitTerminator(line)
	loc := re.FindStringSubmatchIndex(body)
	if loc == nil {
		return model.Directive{}, "", false
	}
	group := func(name string) (string, bool) {
		i := re.SubexpIndex(name)
		if i < 0 || loc[2*i] < 0 {
			return "", false
		}
		return body[loc[2*i]:loc[2*i+1]], true
	}

	d := model.Directive{}
	d.Name, _ = group("name")
	d.Tail, _ = group("tail")
	for _, g := range valueGroups {
		if v, ok := group(g); ok {
			d.Value = v
			break
		}
	}
	indent, _ := group("indent")
	return d, indent, true
}

// RewriteDirective replaces the value of a directive line, keeping its
// indentation, trailing comment and terminator. ok is false when the line is
// not a directive or its name has no entry in values.
func RewriteDirective(re *regexp.Regexp, line string, values map[string]string) (string, string, bool) {
	d, indent, ok := ParseDirective(re, line)
	if !ok {
		return line, "", false
	}
	value, ok := values[d.Name]
	if !ok {
		return line, "", false
	}
	_, term := document.SplitTerminator(line)
	quote := `"`
	if strings.Contains(value, `"`) && !strings.Contains(value, "'") {
		quote = "'"
	}
	return indent + d.Name + " = " + quote + value + quote + d.Tail + term, d.Name, true
}
