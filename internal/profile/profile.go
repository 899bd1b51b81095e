// Package profile describes the shape of the blocks blocktoggle patches: the
// region start signature, the kind-tagged sub-block headers, the footer, the
// directive assignments and the comment marker.
//
// A Profile is built once and shared read-only by the patcher.
package profile

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sokinpui/blocktoggle/internal/toggle"
	"github.com/sokinpui/blocktoggle/model"
)

// DirectiveSpec describes how a directive's value is derived when it is not
// given explicitly.
type DirectiveSpec struct {
	Name string `yaml:"name"`
	// Flag is the long flag stem used for "--<flag>-dir" and "--<flag>-rel".
	Flag string `yaml:"flag"`
	// DefaultRel is the default path relative to the repo root.
	DefaultRel string `yaml:"default_rel"`
	// Kinds restricts patching to these target kinds. Empty means always.
	Kinds []model.Kind `yaml:"kinds"`
	// Nested and Marker describe a clone layout like dir/dir/package.xml.
	Nested string `yaml:"nested"`
	Marker string `yaml:"marker"`
}

// AppliesTo reports whether the directive is patched for the target kind.
func (d DirectiveSpec) AppliesTo(kind model.Kind) bool {
	return len(d.Kinds) == 0 || slices.Contains(d.Kinds, kind)
}

// Spec is the serialized form of a Profile.
type Spec struct {
	Name        string                `yaml:"name"`
	DefaultFile string                `yaml:"default_file"`
	Marker      string                `yaml:"marker"`
	Open        string                `yaml:"open"`
	Close       string                `yaml:"close"`
	RegionStart string                `yaml:"region_start"`
	Header      string                `yaml:"header"`
	Footer      string                `yaml:"footer"`
	Directive   string                `yaml:"directive"`
	Kinds       map[string]model.Kind `yaml:"kinds"`
	Directives  []DirectiveSpec       `yaml:"directives"`
}

// Profile is the compiled, immutable form of a Spec.
type Profile struct {
	Name        string
	DefaultFile string
	Toggler     toggle.Toggler
	Open        rune
	Close       rune
	RegionStart *regexp.Regexp
	Header      *regexp.Regexp
	Footer      *regexp.Regexp
	Directive   *regexp.Regexp
	Directives  []DirectiveSpec

	tags  map[string]model.Kind
	kinds []model.Kind
}

// Compile validates a Spec and compiles its patterns.
func Compile(s Spec) (*Profile, error) {
	p := &Profile{
		Name:        s.Name,
		DefaultFile: s.DefaultFile,
		Toggler:     toggle.New(s.Marker),
		Directives:  s.Directives,
		tags:        make(map[string]model.Kind, len(s.Kinds)),
	}

	openR, closeR := []rune(s.Open), []rune(s.Close)
	if len(openR) != 1 || len(closeR) != 1 || openR[0] == closeR[0] {
		return nil, fmt.Errorf("profile %q: open and close must be two distinct single characters", s.Name)
	}
	p.Open, p.Close = openR[0], closeR[0]

	var err error
	if p.RegionStart, err = compile(s.Name, "region_start", s.RegionStart, "var"); err != nil {
		return nil, err
	}
	if p.Header, err = compile(s.Name, "header", s.Header, "kind"); err != nil {
		return nil, err
	}
	if p.Footer, err = compile(s.Name, "footer", s.Footer); err != nil {
		return nil, err
	}
	if s.Directive != "" {
		if p.Directive, err = compile(s.Name, "directive", s.Directive, "indent", "name", "tail"); err != nil {
			return nil, err
		}
		if p.Directive.SubexpIndex("val") < 0 && (p.Directive.SubexpIndex("dval") < 0 || p.Directive.SubexpIndex("sval") < 0) {
			return nil, fmt.Errorf("profile %q: directive pattern needs a (?P<val>...) group or both (?P<dval>...) and (?P<sval>...)", s.Name)
		}
	}

	if len(s.Kinds) < 2 {
		return nil, fmt.Errorf("profile %q: at least two kinds are required", s.Name)
	}
	seen := make(map[model.Kind]bool)
	for tag, kind := range s.Kinds {
		if kind == "" {
			return nil, fmt.Errorf("profile %q: tag %q maps to an empty kind", s.Name, tag)
		}
		p.tags[tag] = kind
		if !seen[kind] {
			seen[kind] = true
			p.kinds = append(p.kinds, kind)
		}
	}
	sort.Slice(p.kinds, func(i, j int) bool { return p.kinds[i] < p.kinds[j] })

	return p, nil
}

func compile(profile, field, expr string, groups ...string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("profile %q: %s pattern is required", profile, field)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("profile %q: invalid %s pattern: %w", profile, field, err)
	}
	for _, g := range groups {
		if re.SubexpIndex(g) < 0 {
			return nil, fmt.Errorf("profile %q: %s pattern lacks a (?P<%s>...) group", profile, field, g)
		}
	}
	return re, nil
}

// Load reads a YAML profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return Compile(s)
}

// Kinds returns the profile's kinds in sorted order.
func (p *Profile) Kinds() []model.Kind {
	return slices.Clone(p.kinds)
}

// HasKind reports whether k is one of the profile's kinds.
func (p *Profile) HasKind(k model.Kind) bool {
	return slices.Contains(p.kinds, k)
}

// KindOf maps a header's kind tag to its kind.
func (p *Profile) KindOf(tag string) (model.Kind, bool) {
	k, ok := p.tags[tag]
	return k, ok
}

// Lookup returns the spec for a directive name.
func (p *Profile) Lookup(name string) (DirectiveSpec, bool) {
	for _, d := range p.Directives {
		if d.Name == name {
			return d, true
		}
	}
	return DirectiveSpec{}, false
}
