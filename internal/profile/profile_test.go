package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/blocktoggle/model"
)

func TestBuiltinUnitree(t *testing.T) {
	p, err := Builtin("unitree")
	require.NoError(t, err)

	assert.Equal(t, []model.Kind{KindURDF, KindUSD}, p.Kinds())
	assert.True(t, p.HasKind(KindUSD))
	assert.False(t, p.HasKind("mjcf"))
	assert.Equal(t, '(', p.Open)
	assert.Equal(t, ')', p.Close)

	k, ok := p.KindOf("UnitreeUsdFileCfg")
	assert.True(t, ok)
	assert.Equal(t, KindUSD, k)

	ros, ok := p.Lookup("UNITREE_ROS_DIR")
	require.True(t, ok)
	assert.True(t, ros.AppliesTo(KindURDF))
	assert.True(t, ros.AppliesTo(KindUSD))

	mdl, ok := p.Lookup("UNITREE_MODEL_DIR")
	require.True(t, ok)
	assert.False(t, mdl.AppliesTo(KindURDF))
	assert.True(t, mdl.AppliesTo(KindUSD))
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("nope")
	assert.Error(t, err)
	assert.Equal(t, []string{"unitree"}, BuiltinNames())
}

func TestUnitreePatterns(t *testing.T) {
	p, err := Builtin("unitree")
	require.NoError(t, err)

	assert.True(t, p.RegionStart.MatchString("GO2_CFG = UnitreeArticulationCfg("))
	assert.True(t, p.RegionStart.MatchString("H1_2_CFG=UnitreeArticulationCfg(  "))
	assert.False(t, p.RegionStart.MatchString("go2_cfg = UnitreeArticulationCfg("))
	assert.False(t, p.RegionStart.MatchString("GO2_CFG = UnitreeArticulationCfg(spawn=x)"))

	assert.True(t, p.Header.MatchString("    spawn=UnitreeUrdfFileCfg("))
	assert.True(t, p.Header.MatchString("    #   spawn = UnitreeUsdFileCfg("))
	assert.False(t, p.Header.MatchString("    spawn=ArticulationCfg("))

	assert.True(t, p.Footer.MatchString("    ),"))
	assert.True(t, p.Footer.MatchString("    # ) ,"))
	assert.False(t, p.Footer.MatchString(")"))
}

func TestCompileErrors(t *testing.T) {
	valid := func() Spec {
		s := Unitree
		s.Kinds = map[string]model.Kind{"A": "a", "B": "b"}
		return s
	}

	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"same delimiters", func(s *Spec) { s.Close = "(" }},
		{"multi char delimiter", func(s *Spec) { s.Open = "((" }},
		{"missing region start", func(s *Spec) { s.RegionStart = "" }},
		{"region start without var", func(s *Spec) { s.RegionStart = `^X\($` }},
		{"header without kind", func(s *Spec) { s.Header = `^spawn\($` }},
		{"invalid footer", func(s *Spec) { s.Footer = `(` }},
		{"directive without val", func(s *Spec) { s.Directive = `^(?P<indent>)(?P<name>X)(?P<tail>)$` }},
		{"single kind", func(s *Spec) { s.Kinds = map[string]model.Kind{"A": "a"} }},
		{"empty kind", func(s *Spec) { s.Kinds = map[string]model.Kind{"A": "a", "B": ""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			_, err := Compile(s)
			assert.Error(t, err)
		})
	}

	_, err := Compile(valid())
	assert.NoError(t, err)
}

func TestCompile_OptionalDirective(t *testing.T) {
	s := Unitree
	s.Directive = ""
	p, err := Compile(s)
	require.NoError(t, err)
	assert.Nil(t, p.Directive)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpp.yaml")
	content := `name: cpp-backend
default_file: src/backend.cpp
marker: "//"
open: "{"
close: "}"
region_start: '^(?P<indent>\s*)backend (?P<var>\w+) \{$'
header: '^\s*(//\s*)?use (?P<kind>\w+) \{$'
footer: '^\s*(//\s*)?\}$'
kinds:
  cuda: gpu
  openmp: cpu
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cpp-backend", p.Name)
	assert.Equal(t, "src/backend.cpp", p.DefaultFile)
	assert.Equal(t, "//", p.Toggler.Marker)
	assert.Equal(t, '{', p.Open)
	assert.Equal(t, []model.Kind{"cpu", "gpu"}, p.Kinds())
	assert.Nil(t, p.Directive)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kinds: [unclosed"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
