package blocktoggle

import (
	"fmt"

	"github.com/sokinpui/blocktoggle/cli"
	"github.com/sokinpui/blocktoggle/internal/document"
	"github.com/sokinpui/blocktoggle/internal/patcher"
	"github.com/sokinpui/blocktoggle/model"
)

// Options for using blocktoggle as a library.
type Options struct {
	// Kind to enable, e.g. "urdf" or "usd".
	Mode string
	// Built-in profile name or path to a YAML profile. Defaults to "unitree".
	Profile string
	// Repo root relative paths are resolved against. Defaults to the nearest
	// parent of the working directory containing pixi.toml.
	RepoRoot string
	// Also rewrite the profile's directory directives.
	WriteDirs bool
	// Explicit directive values, keyed by directive name.
	Set      map[string]string
	NoBackup bool
	DryRun   bool
}

func (o Options) config(files ...string) *cli.Config {
	set := o.Set
	if set == nil {
		set = map[string]string{}
	}
	return &cli.Config{
		Mode:      o.Mode,
		Files:     files,
		RepoRoot:  o.RepoRoot,
		Profile:   o.Profile,
		WriteDirs: o.WriteDirs,
		DirFlags:  map[string]string{},
		Set:       set,
		NoBackup:  o.NoBackup,
		DryRun:    o.DryRun,
	}
}

// Apply switches the file at path to opts.Mode and returns what was done.
func Apply(path string, opts Options) (model.FileResult, error) {
	cfg := opts.config(path)
	if err := cfg.Validate(); err != nil {
		return model.FileResult{}, err
	}
	app, err := New(cfg, nil)
	if err != nil {
		return model.FileResult{}, fmt.Errorf("failed to initialize blocktoggle: %w", err)
	}
	summary, err := app.Execute()
	if err != nil {
		return model.FileResult{}, err
	}
	if len(summary.Files) != 1 {
		return model.FileResult{}, fmt.Errorf("no result for %s", path)
	}
	return summary.Files[0], nil
}

// ApplyString switches an in-memory document to opts.Mode. Only the
// explicit opts.Set directive values are written.
func ApplyString(content string, opts Options) (string, model.FileResult, error) {
	prof, err := loadProfile(opts.Profile)
	if err != nil {
		return "", model.FileResult{}, err
	}
	doc := document.Parse(content)
	res, err := patcher.New(prof, nil).Patch(doc, patcher.Options{
		Target:     model.Kind(opts.Mode),
		Directives: opts.Set,
	})
	if err != nil {
		return "", model.FileResult{}, err
	}
	return doc.String(), fileResult("", res), nil
}
