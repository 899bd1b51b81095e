package blocktoggle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sokinpui/blocktoggle/cli"
	"github.com/sokinpui/blocktoggle/internal/document"
	"github.com/sokinpui/blocktoggle/internal/env"
	"github.com/sokinpui/blocktoggle/internal/fs"
	"github.com/sokinpui/blocktoggle/internal/nvim"
	"github.com/sokinpui/blocktoggle/internal/patcher"
	"github.com/sokinpui/blocktoggle/internal/preview"
	"github.com/sokinpui/blocktoggle/internal/profile"
	"github.com/sokinpui/blocktoggle/internal/report"
	"github.com/sokinpui/blocktoggle/internal/source"
	"github.com/sokinpui/blocktoggle/internal/state"
	"github.com/sokinpui/blocktoggle/internal/watch"
	"github.com/sokinpui/blocktoggle/model"
)

// maxParallelFiles bounds how many files are patched at once.
const maxParallelFiles = 8

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	log              *zap.Logger
	patcher          *patcher.Patcher
	pathResolver     *fs.PathResolver
	env              *env.Source
	sourceProvider   *source.SourceProvider
	progressCallback ProgressUpdate
	now              func() time.Time

	stateOnce    sync.Once
	stateManager *state.Manager
	stateErr     error
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pathResolver, err := fs.NewPathResolver(cfg.RepoRoot)
	if err != nil {
		return nil, err
	}

	prof, err := loadProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}
	if !cfg.Undo && !prof.HasKind(model.Kind(cfg.Mode)) {
		return nil, fmt.Errorf("%w %q: profile %s supports %v", patcher.ErrUnknownKind, cfg.Mode, prof.Name, prof.Kinds())
	}

	envSource, err := env.Load(pathResolver.Root())
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:          cfg,
		log:          log,
		patcher:      patcher.New(prof, log.Named("patcher")),
		pathResolver: pathResolver,
		env:          envSource,
		now:          time.Now,
	}
	switch {
	case cfg.Stdin:
		a.sourceProvider = source.New(source.Stdin)
	case cfg.Clipboard:
		a.sourceProvider = source.New(source.Clipboard)
	}

	log.Debug("app initialized",
		zap.String("root", pathResolver.Root()),
		zap.String("profile", prof.Name),
		zap.String("mode", cfg.Mode))
	return a, nil
}

// loadProfile accepts a built-in profile name or a path to a YAML profile.
func loadProfile(nameOrPath string) (*profile.Profile, error) {
	if nameOrPath == "" {
		nameOrPath = profile.Unitree.Name
	}
	if p, err := profile.Builtin(nameOrPath); err == nil {
		return p, nil
	}
	if !fs.Exists(nameOrPath) {
		return nil, fmt.Errorf("profile %q is neither built in (%v) nor an existing file", nameOrPath, profile.BuiltinNames())
	}
	return profile.Load(nameOrPath)
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// SetSourceProvider replaces the stream source, e.g. to patch an in-memory
// reader instead of the process's stdin.
func (a *App) SetSourceProvider(sp *source.SourceProvider) {
	a.sourceProvider = sp
}

// Root returns the repository root paths are resolved against.
func (a *App) Root() string {
	return a.pathResolver.Root()
}

// Targets returns the absolute paths of the files this app patches.
func (a *App) Targets() []string {
	files := a.cfg.Files
	if len(files) == 0 {
		files = []string{a.patcher.Profile().DefaultFile}
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = a.pathResolver.Resolve(f)
	}
	return paths
}

func (a *App) history() (*state.Manager, error) {
	a.stateOnce.Do(func() {
		a.stateManager, a.stateErr = state.New(a.pathResolver.Root())
	})
	return a.stateManager, a.stateErr
}

// Execute executes the main application logic based on parsed flags.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	switch {
	case a.cfg.Undo:
		return a.undoLastOperation()
	case a.sourceProvider != nil:
		return a.processStream()
	default:
		return a.processFiles(a.Targets())
	}
}

func (a *App) patchOptions() (patcher.Options, []string) {
	values, warnings := a.directiveValues()
	return patcher.Options{Target: model.Kind(a.cfg.Mode), Directives: values}, warnings
}

// processFiles patches every path independently and records the run.
func (a *App) processFiles(paths []string) (model.Summary, error) {
	opts, warnings := a.patchOptions()
	summary := model.Summary{
		Mode:     opts.Target,
		DryRun:   a.cfg.DryRun,
		Warnings: warnings,
	}

	results := make([]model.FileResult, len(paths))
	errs := make([]error, len(paths))

	total := len(paths)
	var done atomic.Int64
	if a.progressCallback != nil {
		a.progressCallback(0, total)
	}

	var g errgroup.Group
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			results[i], errs[i] = a.patchFile(path, opts)
			if a.progressCallback != nil {
				a.progressCallback(int(done.Add(1)), total)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failures []error
	for i, err := range errs {
		if err != nil {
			summary.Failed = append(summary.Failed, fmt.Sprintf("%s: %v", a.relativize(paths[i]), err))
			failures = append(failures, err)
			continue
		}
		summary.Files = append(summary.Files, results[i])
	}

	if !a.cfg.DryRun {
		a.recordHistory(opts.Target, summary.Files)
		if a.cfg.ReloadNvim {
			summary.Warnings = append(summary.Warnings, a.reloadEditor(summary.Changed())...)
		}
	}
	a.relativizeSummaryPaths(&summary)

	if a.cfg.Report != "" {
		if err := report.Write(a.pathResolver.Resolve(a.cfg.Report), summary, a.now()); err != nil {
			failures = append(failures, err)
			summary.Failed = append(summary.Failed, fmt.Sprintf("%s: %v", a.cfg.Report, err))
		}
	}
	return summary, errors.Join(failures...)
}

// patchFile loads, patches and, if anything changed, rewrites one file.
// A fatal error leaves the file untouched.
func (a *App) patchFile(path string, opts patcher.Options) (model.FileResult, error) {
	doc, err := fs.LoadDocument(path)
	if err != nil {
		return model.FileResult{}, err
	}
	before := doc.String()

	res, err := a.patcher.Patch(doc, opts)
	if err != nil {
		return model.FileResult{}, fmt.Errorf("failed to patch %s: %w", path, err)
	}
	after := doc.String()

	fr := fileResult(path, res)
	a.log.Debug("file patched",
		zap.String("path", path),
		zap.Int("regions", fr.Regions),
		zap.Bool("changed", fr.Changed))

	if !res.Changed {
		return fr, nil
	}
	if a.cfg.DryRun {
		fr.Diff, err = preview.Unified(a.relativize(path), before, after)
		return fr, err
	}

	if !a.cfg.NoBackup {
		if fr.Backup, err = fs.WriteBackup(path, before); err != nil {
			return model.FileResult{}, err
		}
	}
	if err := fs.WriteAtomic(path, after); err != nil {
		return model.FileResult{}, err
	}
	return fr, nil
}

func fileResult(path string, res *patcher.Result) model.FileResult {
	return model.FileResult{
		Path:       path,
		Regions:    len(res.Regions),
		KindCounts: res.KindCounts,
		Directives: res.Directives,
		Changed:    res.Changed,
		Warnings:   res.Warnings(),
	}
}

// processStream patches a document read from stdin or the clipboard.
func (a *App) processStream() (model.Summary, error) {
	opts, warnings := a.patchOptions()
	summary := model.Summary{Mode: opts.Target, DryRun: a.cfg.DryRun, Warnings: warnings}

	content, err := a.sourceProvider.GetContent()
	if err != nil {
		return summary, err
	}
	doc := document.Parse(content)
	res, err := a.patcher.Patch(doc, opts)
	if err != nil {
		return summary, err
	}

	name := "<" + a.sourceProvider.Kind().String() + ">"
	fr := fileResult(name, res)
	if a.cfg.DryRun {
		if fr.Diff, err = preview.Unified(name, content, doc.String()); err != nil {
			return summary, err
		}
	} else if err := a.sourceProvider.PutContent(doc.String()); err != nil {
		return summary, err
	}
	summary.Files = append(summary.Files, fr)
	return summary, nil
}

// directiveValues derives the directive values to write. It returns nil
// when no directive should be touched.
func (a *App) directiveValues() (map[string]string, []string) {
	prof := a.patcher.Profile()
	kind := model.Kind(a.cfg.Mode)
	values := make(map[string]string)
	var warnings []string

	if a.cfg.WriteDirs {
		for _, spec := range prof.Directives {
			if !spec.AppliesTo(kind) {
				continue
			}
			dir := a.directiveDir(spec)
			if !fs.Exists(dir) {
				warnings = append(warnings, fmt.Sprintf("%s not found; skipping %s", dir, spec.Name))
				continue
			}
			values[spec.Name] = dir
		}
	}
	for name, v := range a.cfg.Set {
		values[name] = v
	}

	if len(values) == 0 {
		return nil, warnings
	}
	return values, warnings
}

// directiveDir resolves a directive's directory from, in order, --<flag>-dir,
// --<flag>-rel, the environment, and the profile default.
func (a *App) directiveDir(spec profile.DirectiveSpec) string {
	var dir string
	if v, ok := a.cfg.DirFlags[spec.Flag+"-dir"]; ok && spec.Flag != "" {
		abs, err := filepath.Abs(fs.ExpandHome(v))
		if err != nil {
			abs = v
		}
		dir = abs
	} else {
		rel := spec.DefaultRel
		if v, ok := a.env.Lookup(spec.Name); ok {
			rel = v
		}
		if v, ok := a.cfg.DirFlags[spec.Flag+"-rel"]; ok && spec.Flag != "" {
			rel = v
		}
		dir = a.pathResolver.Resolve(rel)
	}
	return fs.NormalizeNested(dir, spec.Nested, spec.Marker)
}

func (a *App) recordHistory(kind model.Kind, files []model.FileResult) {
	ops := state.CreateOperations(kind, files)
	if len(ops) == 0 {
		return
	}
	m, err := a.history()
	if err == nil {
		err = m.Write(ops)
	}
	if err != nil {
		a.log.Warn("could not record history", zap.Error(err))
	}
}

// reloadEditor refreshes changed files in a running Neovim. Failures are
// reported as warnings.
func (a *App) reloadEditor(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	manager, err := nvim.New(a.cfg.NvimAddr)
	if err != nil {
		return []string{fmt.Sprintf("could not reload editor buffers: %v", err)}
	}
	defer manager.Close()

	_, failed := manager.ReloadFiles(paths, nil)
	var warnings []string
	for _, f := range failed {
		warnings = append(warnings, fmt.Sprintf("could not reload %s in nvim", a.relativize(f)))
	}
	return warnings
}

// undoLastOperation restores the files of the last run from their backups.
func (a *App) undoLastOperation() (model.Summary, error) {
	m, err := a.history()
	if err != nil {
		return model.Summary{}, err
	}
	ops := m.LastOperations()
	if len(ops) == 0 {
		return model.Summary{Message: "No operation to undo."}, nil
	}

	summary := model.Summary{Message: fmt.Sprintf("Undid last %s switch.", ops[0].Kind)}
	for _, op := range ops {
		if err := undoFile(op); err != nil {
			summary.Failed = append(summary.Failed, fmt.Sprintf("%s: %v", op.Path, err))
			continue
		}
		summary.Files = append(summary.Files, model.FileResult{Path: op.Path, Changed: true})
	}

	// An entry whose files could not be restored at all stays undoable.
	if len(summary.Files) == 0 {
		summary.Message = fmt.Sprintf("Could not undo last %s switch.", ops[0].Kind)
	} else if err := m.MarkUndone(); err != nil {
		return summary, err
	}
	a.relativizeSummaryPaths(&summary)
	return summary, nil
}

func undoFile(op state.Operation) error {
	// Core safety check: if the file has been changed, abort the undo for this file.
	currentHash, err := fs.GetFileSHA256(op.Path)
	if err != nil {
		return err
	}
	if currentHash != op.ContentHash {
		return errors.New("file was modified after it was patched")
	}
	original, err := fs.ReadText(op.Backup)
	if err != nil {
		return err
	}
	return fs.WriteAtomic(op.Path, original)
}

// relativize makes an absolute path relative to the working directory when
// the result stays below it.
func (a *App) relativize(p string) string {
	wd, err := os.Getwd()
	if err != nil || !filepath.IsAbs(p) {
		return p
	}
	rel, err := filepath.Rel(wd, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

// relativizeSummaryPaths converts absolute file paths in a summary to be
// relative to the current working directory for cleaner display.
func (a *App) relativizeSummaryPaths(summary *model.Summary) {
	for i := range summary.Files {
		summary.Files[i].Path = a.relativize(summary.Files[i].Path)
		if summary.Files[i].Backup != "" {
			summary.Files[i].Backup = a.relativize(summary.Files[i].Backup)
		}
	}
}

// Watch applies the patch once and again whenever a target file changes,
// until ctx is done. Writes made by the patch itself settle because a second
// run over an already switched file changes nothing.
func (a *App) Watch(ctx context.Context, notify func(model.Summary, error)) error {
	targets := a.Targets()
	w, err := watch.New(targets, watch.DefaultDebounce, a.log.Named("watch"))
	if err != nil {
		return err
	}

	run := func() {
		summary, err := a.Execute()
		if notify != nil {
			notify(summary, err)
		}
	}
	run()
	return w.Run(ctx, run)
}
