package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	Mode     string
	Files    []string
	RepoRoot string
	Profile  string

	WriteDirs bool
	// DirFlags holds the explicitly given --<name>-dir / --<name>-rel values,
	// keyed by flag name.
	DirFlags map[string]string
	Set      map[string]string

	NoBackup bool
	DryRun   bool

	Stdin     bool
	Clipboard bool

	Undo bool

	Watch      bool
	ReloadNvim bool
	NvimAddr   string

	Report      string
	NoAnimation bool
	Verbose     bool
}

// dirFlags are the directive path flags known to the built-in profile.
var dirFlags = []struct{ name, usage string }{
	{"ros-dir", "Absolute path to unitree_ros (overrides --ros-rel)."},
	{"ros-rel", "Path to unitree_ros relative to the repo root (default: profile default)."},
	{"model-dir", "Absolute path to unitree_model (overrides --model-rel)."},
	{"model-rel", "Path to unitree_model relative to the repo root (default: profile default)."},
}

// ParseFlags parses the process arguments.
func ParseFlags() (*Config, error) {
	return Parse(os.Args[1:])
}

// Parse defines and parses command-line flags using pflag.
func Parse(args []string) (*Config, error) {
	cfg := &Config{DirFlags: map[string]string{}}
	fs := pflag.NewFlagSet("blocktoggle", pflag.ContinueOnError)
	// Errors are returned to the caller; only usage is printed here.
	fs.SetOutput(io.Discard)

	fs.StringVarP(&cfg.Mode, "mode", "m", "", "Target kind to enable, e.g. 'urdf' or 'usd'.")
	fs.StringSliceVarP(&cfg.Files, "file", "f", nil, "File to patch, relative to the repo root unless absolute (repeatable; default: profile default).")
	fs.StringVar(&cfg.RepoRoot, "repo-root", "", "Repo root (default: nearest parent containing pixi.toml).")
	fs.StringVarP(&cfg.Profile, "profile", "p", "unitree", "Built-in profile name or path to a YAML profile.")

	fs.BoolVar(&cfg.WriteDirs, "write-dirs", false, "Also patch the directory directives (e.g. UNITREE_ROS_DIR / UNITREE_MODEL_DIR).")
	dirValues := make(map[string]*string, len(dirFlags))
	for _, f := range dirFlags {
		dirValues[f.name] = fs.String(f.name, "", f.usage)
	}
	var dirByFlag, relByFlag map[string]string
	fs.StringToStringVar(&dirByFlag, "dir", nil, "Absolute directory for a profile directive flag as FLAG=PATH, e.g. ros=/opt/unitree_ros (repeatable).")
	fs.StringToStringVar(&relByFlag, "rel", nil, "Repo-relative directory for a profile directive flag as FLAG=PATH (repeatable).")
	fs.StringToStringVar(&cfg.Set, "set", nil, "Directive value as NAME=VALUE (repeatable; implies --write-dirs for NAME).")

	fs.BoolVar(&cfg.NoBackup, "no-backup", false, "Do not write a .bak backup file.")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Print a unified diff of the changes without writing anything.")

	fs.BoolVar(&cfg.Stdin, "stdin", false, "Read the document from stdin and write the result to stdout.")
	fs.BoolVar(&cfg.Clipboard, "clipboard", false, "Patch the clipboard content in place.")

	fs.BoolVarP(&cfg.Undo, "undo", "u", false, "Restore the files changed by the last run from their backups.")

	fs.BoolVarP(&cfg.Watch, "watch", "w", false, "Keep running and re-apply the patch whenever a target file changes.")
	fs.BoolVar(&cfg.ReloadNvim, "reload-nvim", false, "Reload patched files in the running Neovim ($NVIM_LISTEN_ADDRESS).")
	fs.StringVar(&cfg.NvimAddr, "nvim-addr", "", "Neovim listen address (default: $NVIM_LISTEN_ADDRESS).")

	fs.StringVar(&cfg.Report, "report", "", "Write a summary report to this path (.md or .html).")
	fs.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable the interactive summary and print plain output.")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print debug logs to stderr.")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: blocktoggle --mode <kind> [flags]")
		fmt.Fprintln(os.Stderr, "\nSwitch mutually exclusive config blocks by commenting one out and uncommenting the other.")
		fmt.Fprintln(os.Stderr, "\nExample: blocktoggle --mode urdf --write-dirs --ros-rel unitree_ros")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Files = append(cfg.Files, fs.Args()...)

	// Generic --dir/--rel entries serve YAML profiles; the named flags win.
	for flag, v := range dirByFlag {
		cfg.DirFlags[flag+"-dir"] = v
	}
	for flag, v := range relByFlag {
		cfg.DirFlags[flag+"-rel"] = v
	}
	for name, v := range dirValues {
		if fs.Changed(name) {
			cfg.DirFlags[name] = *v
		}
	}
	if cfg.Set == nil {
		cfg.Set = map[string]string{}
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks flag combinations.
func (c *Config) Validate() error {
	switch {
	case c.Stdin && c.Clipboard:
		return errors.New("--stdin and --clipboard are mutually exclusive")
	case c.Undo && (c.Watch || c.DryRun || c.StreamSource()):
		return errors.New("--undo cannot be combined with --watch, --dry-run, --stdin or --clipboard")
	case c.Watch && (c.Stdin || c.Clipboard):
		return errors.New("--watch only works on files")
	case (c.Stdin || c.Clipboard) && len(c.Files) > 0:
		return errors.New("--stdin/--clipboard cannot be combined with --file")
	case !c.Undo && c.Mode == "":
		return errors.New("--mode is required")
	}
	return nil
}

// StreamSource reports whether the document comes from stdin or the clipboard.
func (c *Config) StreamSource() bool {
	return c.Stdin || c.Clipboard
}
