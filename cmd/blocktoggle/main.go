package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/sokinpui/blocktoggle/blocktoggle"
	"github.com/sokinpui/blocktoggle/cli"
	"github.com/sokinpui/blocktoggle/internal/logging"
	"github.com/sokinpui/blocktoggle/internal/tui"
	"github.com/sokinpui/blocktoggle/internal/ui"
	"github.com/sokinpui/blocktoggle/model"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := cli.ParseFlags()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		ui.Error("Error: %v", err)
		return 1
	}

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	app, err := blocktoggle.New(cfg, log)
	if err != nil {
		ui.Error("Failed to initialize application: %v", err)
		return 1
	}

	if cfg.Watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ui.Info("Watching %d file(s) for changes, press Ctrl+C to stop.", len(app.Targets()))
		err := app.Watch(ctx, func(s model.Summary, err error) {
			ui.Header("\n[%s]", time.Now().Format(time.TimeOnly))
			printSummary(cfg, s, err)
		})
		if err != nil {
			ui.Error("Error: %v", err)
			return 1
		}
		return 0
	}

	// Output that goes to stdout or a pipe should not run the TUI.
	if cfg.NoAnimation || cfg.DryRun || cfg.StreamSource() || !isatty.IsTerminal(os.Stdout.Fd()) {
		var bar *ui.ProgressBar
		if !cfg.StreamSource() && isatty.IsTerminal(os.Stderr.Fd()) && len(app.Targets()) > 1 {
			bar = ui.NewProgressBar(len(app.Targets()), "Patching")
			app.SetProgressCallback(func(current, _ int) { bar.Set(current) })
		}
		summary, err := app.Execute()
		if bar != nil {
			bar.Finish()
		}
		if err != nil && len(summary.Files) == 0 && len(summary.Failed) == 0 {
			var detailed *blocktoggle.DetailedError
			if errors.As(err, &detailed) {
				fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
			}
			ui.Error("Error: %v", err)
			return 1
		}
		printSummary(cfg, summary, err)
		if err != nil {
			return 1
		}
		return 0
	}

	m := tui.New(app)
	p := tea.NewProgram(m)
	m.SetProgram(p)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}
	if m.Err() != nil {
		return 1
	}
	return 0
}

func printSummary(cfg *cli.Config, s model.Summary, err error) {
	for _, f := range s.Files {
		if f.Diff != "" {
			fmt.Print(f.Diff)
		}
	}
	if cfg.Undo {
		ui.PrintRevertSummary("Undo", s.Changed(), s.Failed)
		if s.Message != "" {
			ui.Info(s.Message)
		}
		return
	}
	ui.PrintPatchSummary(s)
	if err != nil && len(s.Failed) == 0 {
		ui.Error("Error: %v", err)
	}
}
