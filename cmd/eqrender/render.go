package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/g5becks/eqrender/internal/config"
	"github.com/g5becks/eqrender/internal/equation"
	"github.com/g5becks/eqrender/internal/render"
	"github.com/g5becks/eqrender/internal/report"
	"github.com/g5becks/eqrender/internal/ui"
	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
)

func newRenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render the active equations of a CSV or Markdown file to SVG",
		ArgsUsage: "<source>",
		Flags: []cli.Flag{
			configFlag(),
			sourceFormatFlag(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
			&cli.StringFlag{Name: "color", Usage: "Equation colour as RRGGBB hex"},
			&cli.BoolFlag{Name: "delete-intermediates", Usage: "Remove .tex and .pdf files after rendering"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Usage: "Maximum equations rendered at once (0 = one per CPU)"},
			&cli.StringFlag{Name: "engine", Usage: "LaTeX engine executable"},
			&cli.StringFlag{Name: "rasterizer", Usage: "PDF to SVG converter executable"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Print a line per equation instead of a progress bar"},
			&cli.BoolFlag{Name: "no-report", Usage: "Do not write report.json"},
			&cli.BoolFlag{Name: "strict", Usage: "Exit with an error when any equation fails"},
		},
		Action: renderAction,
	}
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: eqrender render <source>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if overrideErr := applyRenderOverrides(cmd, cfg); overrideErr != nil {
		return overrideErr
	}

	loaded, err := loadSource(ctx, cmd.Args().First(), cmd.String("source-format"))
	if err != nil {
		return err
	}

	active := len(equation.Filter(loaded.equations, true))
	if active == 0 {
		fmt.Fprintf(os.Stderr, "no active equations in %s\n", loaded.doc.Location)
		return nil
	}

	if !cmd.Bool("yes") && isTerminal(os.Stdin) {
		prompt := fmt.Sprintf("Render %d equation(s) from %s into %s?", active, loaded.doc.Location, cfg.Output)
		if !ui.Confirm(os.Stdin, os.Stderr, prompt) {
			fmt.Fprintln(os.Stderr, render.AbortedMessage)
			return nil
		}
	}

	verbose := cmd.Bool("verbose")
	printer := ui.NewRenderPrinter(verbose)

	opts := render.Options{
		OutputDir:           cfg.Output,
		Color:               cfg.Color,
		DeleteIntermediates: cfg.DeleteIntermediates,
		Parallel:            cfg.Parallel,
		OnEvent:             printer.HandleEvent,
	}
	if !verbose && isTerminal(os.Stderr) {
		opts.Progress = ui.NewTrackerProgress(ui.NewProgressWriter(), os.Stderr)
	}

	renderer := render.New(
		render.NewTypesetter(cfg.Toolchain.Engine),
		render.NewRasterizer(cfg.Toolchain.Rasterizer),
	)

	result, err := render.Run(ctx, renderer, loaded.equations, opts)
	if err != nil {
		return err
	}

	printer.PrintSummary(result, cfg.Output)

	runReport := report.New(loaded.doc.Location, cfg.Output, loaded.equations, result)
	if !cmd.Bool("no-report") {
		if saveErr := runReport.Save(cfg.Output); saveErr != nil {
			return saveErr
		}
	}

	if failures := runReport.Failures(); cmd.Bool("strict") && len(failures) > 0 {
		return strictError(failures)
	}

	return nil
}

func strictError(failures []report.Entry) error {
	names := make([]string, 0, len(failures))
	for _, entry := range failures {
		names = append(names, fmt.Sprintf("%s (%s)", entry.Name, entry.Status))
	}

	return oops.
		Code("RENDER_FAILED").
		With("failed", len(failures)).
		Hint("Failed equations: "+strings.Join(names, ", ")).
		Errorf("%d equation(s) failed to render", len(failures))
}

// applyRenderOverrides lets explicitly set flags win over config values.
func applyRenderOverrides(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("output") {
		output, err := filepath.Abs(cmd.String("output"))
		if err != nil {
			return oops.Wrapf(err, "resolving output directory")
		}
		cfg.Output = output
	}

	if cmd.IsSet("color") {
		cfg.Color = cmd.String("color")
	}

	if cmd.IsSet("delete-intermediates") {
		cfg.DeleteIntermediates = cmd.Bool("delete-intermediates")
	}

	if cmd.IsSet("parallel") {
		cfg.Parallel = cmd.Int("parallel")
		if cfg.Parallel == 0 {
			cfg.Parallel = runtime.GOMAXPROCS(0)
		}
	}

	if cmd.IsSet("engine") {
		cfg.Toolchain.Engine = cmd.String("engine")
	}

	if cmd.IsSet("rasterizer") {
		cfg.Toolchain.Rasterizer = cmd.String("rasterizer")
	}

	return cfg.Validate()
}
