package main

import (
	"context"
	"os"

	"github.com/g5becks/eqrender/internal/config"
	"github.com/g5becks/eqrender/internal/equation"
	"github.com/g5becks/eqrender/internal/parser"
	"github.com/g5becks/eqrender/internal/report"
	"github.com/g5becks/eqrender/internal/source"
	"github.com/g5becks/eqrender/internal/ui"
	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
)

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "Show the equations a source would render",
		ArgsUsage: "<source>",
		Flags: []cli.Flag{
			configFlag(),
			sourceFormatFlag(),
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include inactive equations"},
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Fuzzy filter on equation names"},
			&cli.StringFlag{Name: "format", Usage: "Output format: table, json, csv"},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
			&cli.IntFlag{Name: "body-length", Usage: "Max table equation length (0 = use config default)"},
			&cli.BoolFlag{Name: "status", Aliases: []string{"s"}, Usage: "Show each equation's status from the last render report"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory holding report.json"},
		},
		Action: listAction,
	}
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: eqrender list <source>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	loaded, err := loadSource(ctx, cmd.Args().First(), cmd.String("source-format"))
	if err != nil {
		return err
	}

	equations := loaded.equations
	if !cmd.Bool("all") {
		equations = equation.Filter(equations, true)
	}
	equations = filterByName(equations, cmd.String("filter"))

	title := ""
	if parser.DetectFileType(loaded.doc.Name) == parser.FormatMarkdown {
		title = parser.DocumentTitle(loaded.doc.Content)
	}

	opts := ui.TableOptions{
		Format:     resolveFormat(cmd, cfg),
		BodyLength: resolveBodyLength(cmd, cfg),
		Title:      title,
	}

	if cmd.Bool("status") {
		outputDir := cfg.Output
		if cmd.IsSet("output") {
			outputDir = cmd.String("output")
		}

		lastRun, loadErr := report.Load(outputDir)
		if loadErr != nil {
			return loadErr
		}
		opts.Statuses = lastRun.Statuses()
	}

	return ui.RenderEquations(os.Stdout, equations, opts)
}

// filterByName keeps the equations whose names fuzzy-match query, best
// match first.
func filterByName(equations []equation.Equation, query string) []equation.Equation {
	if query == "" {
		return equations
	}

	byName := make(map[string]equation.Equation, len(equations))
	names := make([]string, 0, len(equations))
	for _, eq := range equations {
		if _, seen := byName[eq.Name()]; seen {
			continue
		}
		byName[eq.Name()] = eq
		names = append(names, eq.Name())
	}

	ranked := source.Rank(query, names)
	filtered := make([]equation.Equation, 0, len(ranked))
	for _, name := range ranked {
		filtered = append(filtered, byName[name])
	}

	return filtered
}

func resolveFormat(cmd *cli.Command, cfg *config.Config) string {
	if cmd.Bool("json") {
		return ui.FormatJSON
	}
	if cmd.IsSet("format") {
		return cmd.String("format")
	}
	return cfg.Display.Format
}

func resolveBodyLength(cmd *cli.Command, cfg *config.Config) int {
	if cmd.IsSet("body-length") {
		return cmd.Int("body-length")
	}
	return cfg.Display.BodyLength
}
