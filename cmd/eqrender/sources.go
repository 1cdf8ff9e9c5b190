package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/g5becks/eqrender/internal/parser"
	"github.com/g5becks/eqrender/internal/source"
	"github.com/g5becks/eqrender/internal/ui"
	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
)

func newSourcesCommand() *cli.Command {
	return &cli.Command{
		Name:      "sources",
		Usage:     "List CSV and Markdown files below a directory",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "match", Aliases: []string{"m"}, Usage: "Fuzzy rank files against a name"},
			&cli.StringFlag{Name: "format", Usage: "Output format: table, json, csv"},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: sourcesAction,
	}
}

func sourcesAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: eqrender sources [dir]").
			Errorf("expected at most 1 argument, got %d", cmd.Args().Len())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	root := "."
	if cmd.Args().Len() == 1 {
		root = cmd.Args().First()
	}

	files, err := source.Discover(root)
	if err != nil {
		return err
	}
	files = source.Rank(cmd.String("match"), files)

	rows := make([]ui.SourceRow, 0, len(files))
	for _, file := range files {
		row := ui.SourceRow{Path: file, Format: parser.DetectFileType(file)}
		if row.Format == parser.FormatMarkdown {
			if content, readErr := os.ReadFile(filepath.Join(root, filepath.FromSlash(file))); readErr == nil {
				row.Title = parser.DocumentTitle(content)
			}
		}
		rows = append(rows, row)
	}

	return ui.RenderSources(os.Stdout, rows, resolveFormat(cmd, cfg))
}
