package main

import (
	"context"
	"os"

	"github.com/g5becks/eqrender/internal/config"
	"github.com/g5becks/eqrender/internal/equation"
	"github.com/g5becks/eqrender/internal/parser"
	"github.com/g5becks/eqrender/internal/source"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"}
}

func sourceFormatFlag() cli.Flag {
	return &cli.StringFlag{Name: "source-format", Usage: "Treat the source as csv or markdown instead of detecting it"}
}

// loadedSource is a parsed equation source.
type loadedSource struct {
	doc       *source.Document
	equations []equation.Equation
}

// loadSource resolves location against the working directory tree, reads
// it and parses it with the parser chosen by sourceFormat or by file name.
func loadSource(ctx context.Context, location string, sourceFormat string) (*loadedSource, error) {
	resolved, err := source.Resolve(".", location)
	if err != nil {
		return nil, err
	}

	doc, err := source.NewLoader().Load(ctx, resolved)
	if err != nil {
		return nil, err
	}

	var p parser.Parser
	if sourceFormat != "" {
		p, err = parser.ForFormat(sourceFormat)
	} else {
		p, err = parser.ForPath(doc.Name)
	}
	if err != nil {
		return nil, err
	}

	equations, err := p.Parse(doc.Location, doc.Content)
	if err != nil {
		return nil, err
	}

	return &loadedSource{doc: doc, equations: equations}, nil
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config"))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
