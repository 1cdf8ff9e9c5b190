package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
)

const (
	initConfigName = "eqrender.toml"
	starterConfig  = `# Directory the .svg files are written to, relative to this file.
output = "equations"

# Equation colour as RRGGBB hex.
color = "#000000"

# Remove the .tex and .pdf files once an equation is rendered.
delete_intermediates = false

# Maximum number of equations rendered at once.
parallel = 1

[toolchain]
engine = "tectonic"
rasterizer = "pdftocairo"

[display]
format = "table"
body_length = 60
`
)

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a starter eqrender.toml in the current directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing eqrender.toml"},
		},
		Action: initAction,
	}
}

func initAction(_ context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(initConfigName); err == nil && !cmd.Bool("force") {
		return oops.
			Code("CONFIG_INVALID").
			With("path", initConfigName).
			Hint("Pass --force to overwrite it").
			Errorf("%s already exists", initConfigName)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return oops.Wrapf(err, "checking for %s", initConfigName)
	}

	if err := os.WriteFile(initConfigName, []byte(starterConfig), 0o644); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", initConfigName).
			Wrapf(err, "writing %s", initConfigName)
	}

	fmt.Fprintf(os.Stderr, "created %s\n", initConfigName)
	return nil
}
