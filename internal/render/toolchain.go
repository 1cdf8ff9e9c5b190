package render

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/samber/oops"
)

const (
	DefaultEngine     = "tectonic"
	DefaultRasterizer = "pdftocairo"
)

// Typesetter compiles a LaTeX source file into a PDF placed in outDir.
type Typesetter interface {
	Typeset(ctx context.Context, texPath string, outDir string) error
}

// Rasterizer converts a typeset PDF into the final SVG artifact.
type Rasterizer interface {
	// Available reports whether the rasterizer can be started at all.
	Available(ctx context.Context) bool
	Rasterize(ctx context.Context, pdfPath string, svgPath string) error
}

// ExitError reports that a tool started but exited with a non-zero status.
// The pipeline treats it as a failure of the current equation only.
type ExitError struct {
	Tool string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
}

// executor abstracts command execution for testing.
type executor interface {
	RunSilent(ctx context.Context, name string, args ...string) error
}

// osExecutor runs commands with stdin, stdout and stderr attached to the
// null device.
type osExecutor struct{}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

//nolint:gochecknoglobals // Shared production executor.
var defaultExec executor = &osExecutor{}

// EngineTypesetter invokes a tectonic-compatible engine as
// <bin> <source> --outdir <dir>.
type EngineTypesetter struct {
	bin  string
	exec executor
}

func NewTypesetter(bin string) *EngineTypesetter {
	if bin == "" {
		bin = DefaultEngine
	}

	return &EngineTypesetter{bin: bin, exec: defaultExec}
}

func (t *EngineTypesetter) Typeset(ctx context.Context, texPath string, outDir string) error {
	err := t.exec.RunSilent(ctx, t.bin, texPath, "--outdir", outDir)
	return classifyRunError(ctx, t.bin, err)
}

// CairoRasterizer invokes a pdftocairo-compatible converter as
// <bin> -svg <pdf> <svg>.
type CairoRasterizer struct {
	bin  string
	exec executor
}

func NewRasterizer(bin string) *CairoRasterizer {
	if bin == "" {
		bin = DefaultRasterizer
	}

	return &CairoRasterizer{bin: bin, exec: defaultExec}
}

// Available probes the binary with -version. A non-zero exit still counts
// as available; only a failure to start the process does not.
func (r *CairoRasterizer) Available(ctx context.Context) bool {
	err := r.exec.RunSilent(ctx, r.bin, "-version")
	if err == nil {
		return true
	}

	var coded exitCoder
	return errors.As(err, &coded)
}

func (r *CairoRasterizer) Rasterize(ctx context.Context, pdfPath string, svgPath string) error {
	err := r.exec.RunSilent(ctx, r.bin, "-svg", pdfPath, svgPath)
	return classifyRunError(ctx, r.bin, err)
}

type exitCoder interface {
	ExitCode() int
}

func classifyRunError(ctx context.Context, tool string, err error) error {
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var coded exitCoder
	if errors.As(err, &coded) {
		return &ExitError{Tool: tool, Code: coded.ExitCode()}
	}

	return oops.
		Code("TOOL_START_FAILED").
		With("tool", tool).
		Hint(fmt.Sprintf("Install %s or point the toolchain config at it", tool)).
		Wrapf(err, "starting %s", tool)
}
