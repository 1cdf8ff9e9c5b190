package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/g5becks/eqrender/internal/equation"
	"github.com/samber/oops"
)

// Status is the result of rendering one equation.
type Status string

const (
	StatusSkipped               Status = "skipped"
	StatusRendered              Status = "rendered"
	StatusTypesetFailed         Status = "typeset_failed"
	StatusPDFMissing            Status = "pdf_missing"
	StatusRasterizeFailed       Status = "rasterize_failed"
	StatusRasterizerUnavailable Status = "rasterizer_unavailable"
)

// Failed reports whether the status counts as a per-equation failure.
func (s Status) Failed() bool {
	switch s {
	case StatusTypesetFailed, StatusPDFMissing, StatusRasterizeFailed:
		return true
	case StatusSkipped, StatusRendered, StatusRasterizerUnavailable:
		return false
	default:
		return false
	}
}

// Outcome describes what happened to one equation.
type Outcome struct {
	Name   string
	Status Status
	// SVG is the path of the final artifact when Status is StatusRendered.
	SVG string
	// Err carries the per-equation failure for failed statuses.
	Err error
}

// Artifacts are the files produced for an equation in an output directory.
type Artifacts struct {
	TeX string
	PDF string
	SVG string
}

func ArtifactsFor(outputDir string, name string) Artifacts {
	return Artifacts{
		TeX: filepath.Join(outputDir, name+".tex"),
		PDF: filepath.Join(outputDir, name+".pdf"),
		SVG: filepath.Join(outputDir, name+".svg"),
	}
}

// Renderer turns equations into SVG files through a Typesetter and a
// Rasterizer. Rasterizer availability is probed once per Renderer.
type Renderer struct {
	typesetter Typesetter
	rasterizer Rasterizer

	probeMu        sync.Mutex
	probed         bool
	rasterizerOkay bool
}

func New(typesetter Typesetter, rasterizer Rasterizer) *Renderer {
	return &Renderer{
		typesetter: typesetter,
		rasterizer: rasterizer,
	}
}

// Render runs the full pipeline for one equation. The returned error is
// non-nil only for failures that make the whole batch unusable; per-equation
// failures are reported through the Outcome.
func (r *Renderer) Render(ctx context.Context, eq equation.Equation, opts Options) (Outcome, error) {
	outcome := Outcome{Name: eq.Name()}

	if !eq.Active() {
		outcome.Status = StatusSkipped
		return outcome, nil
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return outcome, oops.
			Code("OUTPUT_DIR_FAILED").
			With("step", "ensure_output_dir").
			With("path", opts.OutputDir).
			Hint("Choose an output directory you can write to").
			Wrapf(err, "creating output directory")
	}

	source, err := GenerateLaTeX(eq.Body(), opts.Color)
	if err != nil {
		return outcome, oops.With("step", "generate_source").Wrap(err)
	}

	files := ArtifactsFor(opts.OutputDir, eq.Name())
	if err := os.WriteFile(files.TeX, []byte(source), 0o644); err != nil {
		return outcome, oops.
			Code("WRITE_FAILED").
			With("step", "write_source").
			With("path", files.TeX).
			Wrapf(err, "writing latex source")
	}

	if err := r.typesetter.Typeset(ctx, files.TeX, opts.OutputDir); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			return outcome, oops.With("step", "typeset").With("equation", eq.Name()).Wrap(err)
		}

		outcome.Status = StatusTypesetFailed
		outcome.Err = oops.
			Code("TYPESET_FAILED").
			With("equation", eq.Name()).
			Wrapf(err, "failed to render PDF for %s", eq.Name())
		return outcome, nil
	}

	outcome, err = r.rasterize(ctx, eq, files, opts)
	if err != nil {
		return outcome, err
	}

	if opts.DeleteIntermediates {
		removeIntermediates(files)
	}

	return outcome, nil
}

func (r *Renderer) rasterize(ctx context.Context, eq equation.Equation, files Artifacts, opts Options) (Outcome, error) {
	outcome := Outcome{Name: eq.Name()}

	available, err := r.rasterizerAvailable(ctx, opts)
	if err != nil {
		return outcome, oops.With("step", "rasterize").With("equation", eq.Name()).Wrap(err)
	}

	if !available {
		outcome.Status = StatusRasterizerUnavailable
		return outcome, nil
	}

	if _, err := os.Stat(files.PDF); err != nil {
		outcome.Status = StatusPDFMissing
		outcome.Err = oops.
			Code("PDF_MISSING").
			With("equation", eq.Name()).
			With("path", files.PDF).
			Errorf("PDF file not found: %s", files.PDF)
		return outcome, nil
	}

	if err := r.rasterizer.Rasterize(ctx, files.PDF, files.SVG); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			return outcome, oops.With("step", "rasterize").With("equation", eq.Name()).Wrap(err)
		}

		outcome.Status = StatusRasterizeFailed
		outcome.Err = oops.
			Code("RASTERIZE_FAILED").
			With("equation", eq.Name()).
			Wrapf(err, "failed to convert %s to SVG", eq.Name())
		return outcome, nil
	}

	outcome.Status = StatusRendered
	outcome.SVG = files.SVG
	return outcome, nil
}

// rasterizerAvailable probes the rasterizer on first use and remembers the
// answer. A probe cut short by ctx is neither cached nor reported.
func (r *Renderer) rasterizerAvailable(ctx context.Context, opts Options) (bool, error) {
	r.probeMu.Lock()
	defer r.probeMu.Unlock()

	if r.probed {
		return r.rasterizerOkay, nil
	}

	available := r.rasterizer.Available(ctx)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.probed = true
	r.rasterizerOkay = available
	if !available && opts.OnEvent != nil {
		opts.OnEvent(Event{
			Kind:    EventWarning,
			Message: "rasterizer not found, install it to enable PDF to SVG conversion",
		})
	}

	return available, nil
}

// removeIntermediates deletes the .tex and .pdf files, ignoring errors.
func removeIntermediates(files Artifacts) {
	_ = os.Remove(files.TeX)
	_ = os.Remove(files.PDF)
}
