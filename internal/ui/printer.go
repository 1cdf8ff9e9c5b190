package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/g5becks/eqrender/internal/render"
)

type styles struct {
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	dim    *color.Color
	bold   *color.Color
}

func newStyles() styles {
	return styles{
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		dim:    color.New(color.Faint),
		bold:   color.New(color.Bold),
	}
}

// RenderPrinter renders render events to stderr with colored output.
// Failures and warnings are always shown; per-equation start and success
// lines only when verbose.
type RenderPrinter struct {
	w       io.Writer
	verbose bool
	mu      sync.Mutex
	s       styles
}

// NewRenderPrinter creates a RenderPrinter that writes to stderr.
func NewRenderPrinter(verbose bool) *RenderPrinter {
	return NewRenderPrinterWithWriter(os.Stderr, verbose)
}

// NewRenderPrinterWithWriter creates a RenderPrinter that writes to the given writer.
func NewRenderPrinterWithWriter(w io.Writer, verbose bool) *RenderPrinter {
	return &RenderPrinter{
		w:       w,
		verbose: verbose,
		s:       newStyles(),
	}
}

// HandleEvent is the callback wired into render.Options.OnEvent.
func (p *RenderPrinter) HandleEvent(e render.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case render.EventStart:
		if p.verbose {
			fmt.Fprintf(p.w, "%s rendering %s...\n",
				p.s.dim.Sprint("⟳"),
				p.s.bold.Sprint(e.Equation),
			)
		}

	case render.EventDone:
		p.handleDone(e)

	case render.EventFailed:
		p.handleFailed(e)

	case render.EventWarning:
		fmt.Fprintf(p.w, "%s %s\n",
			p.s.yellow.Sprint("!"),
			p.s.yellow.Sprint(e.Message),
		)
	}
}

func (p *RenderPrinter) handleDone(e render.Event) {
	if !p.verbose || e.Outcome == nil {
		return
	}

	name := p.s.bold.Sprint(e.Equation)

	if e.Outcome.Status == render.StatusRasterizerUnavailable {
		fmt.Fprintf(p.w, "%s %s %s\n",
			p.s.dim.Sprint("—"),
			name,
			p.s.dim.Sprint("(pdf only)"),
		)
		return
	}

	fmt.Fprintf(p.w, "%s %s %s\n",
		p.s.green.Sprint("✓"),
		name,
		p.s.dim.Sprint(e.Outcome.SVG),
	)
}

func (p *RenderPrinter) handleFailed(e render.Event) {
	detail := "failed"
	if e.Outcome != nil && e.Outcome.Err != nil {
		detail = e.Outcome.Err.Error()
	}

	fmt.Fprintf(p.w, "%s %s: %s\n",
		p.s.red.Sprint("✗"),
		p.s.bold.Sprint(e.Equation),
		detail,
	)
}

// PrintSummary renders a final summary line after rendering completes.
func (p *RenderPrinter) PrintSummary(r *render.Result, outputDir string) {
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w)

	parts := fmt.Sprintf("%s: %d equation(s), %d rendered, %d skipped",
		render.CompleteMessage,
		r.Active,
		r.Rendered,
		r.Inactive,
	)

	if r.Failed > 0 {
		parts += fmt.Sprintf(", %s",
			p.s.red.Sprintf("%d failed", r.Failed),
		)
	}

	fmt.Fprintln(p.w, parts)

	if outputDir != "" {
		fmt.Fprintln(p.w, p.s.dim.Sprint("output: "+outputDir))
	}
}
