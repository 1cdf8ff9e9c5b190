package render

import (
	"context"
	"errors"
	"os"
	stdsync "sync"

	"github.com/g5becks/eqrender/internal/equation"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

const (
	CompleteMessage = "Rendering complete!"
	AbortedMessage  = "Rendering aborted"
)

// Options controls a render run.
type Options struct {
	OutputDir           string
	Color               string
	DeleteIntermediates bool
	// Parallel is the maximum number of equations rendered at once.
	// Values below 1 mean sequential.
	Parallel int
	Progress Progress
	OnEvent  func(Event)
}

// Progress receives the render position. current counts finished
// equations, whatever their outcome.
type Progress interface {
	Update(total int, current int, label string)
	Finish(message string)
}

type EventKind int

const (
	EventStart EventKind = iota
	EventDone
	EventFailed
	EventWarning
)

// Event is emitted while a run progresses. Handlers are never called
// concurrently.
type Event struct {
	Kind     EventKind
	Equation string
	Outcome  *Outcome
	Message  string
}

// Result summarises a completed run.
type Result struct {
	// Outcomes holds one entry per active equation, in input order.
	Outcomes []Outcome
	Active   int
	Inactive int
	Rendered int
	Failed   int
	Warnings int
}

// Run renders every active equation into opts.OutputDir. Per-equation
// failures are collected in the Result; only fatal failures return an error.
func Run(ctx context.Context, r *Renderer, equations []equation.Equation, opts Options) (*Result, error) {
	if r == nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			Errorf("renderer is required")
	}

	if _, err := NormalizeColor(opts.Color); err != nil {
		return nil, err
	}

	active := equation.Filter(equations, true)
	result := &Result{
		Outcomes: make([]Outcome, len(active)),
		Active:   len(active),
		Inactive: len(equations) - len(active),
	}

	if err := ensureOutputDir(opts.OutputDir); err != nil {
		return nil, err
	}

	parallel := max(opts.Parallel, 1)

	var mu stdsync.Mutex
	completed := 0
	sink := eventSink{mu: &mu, handler: opts.OnEvent, result: result}
	progress := opts.Progress
	if progress == nil {
		progress = noopProgress{}
	}

	pipelineOpts := opts
	pipelineOpts.OnEvent = sink.emit

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	for i, eq := range active {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			label := "Rendering: " + eq.Name()

			mu.Lock()
			progress.Update(len(active), completed, label)
			sink.emitLocked(Event{Kind: EventStart, Equation: eq.Name()})
			mu.Unlock()

			outcome, err := r.Render(groupCtx, eq, pipelineOpts)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			result.Outcomes[i] = outcome
			completed++
			progress.Update(len(active), completed, label)

			kind := EventDone
			if outcome.Status.Failed() {
				kind = EventFailed
			}
			sink.emitLocked(Event{Kind: kind, Equation: eq.Name(), Outcome: &result.Outcomes[i]})
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		progress.Finish(AbortedMessage)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, oops.
				Code("CANCELED").
				Wrapf(err, "rendering interrupted")
		}
		return nil, err
	}

	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Status == StatusRendered:
			result.Rendered++
		case outcome.Status.Failed():
			result.Failed++
		}
	}

	progress.Finish(CompleteMessage)
	return result, nil
}

// ensureOutputDir creates dir and proves it is writable before any
// equation is processed.
func ensureOutputDir(dir string) error {
	if dir == "" {
		return oops.
			Code("OUTPUT_DIR_FAILED").
			With("step", "ensure_output_dir").
			Hint("Pass --output or set output in eqrender.toml").
			Errorf("output directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oops.
			Code("OUTPUT_DIR_FAILED").
			With("step", "ensure_output_dir").
			With("path", dir).
			Hint("Choose an output directory you can write to").
			Wrapf(err, "creating output directory")
	}

	probe, err := os.CreateTemp(dir, ".eqrender-*.tmp")
	if err != nil {
		return oops.
			Code("OUTPUT_DIR_FAILED").
			With("step", "ensure_output_dir").
			With("path", dir).
			Hint("Choose an output directory you can write to").
			Wrapf(err, "output directory is not writable")
	}

	probePath := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probePath)
	return nil
}

type eventSink struct {
	mu      *stdsync.Mutex
	handler func(Event)
	result  *Result
}

func (s eventSink) emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(e)
}

func (s eventSink) emitLocked(e Event) {
	if e.Kind == EventWarning {
		s.result.Warnings++
	}

	if s.handler != nil {
		s.handler(e)
	}
}

type noopProgress struct{}

func (noopProgress) Update(int, int, string) {}

func (noopProgress) Finish(string) {}
