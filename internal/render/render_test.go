package render_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/g5becks/eqrender/internal/equation"
	"github.com/g5becks/eqrender/internal/render"
)

func threeEquations() []equation.Equation {
	return []equation.Equation{
		equation.New(true, "first", "a"),
		equation.New(true, "second", "b"),
		equation.New(true, "third", "c"),
	}
}

func TestRunIsolatesTypesetFailure(t *testing.T) {
	outputDir := t.TempDir()
	typesetter := &fakeTypesetter{fail: map[string]bool{"second": true}}
	rasterizer := &fakeRasterizer{}

	result, err := render.Run(context.Background(), render.New(typesetter, rasterizer), threeEquations(), render.Options{
		OutputDir: outputDir,
		Color:     "#000000",
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for isolated failure", err)
	}

	if got := len(typesetter.Calls()); got != 3 {
		t.Errorf("typesetter called %d times, want 3", got)
	}
	if got := len(rasterizer.Calls()); got != 2 {
		t.Errorf("rasterizer called %d times, want 2", got)
	}

	wantStatus := []render.Status{render.StatusRendered, render.StatusTypesetFailed, render.StatusRendered}
	for i, want := range wantStatus {
		if result.Outcomes[i].Status != want {
			t.Errorf("Outcomes[%d].Status = %q, want %q", i, result.Outcomes[i].Status, want)
		}
	}

	if result.Rendered != 2 || result.Failed != 1 {
		t.Errorf("Rendered = %d, Failed = %d, want 2 and 1", result.Rendered, result.Failed)
	}
}

func TestRunUnwritableOutputAbortsBeforeAnyEquation(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	typesetter := &fakeTypesetter{}
	rasterizer := &fakeRasterizer{}
	var events int

	_, err := render.Run(context.Background(), render.New(typesetter, rasterizer), threeEquations(), render.Options{
		OutputDir: filepath.Join(blocker, "out"),
		Color:     "#000000",
		OnEvent:   func(render.Event) { events++ },
	})
	if err == nil {
		t.Fatalf("Run() error = nil, want fatal output directory error")
	}

	if !strings.Contains(err.Error(), "output directory") {
		t.Errorf("Run() error = %q, want output directory message", err.Error())
	}
	if len(typesetter.Calls()) != 0 || rasterizer.Probes() != 0 {
		t.Errorf("equations were processed after fatal output directory error")
	}
	if events != 0 {
		t.Errorf("events = %d, want 0", events)
	}
}

func TestRunSkipsInactiveAndCountsProgress(t *testing.T) {
	equations := []equation.Equation{
		equation.New(true, "one", "1"),
		equation.New(false, "off", "0"),
		equation.New(true, "two", "2"),
	}
	typesetter := &fakeTypesetter{fail: map[string]bool{"two": true}}
	progress := &recordingProgress{}

	result, err := render.Run(context.Background(), render.New(typesetter, &fakeRasterizer{}), equations, render.Options{
		OutputDir: t.TempDir(),
		Color:     "#000000",
		Progress:  progress,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Active != 2 || result.Inactive != 1 {
		t.Errorf("Active = %d, Inactive = %d, want 2 and 1", result.Active, result.Inactive)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("Outcomes len = %d, want 2", len(result.Outcomes))
	}
	for _, call := range typesetter.Calls() {
		if strings.Contains(call, "off") {
			t.Errorf("inactive equation was typeset: %s", call)
		}
	}

	want := []progressUpdate{
		{2, 0, "Rendering: one"},
		{2, 1, "Rendering: one"},
		{2, 1, "Rendering: two"},
		{2, 2, "Rendering: two"},
	}
	if len(progress.updates) != len(want) {
		t.Fatalf("progress updates = %v, want %v", progress.updates, want)
	}
	for i := range want {
		if progress.updates[i] != want[i] {
			t.Errorf("progress update %d = %+v, want %+v", i, progress.updates[i], want[i])
		}
	}
	if progress.finished != render.CompleteMessage {
		t.Errorf("Finish() message = %q, want %q", progress.finished, render.CompleteMessage)
	}
}

func TestRunEmitsEventsInOrder(t *testing.T) {
	typesetter := &fakeTypesetter{fail: map[string]bool{"second": true}}
	var kinds []render.EventKind
	var names []string

	_, err := render.Run(context.Background(), render.New(typesetter, &fakeRasterizer{}), threeEquations(), render.Options{
		OutputDir: t.TempDir(),
		Color:     "#000000",
		OnEvent: func(e render.Event) {
			kinds = append(kinds, e.Kind)
			names = append(names, e.Equation)
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantKinds := []render.EventKind{
		render.EventStart, render.EventDone,
		render.EventStart, render.EventFailed,
		render.EventStart, render.EventDone,
	}
	wantNames := []string{"first", "first", "second", "second", "third", "third"}

	if len(kinds) != len(wantKinds) {
		t.Fatalf("events = %v, want %v", kinds, wantKinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] || names[i] != wantNames[i] {
			t.Errorf("event %d = (%v, %q), want (%v, %q)", i, kinds[i], names[i], wantKinds[i], wantNames[i])
		}
	}
}

func TestRunParallelKeepsInputOrder(t *testing.T) {
	equations := make([]equation.Equation, 0, 12)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		equations = append(equations, equation.New(true, name, name))
	}

	typesetter := &fakeTypesetter{fail: map[string]bool{"c": true, "h": true}}
	progress := &recordingProgress{}

	result, err := render.Run(context.Background(), render.New(typesetter, &fakeRasterizer{}), equations, render.Options{
		OutputDir: t.TempDir(),
		Color:     "#000000",
		Parallel:  4,
		Progress:  progress,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, eq := range equations {
		if result.Outcomes[i].Name != eq.Name() {
			t.Errorf("Outcomes[%d].Name = %q, want %q", i, result.Outcomes[i].Name, eq.Name())
		}
	}
	if result.Failed != 2 || result.Rendered != 10 {
		t.Errorf("Rendered = %d, Failed = %d, want 10 and 2", result.Rendered, result.Failed)
	}

	last := progress.updates[len(progress.updates)-1]
	if last.current != len(equations) || last.total != len(equations) {
		t.Errorf("last progress update = %+v, want %d/%d", last, len(equations), len(equations))
	}
}

func TestRunFatalWriteStopsBatch(t *testing.T) {
	outputDir := t.TempDir()
	// A directory squatting on the .tex path makes the source write fail.
	if err := os.Mkdir(filepath.Join(outputDir, "second.tex"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	typesetter := &fakeTypesetter{}
	progress := &recordingProgress{}

	_, err := render.Run(context.Background(), render.New(typesetter, &fakeRasterizer{}), threeEquations(), render.Options{
		OutputDir: outputDir,
		Color:     "#000000",
		Progress:  progress,
	})
	if err == nil {
		t.Fatalf("Run() error = nil, want fatal write error")
	}

	if got := len(typesetter.Calls()); got != 1 {
		t.Errorf("typesetter called %d times, want 1 (batch stops at fatal error)", got)
	}
	if progress.finished != render.AbortedMessage {
		t.Errorf("Finish() message = %q, want %q", progress.finished, render.AbortedMessage)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	typesetter := &fakeTypesetter{}
	_, err := render.Run(ctx, render.New(typesetter, &fakeRasterizer{}), threeEquations(), render.Options{
		OutputDir: t.TempDir(),
		Color:     "#000000",
	})
	if err == nil {
		t.Fatalf("Run() error = nil, want cancellation error")
	}
	if len(typesetter.Calls()) != 0 {
		t.Errorf("typesetter called after cancellation")
	}
}

func TestRunRejectsInvalidColor(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "out")

	_, err := render.Run(context.Background(), render.New(&fakeTypesetter{}, &fakeRasterizer{}), threeEquations(), render.Options{
		OutputDir: outputDir,
		Color:     "#12345",
	})
	if err == nil {
		t.Fatalf("Run() error = nil, want invalid colour error")
	}
	if _, statErr := os.Stat(outputDir); !os.IsNotExist(statErr) {
		t.Errorf("output directory created despite invalid colour")
	}
}

func TestRunEmptyBatch(t *testing.T) {
	progress := &recordingProgress{}

	result, err := render.Run(context.Background(), render.New(&fakeTypesetter{}, &fakeRasterizer{}), nil, render.Options{
		OutputDir: t.TempDir(),
		Color:     "#000000",
		Progress:  progress,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Active != 0 || len(result.Outcomes) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if progress.finished != render.CompleteMessage {
		t.Errorf("Finish() message = %q, want %q", progress.finished, render.CompleteMessage)
	}
}
