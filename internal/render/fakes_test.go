package render_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/g5becks/eqrender/internal/render"
)

// fakeTypesetter records invocations and writes a stand-in PDF unless told
// to fail or to skip the output for a given equation name.
type fakeTypesetter struct {
	mu       sync.Mutex
	calls    []string
	fail     map[string]bool
	noPDF    map[string]bool
	startErr error
}

func (f *fakeTypesetter) Typeset(_ context.Context, texPath string, outDir string) error {
	f.mu.Lock()
	f.calls = append(f.calls, texPath)
	f.mu.Unlock()

	if f.startErr != nil {
		return f.startErr
	}

	name := strings.TrimSuffix(filepath.Base(texPath), ".tex")
	if f.fail[name] {
		return &render.ExitError{Tool: "tectonic", Code: 1}
	}

	if f.noPDF[name] {
		return nil
	}

	return os.WriteFile(filepath.Join(outDir, name+".pdf"), []byte("%PDF-1.5 "+name), 0o644)
}

func (f *fakeTypesetter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeRasterizer records probes and conversions and writes a stand-in SVG.
type fakeRasterizer struct {
	mu          sync.Mutex
	unavailable bool
	onProbe     func()
	probes      int
	calls       []string
	fail        map[string]bool
}

func (f *fakeRasterizer) Available(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	if f.onProbe != nil {
		f.onProbe()
	}
	return !f.unavailable
}

func (f *fakeRasterizer) Rasterize(_ context.Context, pdfPath string, svgPath string) error {
	f.mu.Lock()
	f.calls = append(f.calls, pdfPath)
	f.mu.Unlock()

	name := strings.TrimSuffix(filepath.Base(pdfPath), ".pdf")
	if f.fail[name] {
		return &render.ExitError{Tool: "pdftocairo", Code: 2}
	}

	return os.WriteFile(svgPath, []byte("<svg>"+name+"</svg>"), 0o644)
}

func (f *fakeRasterizer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRasterizer) Probes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

type recordingProgress struct {
	updates  []progressUpdate
	finished string
}

type progressUpdate struct {
	total   int
	current int
	label   string
}

func (p *recordingProgress) Update(total int, current int, label string) {
	p.updates = append(p.updates, progressUpdate{total: total, current: current, label: label})
}

func (p *recordingProgress) Finish(message string) {
	p.finished = message
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
