package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/g5becks/eqrender/internal/equation"
	"github.com/g5becks/eqrender/internal/render"
	"github.com/samber/oops"
)

const (
	FileName       = "report.json"
	currentVersion = 1
)

// Report records the outcome of one render run. It is rewritten on every
// run and is never read back as equation input.
type Report struct {
	Version   int       `json:"version"`
	Generated time.Time `json:"generated"`
	Source    string    `json:"source"`
	OutputDir string    `json:"output_dir"`
	Summary   Summary   `json:"summary"`
	Equations []Entry   `json:"equations"`
}

type Summary struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Rendered int `json:"rendered"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
}

type Entry struct {
	Name   string        `json:"name"`
	Body   string        `json:"body"`
	Active bool          `json:"active"`
	Status render.Status `json:"status"`
	SVG    string        `json:"svg,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// New builds a report for equations from the run result. Inactive equations
// are listed as skipped.
func New(sourceLocation string, outputDir string, equations []equation.Equation, result *render.Result) *Report {
	entries := make([]Entry, 0, len(equations))
	next := 0
	for _, eq := range equations {
		entry := Entry{
			Name:   eq.Name(),
			Body:   eq.Body(),
			Active: eq.Active(),
			Status: render.StatusSkipped,
		}

		// Outcomes follow the order of the active equations.
		if eq.Active() && next < len(result.Outcomes) {
			outcome := result.Outcomes[next]
			next++

			entry.Status = outcome.Status
			entry.SVG = outcome.SVG
			if outcome.Err != nil {
				entry.Error = outcome.Err.Error()
			}
		}

		entries = append(entries, entry)
	}

	return &Report{
		Version:   currentVersion,
		Generated: time.Now().UTC(),
		Source:    sourceLocation,
		OutputDir: outputDir,
		Summary: Summary{
			Active:   result.Active,
			Inactive: result.Inactive,
			Rendered: result.Rendered,
			Failed:   result.Failed,
			Warnings: result.Warnings,
		},
		Equations: entries,
	}
}

// Load reads the report written to outputDir.
func Load(outputDir string) (*Report, error) {
	reportPath := filepath.Join(outputDir, FileName)
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, oops.
			Code("REPORT_ERROR").
			With("path", reportPath).
			Hint("Run 'eqrender render' to produce a report").
			Wrapf(err, "reading report")
	}

	r := &Report{}
	if unmarshalErr := json.Unmarshal(data, r); unmarshalErr != nil {
		return nil, oops.
			Code("REPORT_ERROR").
			With("path", reportPath).
			Wrapf(unmarshalErr, "parsing report")
	}

	return r, nil
}

// Save writes the report to outputDir, replacing any previous report
// atomically.
func (r *Report) Save(outputDir string) error {
	if r == nil {
		return oops.
			Code("REPORT_ERROR").
			Errorf("cannot save nil report")
	}

	if r.Version == 0 {
		r.Version = currentVersion
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return oops.
			Code("REPORT_ERROR").
			With("path", outputDir).
			Wrapf(err, "creating report directory")
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return oops.
			Code("REPORT_ERROR").
			Wrapf(err, "encoding report")
	}

	data = append(data, '\n')
	reportPath := filepath.Join(outputDir, FileName)

	tempFile, err := os.CreateTemp(outputDir, FileName+".*.tmp")
	if err != nil {
		return oops.
			Code("REPORT_ERROR").
			With("path", outputDir).
			Wrapf(err, "creating temporary report")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, writeErr := tempFile.Write(data); writeErr != nil {
		_ = tempFile.Close()
		return oops.
			Code("REPORT_ERROR").
			With("path", tempPath).
			Wrapf(writeErr, "writing temporary report")
	}

	if closeErr := tempFile.Close(); closeErr != nil {
		return oops.
			Code("REPORT_ERROR").
			With("path", tempPath).
			Wrapf(closeErr, "closing temporary report")
	}

	if renameErr := os.Rename(tempPath, reportPath); renameErr != nil {
		return oops.
			Code("REPORT_ERROR").
			With("from", tempPath).
			With("to", reportPath).
			Wrapf(renameErr, "replacing report")
	}

	return nil
}

// Failures returns the entries whose status counts as a failure.
func (r *Report) Failures() []Entry {
	var failed []Entry
	for _, entry := range r.Equations {
		if entry.Status.Failed() {
			failed = append(failed, entry)
		}
	}

	return failed
}

// Statuses maps every equation name in the report to its status.
func (r *Report) Statuses() map[string]string {
	statuses := make(map[string]string, len(r.Equations))
	for _, entry := range r.Equations {
		statuses[entry.Name] = string(entry.Status)
	}

	return statuses
}
