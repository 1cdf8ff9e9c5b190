package ui

import "github.com/jedib0t/go-pretty/v6/progress"

// TruncateText exports truncateText for testing.
//
//nolint:gochecknoglobals // Test-only exports
var TruncateText = truncateText

// Tracker returns the underlying tracker, nil before the first update.
func (p *TrackerProgress) Tracker() *progress.Tracker {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.tracker
}
