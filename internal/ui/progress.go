package ui

import (
	"io"
	stdsync "sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

const (
	updateFrequency = 100 * time.Millisecond
	maxFinishWaits  = 20
)

func NewProgressWriter() progress.Writer {
	writer := progress.NewWriter()
	writer.SetAutoStop(true)
	writer.SetTrackerLength(30)
	writer.SetStyle(progress.StyleBlocks)
	writer.SetUpdateFrequency(updateFrequency)
	writer.Style().Visibility.ETA = true
	writer.Style().Visibility.Value = true

	return writer
}

// TrackerProgress drives a single go-pretty tracker from render progress
// updates.
type TrackerProgress struct {
	writer  progress.Writer
	mu      stdsync.Mutex
	tracker *progress.Tracker
}

// NewTrackerProgress renders writer to out. Rendering starts in the
// background with the first update.
func NewTrackerProgress(writer progress.Writer, out io.Writer) *TrackerProgress {
	writer.SetOutputWriter(out)

	return &TrackerProgress{writer: writer}
}

func (p *TrackerProgress) Update(total int, current int, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tracker == nil {
		p.tracker = &progress.Tracker{
			Message: label,
			Total:   int64(total),
			Units:   progress.UnitsDefault,
		}
		p.writer.AppendTracker(p.tracker)
		go p.writer.Render()
	}

	p.tracker.UpdateMessage(label)
	p.tracker.SetValue(int64(current))
}

// Finish marks the tracker done with message and waits briefly for the
// final frame to be drawn.
func (p *TrackerProgress) Finish(message string) {
	p.mu.Lock()
	tracker := p.tracker
	p.mu.Unlock()

	if tracker == nil {
		return
	}

	tracker.UpdateMessage(message)
	tracker.MarkAsDone()

	for range maxFinishWaits {
		if !p.writer.IsRenderInProgress() {
			return
		}
		time.Sleep(updateFrequency)
	}

	p.writer.Stop()
}
