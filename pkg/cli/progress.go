package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress implements a single-line text progress bar. The verify
// command uses it while digesting archived partitions: Update advances
// the bar, Error prints the fault on its own line and keeps going, so a
// handful of bad partitions does not tear up the display.
type SimpleProgress struct {
	mu       sync.Mutex
	total    int64
	current  int64
	problems int64
	started  time.Time
	writer   io.Writer
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stdout.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	return &SimpleProgress{
		writer: w,
	}
}

// Start initializes the progress reporter with the total number of
// partitions to verify.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.problems = 0
	p.started = time.Now()

	p.render()
}

// Update advances the bar to the given position.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish completes the bar and drops to a fresh line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports a per-partition fault without stopping the bar.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.problems++
	fmt.Fprintf(p.writer, "\n✗ %v\n", err)
	p.render()
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	line := fmt.Sprintf("\rVerifying: [%s] %d/%d partitions", bar, p.current, p.total)
	if p.problems > 0 {
		line += fmt.Sprintf(", %d problems", p.problems)
	}
	line += fmt.Sprintf(" (%.1fs)", time.Since(p.started).Seconds())
	fmt.Fprint(p.writer, line)
}
