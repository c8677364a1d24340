package cmd

import (
	"fmt"
	"time"
)

// ANSI colors for terminal output in the debug commands
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
)

// PerformanceTimer tracks named phases of a command for the timing summary.
type PerformanceTimer struct {
	start  time.Time
	events []timedEvent
}

type timedEvent struct {
	name  string
	start time.Time
}

// NewPerformanceTimer starts a new timer.
func NewPerformanceTimer() *PerformanceTimer {
	return &PerformanceTimer{start: time.Now()}
}

// StartEvent marks the beginning of a named phase; the phase ends when the
// next one starts or the summary is printed.
func (t *PerformanceTimer) StartEvent(name string) {
	t.events = append(t.events, timedEvent{name: name, start: time.Now()})
}

// PrintSummary prints per-phase and total durations.
func (t *PerformanceTimer) PrintSummary() {
	fmt.Printf("\nTiming\n------\n")
	for i, ev := range t.events {
		end := time.Now()
		if i+1 < len(t.events) {
			end = t.events[i+1].start
		}
		fmt.Printf("%-24s %8.3fs\n", ev.name, end.Sub(ev.start).Seconds())
	}
	fmt.Printf("%-24s %8.3fs\n", "total", time.Since(t.start).Seconds())
}
