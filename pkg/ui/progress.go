package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// ProgressDisplay shows one line per collected follower page
type ProgressDisplay struct {
	mu        sync.Mutex
	targetID  string
	startTime time.Time
	pages     int
	total     int
}

// NewProgressDisplay creates a progress display for one collection run
func NewProgressDisplay(targetID string) *ProgressDisplay {
	return &ProgressDisplay{
		targetID:  targetID,
		startTime: time.Now(),
	}
}

// Page prints the running totals after a page was collected
func (p *ProgressDisplay) Page(page, added, total, target int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pages = page
	p.total = total
	if IsQuietMode() {
		return
	}

	fmt.Fprintf(Out, "%s %s +%d %s\n",
		Magenta(fmt.Sprintf("[PAGE %d]", page)),
		progressBar(total, target),
		added,
		Dim(formatDuration(time.Since(p.startTime))),
	)
}

// Complete prints the run summary
func (p *ProgressDisplay) Complete(path string, exhausted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if IsQuietMode() {
		return
	}

	reason := "target reached"
	if exhausted {
		reason = "follower list exhausted"
	}
	fmt.Fprintf(Out, "\n%s Saved %d followers of account %s to %s\n",
		Green("✓"), p.total, p.targetID, Cyan(path))
	fmt.Fprintf(Out, "  %s %d pages in %s (%s)\n",
		Dim("•"), p.pages, formatDuration(time.Since(p.startTime)), reason)
}

// progressBar renders total/target as a fixed width bar
func progressBar(total, target int) string {
	filled := 0
	if target > 0 {
		filled = total * barWidth / target
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, total, target)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
