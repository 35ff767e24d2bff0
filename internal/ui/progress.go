package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ProgressBar is a single-line terminal progress bar.
type ProgressBar struct {
	Total      int
	Current    int
	Prefix     string
	Suffix     string
	Width      int
	FillChar   string
	EmptyChar  string
	StartTime  time.Time
	LastUpdate time.Time
}

// NewProgressBar creates a bar with total steps and the given labels.
func NewProgressBar(total int, prefix string, suffix string) *ProgressBar {
	return &ProgressBar{
		Total:      total,
		Current:    0,
		Prefix:     prefix,
		Suffix:     suffix,
		Width:      30,
		FillChar:   "█",
		EmptyChar:  "░",
		StartTime:  time.Now(),
		LastUpdate: time.Now(),
	}
}

// Update sets the current progress and redraws. An empty suffix keeps the
// previous one.
func (p *ProgressBar) Update(current int, suffix string) {
	if current < 0 {
		return
	}

	if current > p.Total {
		current = p.Total
	}

	p.Current = current

	if suffix != "" {
		p.Suffix = suffix
	}

	p.LastUpdate = time.Now()
	p.draw()
}

// Increment advances the bar by one step.
func (p *ProgressBar) Increment(suffix string) {
	p.Update(p.Current+1, suffix)
}

// Complete fills the bar and moves to the next line.
func (p *ProgressBar) Complete(suffix string) {
	p.Update(p.Total, suffix)
	fmt.Println()
}

func (p *ProgressBar) draw() {
	if p.Total <= 0 {
		return
	}

	percent := float64(p.Current) / float64(p.Total)
	filled := int(percent * float64(p.Width))
	if filled > p.Width {
		filled = p.Width
	}

	bar := strings.Repeat(p.FillChar, filled) + strings.Repeat(p.EmptyChar, p.Width-filled)

	elapsed := time.Since(p.StartTime)

	var remaining time.Duration
	if p.Current > 0 {
		remaining = time.Duration(float64(elapsed) / percent * (1 - percent))
	}

	progressLine := fmt.Sprintf("\r%s [%s] %3.0f%% | %d/%d | %s<%s | %s",
		p.Prefix, bar, percent*100, p.Current, p.Total,
		formatDuration(elapsed), formatDuration(remaining), p.Suffix)

	fmt.Print(color.CyanString(progressLine))
}

// String renders the bar without drawing it, for status dumps.
func (p *ProgressBar) String() string {
	percent := float64(p.Current) / float64(p.Total) * 100
	bar := renderProgressBar(p.Current, p.Total, p.Width)

	return fmt.Sprintf("%s %s %3.0f%% | %d/%d",
		p.Prefix, bar, percent, p.Current, p.Total)
}

func renderProgressBar(current, total, width int) string {
	percent := float64(current) / float64(total)
	filled := int(percent * float64(width))

	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	b.WriteString("]")

	return b.String()
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
