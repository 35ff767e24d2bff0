package ui

import (
	"fmt"
	"sync"
)

// ProgressManager keeps a registry of named progress bars so concurrent
// pipeline stages can update their own bar without stepping on each other.
type ProgressManager struct {
	progressBars map[string]*ProgressBar
	mutex        sync.Mutex
	enabled      bool
}

// NewProgressManager creates a manager. When disabled all calls are no-ops,
// which keeps call sites free of progress plumbing conditionals.
func NewProgressManager(enabled bool) *ProgressManager {
	return &ProgressManager{
		progressBars: make(map[string]*ProgressBar),
		enabled:      enabled,
	}
}

// Enabled reports whether bars are being drawn.
func (pm *ProgressManager) Enabled() bool {
	return pm.enabled
}

// CreateProgressBar registers a new bar under id, completing any bar that
// already holds that id.
func (pm *ProgressManager) CreateProgressBar(id string, total int, prefix string, suffix string) *ProgressBar {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if bar, exists := pm.progressBars[id]; exists {
		bar.Complete("replaced")
	}

	if !pm.enabled {
		return nil
	}

	bar := NewProgressBar(total, prefix, suffix)
	pm.progressBars[id] = bar
	return bar
}

// GetProgressBar returns the bar registered under id, or nil.
func (pm *ProgressManager) GetProgressBar(id string) *ProgressBar {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	return pm.progressBars[id]
}

// UpdateProgressBar updates the bar registered under id.
func (pm *ProgressManager) UpdateProgressBar(id string, current int, suffix string) {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	bar, exists := pm.progressBars[id]
	pm.mutex.Unlock()

	if exists {
		bar.Update(current, suffix)
	}
}

// CompleteProgressBar finishes and unregisters the bar under id.
func (pm *ProgressManager) CompleteProgressBar(id string, suffix string) {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	bar, exists := pm.progressBars[id]
	pm.mutex.Unlock()

	if exists {
		bar.Complete(suffix)
		pm.RemoveProgressBar(id)
	}
}

// RemoveProgressBar unregisters a bar without drawing.
func (pm *ProgressManager) RemoveProgressBar(id string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	delete(pm.progressBars, id)
}

// CloseAll completes every registered bar.
func (pm *ProgressManager) CloseAll(suffix string) {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	bars := make([]*ProgressBar, 0, len(pm.progressBars))
	for _, bar := range pm.progressBars {
		bars = append(bars, bar)
	}
	pm.progressBars = make(map[string]*ProgressBar)
	pm.mutex.Unlock()

	for _, bar := range bars {
		bar.Complete(suffix)
	}
}

// PrintStatus prints a snapshot of every registered bar.
func (pm *ProgressManager) PrintStatus() {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	fmt.Println("\ncurrent progress:")
	for id, bar := range pm.progressBars {
		percent := float64(bar.Current) / float64(bar.Total) * 100
		fmt.Printf("- %s: %.1f%% (%d/%d) %s\n",
			id, percent, bar.Current, bar.Total, bar.Suffix)
	}
}
