package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBarUpdate(t *testing.T) {
	bar := NewProgressBar(10, "convert", "starting")

	bar.Update(4, "working")
	assert.Equal(t, 4, bar.Current)
	assert.Equal(t, "working", bar.Suffix)

	// empty suffix keeps the previous one
	bar.Update(5, "")
	assert.Equal(t, "working", bar.Suffix)

	// clamped to total, negatives ignored
	bar.Update(99, "")
	assert.Equal(t, 10, bar.Current)
	bar.Update(-1, "")
	assert.Equal(t, 10, bar.Current)
}

func TestProgressBarIncrement(t *testing.T) {
	bar := NewProgressBar(3, "split", "")

	bar.Increment("1 done")
	bar.Increment("2 done")
	assert.Equal(t, 2, bar.Current)
	assert.Equal(t, "2 done", bar.Suffix)
}

func TestProgressBarString(t *testing.T) {
	bar := NewProgressBar(4, "transcribe", "")
	bar.Current = 2

	s := bar.String()
	assert.Contains(t, s, "transcribe")
	assert.Contains(t, s, "50%")
	assert.Contains(t, s, "2/4")
}

func TestRenderProgressBar(t *testing.T) {
	full := renderProgressBar(10, 10, 10)
	assert.Equal(t, "["+strings.Repeat("█", 10)+"]", full)

	empty := renderProgressBar(0, 10, 10)
	assert.Equal(t, "["+strings.Repeat("░", 10)+"]", empty)

	half := renderProgressBar(5, 10, 10)
	assert.Equal(t, "["+strings.Repeat("█", 5)+strings.Repeat("░", 5)+"]", half)
}

func TestProgressManagerLifecycle(t *testing.T) {
	pm := NewProgressManager(true)

	bar := pm.CreateProgressBar("job1", 5, "job", "")
	require.NotNil(t, bar)
	assert.Same(t, bar, pm.GetProgressBar("job1"))

	pm.UpdateProgressBar("job1", 3, "3 of 5")
	assert.Equal(t, 3, bar.Current)

	pm.CompleteProgressBar("job1", "done")
	assert.Nil(t, pm.GetProgressBar("job1"))
}

func TestProgressManagerDisabled(t *testing.T) {
	pm := NewProgressManager(false)

	assert.False(t, pm.Enabled())
	assert.Nil(t, pm.CreateProgressBar("job1", 5, "job", ""))

	// no-ops, must not panic
	pm.UpdateProgressBar("job1", 1, "")
	pm.CompleteProgressBar("job1", "")
	pm.CloseAll("")
}

func TestProgressManagerCloseAll(t *testing.T) {
	pm := NewProgressManager(true)

	pm.CreateProgressBar("a", 2, "a", "")
	pm.CreateProgressBar("b", 2, "b", "")

	pm.CloseAll("shutdown")
	assert.Nil(t, pm.GetProgressBar("a"))
	assert.Nil(t, pm.GetProgressBar("b"))
}
