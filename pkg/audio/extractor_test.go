package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanSegmentsExactMultiple(t *testing.T) {
	segments := PlanSegments(30, 10)

	assert.Len(t, segments, 3)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 10.0, segments[0].End)
	assert.Equal(t, 20.0, segments[2].Start)
	assert.Equal(t, 30.0, segments[2].End)
}

func TestPlanSegmentsPartialTail(t *testing.T) {
	// 25s of audio in 10s windows: the 5s tail still gets a window
	segments := PlanSegments(25, 10)

	assert.Len(t, segments, 3)
	assert.Equal(t, 20.0, segments[2].Start)
	assert.Equal(t, 25.0, segments[2].End)
	assert.InDelta(t, 5.0, segments[2].End-segments[2].Start, 0.001)
}

func TestPlanSegmentsShorterThanWindow(t *testing.T) {
	segments := PlanSegments(4.2, 10)

	assert.Len(t, segments, 1)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 4.2, segments[0].End)
}

func TestPlanSegmentsInvalidInput(t *testing.T) {
	assert.Nil(t, PlanSegments(0, 10))
	assert.Nil(t, PlanSegments(-5, 10))
	assert.Nil(t, PlanSegments(30, 0))
}

func TestPlanSegmentsIndexesAreSequential(t *testing.T) {
	segments := PlanSegments(95, 10)

	assert.Len(t, segments, 10)
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
	}
	// windows tile the timeline without gaps
	for i := 1; i < len(segments); i++ {
		assert.Equal(t, segments[i-1].End, segments[i].Start)
	}
}

func TestNewExtractorClampsWorkers(t *testing.T) {
	e := NewExtractor(t.TempDir(), nil, 0)
	assert.Equal(t, 1, e.concurrencyLimit)

	e = NewExtractor(t.TempDir(), nil, 8)
	assert.Equal(t, 8, e.concurrencyLimit)
}
