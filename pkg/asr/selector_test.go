package asr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/utils"
)

type stubService struct {
	text string
}

func (s *stubService) Recognize(ctx context.Context, callback ProgressCallback) ([]models.DataSegment, error) {
	return []models.DataSegment{{Text: s.text}}, nil
}

func stubCreator(text string) ServiceCreator {
	return func(audioPath string, useCache bool) (Service, error) {
		return &stubService{text: text}, nil
	}
}

func TestResolveByName(t *testing.T) {
	utils.InitLogger(utils.LogLevelQuiet, "")

	s := NewSelector()
	s.RegisterService("google", stubCreator("g"), 10)

	name, creator, err := s.Resolve("google")
	require.NoError(t, err)
	assert.Equal(t, "google", name)
	assert.NotNil(t, creator)

	_, _, err = s.Resolve("whisper")
	assert.Error(t, err)
}

func TestResolveAuto(t *testing.T) {
	utils.InitLogger(utils.LogLevelQuiet, "")

	s := NewSelector()
	_, _, err := s.Resolve("auto")
	assert.Error(t, err)

	s.RegisterService("google", stubCreator("g"), 10)

	name, creator, err := s.Resolve("auto")
	require.NoError(t, err)
	assert.Equal(t, "google", name)

	svc, err := creator("whatever", false)
	require.NoError(t, err)
	segs, err := svc.Recognize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "g", segs[0].Text)
}

func TestAvailabilityDemotion(t *testing.T) {
	utils.InitLogger(utils.LogLevelQuiet, "")

	s := NewSelector()
	s.RegisterService("flaky", stubCreator("f"), 10)

	// six straight failures push the success rate below the threshold
	for i := 0; i < 6; i++ {
		s.ReportResult("flaky", false)
	}

	_, _, ok := s.SelectService("weighted_random")
	assert.False(t, ok)

	// one success brings it back
	s.ReportResult("flaky", true)
	_, _, ok = s.SelectService("weighted_random")
	assert.True(t, ok)
}

func TestRoundRobinSkipsUnavailable(t *testing.T) {
	utils.InitLogger(utils.LogLevelQuiet, "")

	s := NewSelector()
	s.RegisterService("a", stubCreator("a"), 5)
	s.RegisterService("b", stubCreator("b"), 5)

	for i := 0; i < 6; i++ {
		s.ReportResult("a", false)
	}

	for i := 0; i < 4; i++ {
		name, _, ok := s.SelectService("round_robin")
		require.True(t, ok)
		assert.Equal(t, "b", name)
	}
}

func TestGetStats(t *testing.T) {
	utils.InitLogger(utils.LogLevelQuiet, "")

	s := NewSelector()
	s.RegisterService("google", stubCreator("g"), 10)
	s.ReportResult("google", true)
	s.ReportResult("google", false)

	stats := s.GetStats()
	require.Contains(t, stats, "google")
	assert.Equal(t, "50.0%", stats["google"]["success_rate"])
	assert.Equal(t, true, stats["google"]["available"])
	assert.Equal(t, 10, stats["google"]["weight"])
}
