package asr

import (
	"context"
	"errors"

	"github.com/kuroonai/submaker/pkg/models"
)

// ErrNoSpeech is returned when the service recognized nothing usable in the
// audio. Callers skip the window and keep going.
var ErrNoSpeech = errors.New("no speech detected")

// ProgressCallback reports recognition progress as a percentage.
type ProgressCallback func(percent int, message string)

// Service converts one audio file into transcribed segments.
type Service interface {
	Recognize(ctx context.Context, callback ProgressCallback) ([]models.DataSegment, error)
}
