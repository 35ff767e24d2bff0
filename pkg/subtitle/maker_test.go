package subtitle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuroonai/submaker/pkg/asr"
	"github.com/kuroonai/submaker/pkg/audio"
	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/utils"
)

type fakeService struct {
	text string
	err  error
}

func (s *fakeService) Recognize(ctx context.Context, callback asr.ProgressCallback) ([]models.DataSegment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.DataSegment{{Text: s.text}}, nil
}

// fakeRecognizer maps an audio path to a canned transcript or error and
// counts how often each path was attempted.
type fakeRecognizer struct {
	mu    sync.Mutex
	texts map[string]string
	errs  map[string]error
	calls map[string]int
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{
		texts: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeRecognizer) creator(audioPath string, useCache bool) (asr.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[audioPath]++

	if err, ok := f.errs[audioPath]; ok {
		return &fakeService{err: err}, nil
	}
	return &fakeService{text: f.texts[audioPath]}, nil
}

func (f *fakeRecognizer) callCount(audioPath string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[audioPath]
}

type fakeTranslator struct {
	mu     sync.Mutex
	err    error
	called int
}

func (t *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.called++
	if t.err != nil {
		return "", t.err
	}
	return "[" + target + "] " + text, nil
}

func (t *fakeTranslator) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.called
}

func testConfig(language string) *models.Config {
	cfg := models.NewDefaultConfig()
	cfg.Language = language
	cfg.MaxRetries = 2
	cfg.RetryDelay = 0.1
	cfg.MaxWorkers = 2
	return cfg
}

func makeMaker(t *testing.T, cfg *models.Config, rec *fakeRecognizer, tr Translator) *Maker {
	t.Helper()
	utils.InitLogger(utils.LogLevelQuiet, "")

	selector := asr.NewSelector()
	selector.RegisterService("fake", rec.creator, 10)
	cfg.ASRService = "fake"

	return NewMaker(cfg, selector, tr, nil)
}

func windows(paths ...string) []audio.Segment {
	segs := make([]audio.Segment, len(paths))
	for i, p := range paths {
		segs[i] = audio.Segment{
			Index:      i,
			Start:      float64(i * 10),
			End:        float64((i + 1) * 10),
			OutputPath: p,
		}
	}
	return segs
}

func TestTranscribeSegmentsPreservesOrder(t *testing.T) {
	rec := newFakeRecognizer()
	rec.texts["a.flac"] = "first"
	rec.texts["b.flac"] = "second"
	rec.texts["c.flac"] = "third"

	m := makeMaker(t, testConfig("en-US"), rec, &fakeTranslator{})

	segs, service, skipped, err := m.transcribeSegments(context.Background(),
		"clip.mp3", windows("a.flac", "b.flac", "c.flac"))
	require.NoError(t, err)
	assert.Equal(t, "fake", service)
	assert.Zero(t, skipped)

	require.Len(t, segs, 3)
	assert.Equal(t, "first", segs[0].Text)
	assert.Equal(t, "second", segs[1].Text)
	assert.Equal(t, "third", segs[2].Text)
	assert.Equal(t, 0.0, segs[0].StartTime)
	assert.Equal(t, 20.0, segs[2].StartTime)
}

func TestTranscribeSegmentsSkipsSilentWindows(t *testing.T) {
	rec := newFakeRecognizer()
	rec.texts["a.flac"] = "speech"
	rec.errs["b.flac"] = asr.ErrNoSpeech
	rec.texts["c.flac"] = "more speech"

	m := makeMaker(t, testConfig("en-US"), rec, &fakeTranslator{})

	segs, _, skipped, err := m.transcribeSegments(context.Background(),
		"clip.mp3", windows("a.flac", "b.flac", "c.flac"))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, segs, 2)
	assert.Equal(t, "speech", segs[0].Text)
	assert.Equal(t, "more speech", segs[1].Text)

	// silence is not retried
	assert.Equal(t, 1, rec.callCount("b.flac"))
}

func TestTranscribeSegmentsToleratesFailingWindow(t *testing.T) {
	rec := newFakeRecognizer()
	rec.texts["a.flac"] = "kept"
	rec.errs["b.flac"] = errors.New("service unavailable")

	cfg := testConfig("en-US")
	m := makeMaker(t, cfg, rec, &fakeTranslator{})

	segs, _, skipped, err := m.transcribeSegments(context.Background(),
		"clip.mp3", windows("a.flac", "b.flac"))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, segs, 1)
	assert.Equal(t, "kept", segs[0].Text)

	// the failing window was retried up to the configured limit
	assert.Equal(t, cfg.MaxRetries, rec.callCount("b.flac"))
}

func TestTranscribeWindowEnglishSkipsTranslation(t *testing.T) {
	rec := newFakeRecognizer()
	rec.texts["a.flac"] = "hello world"
	tr := &fakeTranslator{}

	m := makeMaker(t, testConfig("en-GB"), rec, tr)

	segs, _, _, err := m.transcribeSegments(context.Background(),
		"clip.mp3", windows("a.flac"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "hello world", segs[0].Text)
	assert.Zero(t, tr.callCount())
}

func TestTranscribeWindowTranslatesNonEnglish(t *testing.T) {
	rec := newFakeRecognizer()
	rec.texts["a.flac"] = "hello world"
	tr := &fakeTranslator{}

	m := makeMaker(t, testConfig("ta-IN"), rec, tr)

	segs, _, _, err := m.transcribeSegments(context.Background(),
		"clip.mp3", windows("a.flac"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "[ta] hello world", segs[0].Text)
}

func TestTranscribeWindowTranslateToOverride(t *testing.T) {
	rec := newFakeRecognizer()
	rec.texts["a.flac"] = "hola"
	tr := &fakeTranslator{}

	cfg := testConfig("es-ES")
	cfg.TranslateTo = "fr"
	m := makeMaker(t, cfg, rec, tr)

	segs, _, _, err := m.transcribeSegments(context.Background(),
		"clip.mp3", windows("a.flac"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "[fr] hola", segs[0].Text)
}

func TestTranscribeWindowKeepsTranscriptWhenTranslationFails(t *testing.T) {
	rec := newFakeRecognizer()
	rec.texts["a.flac"] = "untranslated"
	tr := &fakeTranslator{err: errors.New("endpoint down")}

	m := makeMaker(t, testConfig("ta-IN"), rec, tr)

	segs, _, _, err := m.transcribeSegments(context.Background(),
		"clip.mp3", windows("a.flac"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "untranslated", segs[0].Text)
}

func TestTranscribeSegmentsCancelled(t *testing.T) {
	rec := newFakeRecognizer()
	for i := 0; i < 8; i++ {
		rec.texts[fmt.Sprintf("%d.flac", i)] = "x"
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := makeMaker(t, testConfig("en-US"), rec, &fakeTranslator{})

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = fmt.Sprintf("%d.flac", i)
	}

	_, _, _, err := m.transcribeSegments(ctx, "clip.mp3", windows(paths...))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessMissingFile(t *testing.T) {
	rec := newFakeRecognizer()
	m := makeMaker(t, testConfig("en-US"), rec, &fakeTranslator{})

	_, err := m.Process(context.Background(), "/nonexistent/file.mp3")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCacheDir(t *testing.T) {
	cfg := testConfig("en-US")
	cfg.OutputFolder = "/out"

	rec := newFakeRecognizer()
	m := makeMaker(t, cfg, rec, &fakeTranslator{})

	assert.Equal(t, "/out/.cache", m.CacheDir())
}

func TestIsSegmentReadyWAV(t *testing.T) {
	ready := &audio.MediaInfo{SampleRate: 16000, Channels: 1}
	assert.True(t, isSegmentReadyWAV("in.wav", ready))
	assert.True(t, isSegmentReadyWAV("in.WAV", ready))
	assert.False(t, isSegmentReadyWAV("in.mp3", ready))
	assert.False(t, isSegmentReadyWAV("in.wav", &audio.MediaInfo{SampleRate: 44100, Channels: 1}))
	assert.False(t, isSegmentReadyWAV("in.wav", &audio.MediaInfo{SampleRate: 16000, Channels: 2}))
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, isVideoFile("movie.mp4"))
	assert.True(t, isVideoFile("/tmp/clip.mkv"))
	assert.False(t, isVideoFile("song.mp3"))
	assert.False(t, isVideoFile("noext"))
}
