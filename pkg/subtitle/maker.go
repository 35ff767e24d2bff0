package subtitle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kuroonai/submaker/internal/ui"
	"github.com/kuroonai/submaker/pkg/asr"
	"github.com/kuroonai/submaker/pkg/audio"
	"github.com/kuroonai/submaker/pkg/export"
	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/utils"
)

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Maker runs the whole subtitle pipeline for one media file: decode, window,
// recognize, translate, export.
type Maker struct {
	Config          *models.Config
	Selector        *asr.Selector
	Translator      Translator
	ProgressManager *ui.ProgressManager

	errorHandler *utils.ErrorHandler
	srtExporter  *export.SRTExporter
	jsonExporter *export.JSONExporter
	textExporter *export.TextExporter
}

// NewMaker wires a pipeline from the configuration. The selector must have
// at least one recognition service registered.
func NewMaker(config *models.Config, selector *asr.Selector, translator Translator, pm *ui.ProgressManager) *Maker {
	return &Maker{
		Config:          config,
		Selector:        selector,
		Translator:      translator,
		ProgressManager: pm,
		errorHandler:    utils.NewErrorHandler(config.MaxRetries, config.RetryDelay),
		srtExporter:     export.NewSRTExporter(config.OutputFolder),
		jsonExporter:    export.NewJSONExporter(config.OutputFolder, models.TranslationTarget(config.Language)),
		textExporter:    export.NewTextExporter(config.OutputFolder, true),
	}
}

// CacheDir returns where recognition results are cached between runs.
func (m *Maker) CacheDir() string {
	return filepath.Join(m.Config.OutputFolder, ".cache")
}

// Process subtitles one media file. Video containers get their audio track
// extracted first. Windows that fail or carry no speech are skipped; the
// file as a whole only fails when nothing could be processed at all.
func (m *Maker) Process(ctx context.Context, mediaPath string) (*models.Result, error) {
	startedAt := time.Now()

	if !utils.CheckFileExists(mediaPath) {
		return nil, fmt.Errorf("media file does not exist: %s", mediaPath)
	}

	jobID := uuid.NewString()

	tempRoot := m.Config.TempDir
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	segmentsDir := filepath.Join(tempRoot, "submaker-"+jobID)

	extractor := audio.NewExtractor(segmentsDir, nil, m.Config.MaxWorkers)
	extractor.SetProgressManager(m.ProgressManager)

	if !m.Config.KeepTemp {
		defer os.RemoveAll(segmentsDir)
	}

	utils.WithFields(map[string]interface{}{
		"file": mediaPath,
		"job":  jobID,
		"lang": m.Config.Language,
	}).Info("processing media file")

	audioPath := mediaPath
	if isVideoFile(mediaPath) {
		extracted, _, err := extractor.ExtractAudioFromVideo(ctx, mediaPath, segmentsDir)
		if err != nil {
			return nil, err
		}
		audioPath = extracted
	}

	info, err := audio.Probe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	utils.Info("audio length: %s", utils.FormatTimeDuration(info.Duration))

	wavPath := audioPath
	if !isSegmentReadyWAV(audioPath, info) {
		wavPath, err = extractor.ConvertToWAV(ctx, audioPath)
		if err != nil {
			return nil, err
		}
	}

	segments, err := extractor.SplitAudio(ctx, wavPath, m.Config.SegmentLength)
	if err != nil {
		return nil, err
	}

	transcribed, serviceName, skipped, err := m.transcribeSegments(ctx, mediaPath, segments)
	if err != nil {
		return nil, err
	}

	if len(transcribed) == 0 {
		return nil, fmt.Errorf("no speech recognized in %s", mediaPath)
	}

	outputFiles, err := m.exportResults(transcribed, mediaPath)
	if err != nil {
		return nil, err
	}

	result := &models.Result{
		FilePath:      mediaPath,
		JobID:         jobID,
		Service:       serviceName,
		Language:      m.Config.Language,
		OutputFiles:   outputFiles,
		SegmentCount:  len(transcribed),
		SkippedCount:  skipped,
		DurationMs:    int64(info.Duration * 1000),
		ProcessTimeMs: time.Since(startedAt).Milliseconds(),
	}

	utils.Info("finished %s: %d/%d windows carried speech in %s",
		filepath.Base(mediaPath), result.SegmentCount, result.SegmentCount+result.SkippedCount,
		utils.FormatTimeDuration(float64(result.ProcessTimeMs)/1000))

	return result, nil
}

// transcribeSegments recognizes and translates each window through a
// bounded worker pool, preserving window order in the returned slice.
func (m *Maker) transcribeSegments(ctx context.Context, mediaPath string, segments []audio.Segment) ([]models.DataSegment, string, int, error) {
	baseName := utils.BaseNameWithoutExt(mediaPath)
	progressID := "transcribe_" + baseName

	if m.ProgressManager != nil {
		m.ProgressManager.CreateProgressBar(progressID, len(segments),
			fmt.Sprintf("transcribe %s", filepath.Base(mediaPath)),
			fmt.Sprintf("0/%d windows", len(segments)))
	}

	serviceName, creator, err := m.Selector.Resolve(m.Config.ASRService)
	if err != nil {
		return nil, "", 0, err
	}

	results := make([]models.DataSegment, len(segments))
	ok := make([]bool, len(segments))

	jobs := make(chan int, len(segments))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	workerCount := m.Config.MaxWorkers
	if workerCount > len(segments) {
		workerCount = len(segments)
	}

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}

				seg, err := m.transcribeWindow(ctx, serviceName, creator, segments[i])
				if err != nil {
					if errors.Is(err, asr.ErrNoSpeech) {
						utils.Debug("no speech detected in window %d", i+1)
					} else if errors.Is(err, context.Canceled) {
						return
					} else {
						utils.Warn("window %d failed: %v", i+1, err)
					}
				} else {
					results[i] = seg
					ok[i] = true
				}

				progressMu.Lock()
				completed++
				done := completed
				progressMu.Unlock()

				if m.ProgressManager != nil {
					m.ProgressManager.UpdateProgressBar(progressID, done,
						fmt.Sprintf("%d/%d windows", done, len(segments)))
				}
			}
		}()
	}

	for i := range segments {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if m.ProgressManager != nil {
		m.ProgressManager.CompleteProgressBar(progressID, "transcription done")
	}

	if err := ctx.Err(); err != nil {
		return nil, serviceName, 0, err
	}

	ordered := make([]models.DataSegment, 0, len(segments))
	skipped := 0
	for i := range segments {
		if ok[i] {
			ordered = append(ordered, results[i])
		} else {
			skipped++
		}
	}

	return ordered, serviceName, skipped, nil
}

// transcribeWindow runs recognition and, when the target language is not
// English, translation for a single window. A failed translation keeps the
// untranslated transcript rather than dropping the window.
func (m *Maker) transcribeWindow(ctx context.Context, serviceName string, creator asr.ServiceCreator, seg audio.Segment) (models.DataSegment, error) {
	var text string

	err := m.errorHandler.Retry(ctx, fmt.Sprintf("recognize window %d", seg.Index+1), func() error {
		service, err := creator(seg.OutputPath, m.Config.UseCache)
		if err != nil {
			return err
		}

		recognized, err := service.Recognize(ctx, nil)
		if errors.Is(err, asr.ErrNoSpeech) {
			// nothing to retry, the window is silent
			text = ""
			return nil
		}
		if err != nil {
			return err
		}

		var parts []string
		for _, r := range recognized {
			if r.Text != "" {
				parts = append(parts, r.Text)
			}
		}
		text = strings.Join(parts, " ")
		return nil
	})

	m.Selector.ReportResult(serviceName, err == nil)

	if err != nil {
		return models.DataSegment{}, err
	}
	if text == "" {
		return models.DataSegment{}, asr.ErrNoSpeech
	}

	if !models.IsEnglish(m.Config.Language) {
		target := m.Config.TranslateTo
		if target == "" {
			target = models.TranslationTarget(m.Config.Language)
		}

		translated := text
		terr := m.errorHandler.Retry(ctx, fmt.Sprintf("translate window %d", seg.Index+1), func() error {
			var err error
			translated, err = m.Translator.Translate(ctx, text, "auto", target)
			return err
		})
		if terr != nil {
			utils.Warn("translating window %d failed, keeping transcript: %v", seg.Index+1, terr)
		} else {
			text = translated
		}
	}

	return models.DataSegment{
		Text:      text,
		StartTime: seg.Start,
		EndTime:   seg.End,
	}, nil
}

func (m *Maker) exportResults(segments []models.DataSegment, mediaPath string) (map[string]string, error) {
	outputFiles := make(map[string]string)

	srtPath, err := m.srtExporter.ExportSRT(segments, mediaPath)
	if err != nil {
		return nil, err
	}
	outputFiles["srt"] = srtPath

	if m.Config.ExportJSON {
		jsonPath, err := m.jsonExporter.ExportJSON(segments, mediaPath)
		if err != nil {
			utils.Warn("exporting JSON transcript: %v", err)
		} else {
			outputFiles["json"] = jsonPath
		}
	}

	if m.Config.ExportTXT {
		txtPath, err := m.textExporter.ExportText(segments, mediaPath)
		if err != nil {
			utils.Warn("exporting text transcript: %v", err)
		} else {
			outputFiles["txt"] = txtPath
		}
	}

	return outputFiles, nil
}

// isSegmentReadyWAV reports whether the input already is the mono 16 kHz WAV
// the segment exporter would produce, so conversion can be skipped.
func isSegmentReadyWAV(path string, info *audio.MediaInfo) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav") &&
		info.SampleRate == 16000 && info.Channels == 1
}

var videoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".flv", ".wmv"}

func isVideoFile(path string) bool {
	ext := filepath.Ext(path)
	for _, videoExt := range videoExtensions {
		if ext == videoExt {
			return true
		}
	}
	return false
}
