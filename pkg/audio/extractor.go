package audio

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kuroonai/submaker/internal/ui"
	"github.com/kuroonai/submaker/pkg/utils"
)

// Segments are exported mono 16 kHz FLAC, which is what the speech endpoint
// expects.
const (
	segmentSampleRate = 16000
	segmentChannels   = 1
)

// ProgressCallback reports extraction progress.
type ProgressCallback func(current, total int, message string)

// Segment is one fixed-length window of the source audio.
type Segment struct {
	Index      int
	Start      float64 // seconds into the source
	End        float64
	OutputPath string
}

// PlanSegments divides duration into fixed windows of segmentLength seconds.
// The last window is clamped to the stream end; a trailing partial window is
// kept so the tail of the recording still gets subtitles.
func PlanSegments(duration float64, segmentLength int) []Segment {
	if duration <= 0 || segmentLength <= 0 {
		return nil
	}

	count := int(math.Ceil(duration / float64(segmentLength)))
	segments := make([]Segment, 0, count)

	for i := 0; i < count; i++ {
		start := float64(i * segmentLength)
		end := float64((i + 1) * segmentLength)
		if end > duration {
			end = duration
		}
		segments = append(segments, Segment{
			Index: i,
			Start: start,
			End:   end,
		})
	}

	return segments
}

// Extractor drives ffmpeg for format conversion and window export.
type Extractor struct {
	TempSegmentsDir  string
	ProgressCallback ProgressCallback
	ProgressManager  *ui.ProgressManager
	concurrencyLimit int
}

// NewExtractor creates an extractor writing segment files under
// tempSegmentsDir with at most workers concurrent ffmpeg processes.
func NewExtractor(tempSegmentsDir string, callback ProgressCallback, workers int) *Extractor {
	os.MkdirAll(tempSegmentsDir, 0755)

	if workers < 1 {
		workers = 1
	}

	return &Extractor{
		TempSegmentsDir:  tempSegmentsDir,
		ProgressCallback: callback,
		concurrencyLimit: workers,
	}
}

// SetProgressManager attaches a progress bar registry.
func (e *Extractor) SetProgressManager(manager *ui.ProgressManager) {
	e.ProgressManager = manager
}

// ConvertToWAV decodes any input container into a mono 16 kHz WAV inside the
// temp directory and returns its path.
func (e *Extractor) ConvertToWAV(ctx context.Context, inputPath string) (string, error) {
	baseName := utils.BaseNameWithoutExt(inputPath)
	wavPath := filepath.Join(e.TempSegmentsDir, baseName+".wav")

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-y",
		"-i", inputPath,
		"-ac", fmt.Sprintf("%d", segmentChannels),
		"-ar", fmt.Sprintf("%d", segmentSampleRate),
		wavPath,
	)

	utils.Info("converting %s to WAV", filepath.Base(inputPath))

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("converting to WAV: %w", err)
	}

	if !utils.CheckFileExists(wavPath) {
		return "", fmt.Errorf("converted WAV file missing: %s", wavPath)
	}

	return wavPath, nil
}

// ExtractAudioFromVideo pulls the audio track out of a video container as
// mp3. It returns the audio path and whether a new file was produced.
func (e *Extractor) ExtractAudioFromVideo(ctx context.Context, videoPath, outputFolder string) (string, bool, error) {
	baseName := utils.BaseNameWithoutExt(videoPath)
	audioPath := filepath.Join(outputFolder, baseName+".mp3")

	if utils.CheckFileExists(audioPath) {
		utils.Info("audio already extracted: %s", audioPath)
		return audioPath, false, nil
	}

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		audioPath,
		"-y",
	)

	utils.Info("extracting audio from video: %s", filepath.Base(videoPath))

	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("extracting audio: %w", err)
	}

	if !utils.CheckFileExists(audioPath) {
		return "", false, fmt.Errorf("extracted audio file missing: %s", audioPath)
	}

	utils.Info("audio extracted: %s", audioPath)
	return audioPath, true, nil
}

// SplitAudio exports the planned windows of wavPath as FLAC segment files
// using a bounded worker pool. The returned slice is ordered by index.
func (e *Extractor) SplitAudio(ctx context.Context, wavPath string, segmentLength int) ([]Segment, error) {
	baseName := utils.BaseNameWithoutExt(wavPath)

	duration, err := Duration(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("getting audio duration: %w", err)
	}

	segments := PlanSegments(duration, segmentLength)
	if len(segments) == 0 {
		return nil, fmt.Errorf("audio %s yields no segments", wavPath)
	}

	for i := range segments {
		segments[i].OutputPath = filepath.Join(e.TempSegmentsDir,
			fmt.Sprintf("%s_part%03d.flac", baseName, segments[i].Index+1))
	}

	utils.Info("splitting %s: %.1fs into %d windows of %ds",
		filepath.Base(wavPath), duration, len(segments), segmentLength)

	progressID := fmt.Sprintf("split_%s", baseName)
	if e.ProgressManager != nil {
		e.ProgressManager.CreateProgressBar(progressID, len(segments),
			fmt.Sprintf("split %s", filepath.Base(wavPath)), "starting")
	}
	if e.ProgressCallback != nil {
		e.ProgressCallback(0, len(segments), "splitting audio")
	}

	jobs := make(chan Segment, len(segments))
	results := make(chan Segment, len(segments))
	errs := make(chan error, len(segments))
	progress := make(chan struct{}, len(segments))

	workerCount := e.concurrencyLimit
	if workerCount > len(segments) {
		workerCount = len(segments)
	}

	var wg sync.WaitGroup

	// dedicated progress drainer so bar updates stay serialized
	done := make(chan struct{})
	go func() {
		defer close(done)
		completed := 0
		for range progress {
			completed++
			if e.ProgressManager != nil {
				e.ProgressManager.UpdateProgressBar(progressID, completed,
					fmt.Sprintf("%d/%d windows", completed, len(segments)))
			}
			if e.ProgressCallback != nil {
				e.ProgressCallback(completed, len(segments),
					fmt.Sprintf("exported window %d/%d", completed, len(segments)))
			}
		}
	}()

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.segmentWorker(ctx, wavPath, jobs, results, errs, progress)
		}()
	}

	for _, seg := range segments {
		jobs <- seg
	}
	close(jobs)

	wg.Wait()
	close(results)
	close(errs)
	close(progress)
	<-done

	var firstErr error
	for err := range errs {
		if firstErr == nil {
			firstErr = err
		}
		utils.Error("splitting audio: %v", err)
	}

	if firstErr != nil {
		if e.ProgressManager != nil {
			e.ProgressManager.CompleteProgressBar(progressID, "split failed")
		}
		return nil, firstErr
	}

	exported := make([]Segment, 0, len(segments))
	for seg := range results {
		exported = append(exported, seg)
	}
	sort.Slice(exported, func(i, j int) bool { return exported[i].Index < exported[j].Index })

	if e.ProgressManager != nil {
		e.ProgressManager.CompleteProgressBar(progressID,
			fmt.Sprintf("done - %d windows", len(exported)))
	}

	return exported, nil
}

func (e *Extractor) segmentWorker(ctx context.Context, inputPath string,
	jobs <-chan Segment, results chan<- Segment, errs chan<- error, progress chan<- struct{}) {

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			errs <- err
			return
		}

		cmd := exec.CommandContext(ctx,
			"ffmpeg",
			"-y",
			"-ss", fmt.Sprintf("%.3f", job.Start),
			"-t", fmt.Sprintf("%.3f", job.End-job.Start),
			"-i", inputPath,
			"-ac", fmt.Sprintf("%d", segmentChannels),
			"-ar", fmt.Sprintf("%d", segmentSampleRate),
			"-c:a", "flac",
			job.OutputPath,
		)

		if err := cmd.Run(); err != nil {
			errs <- fmt.Errorf("exporting window %d: %w", job.Index+1, err)
			continue
		}

		utils.Debug("exported window: %s", filepath.Base(job.OutputPath))
		results <- job
		progress <- struct{}{}
	}
}
