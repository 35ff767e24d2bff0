package subtitle

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/scanner"
	"github.com/kuroonai/submaker/pkg/utils"
)

// BatchResult is the outcome for one file of a batch run.
type BatchResult struct {
	FilePath    string
	Success     bool
	Result      *models.Result
	Error       error
	ProcessTime time.Duration
}

// BatchProgressCallback is invoked before (result == nil) and after each
// file of a batch.
type BatchProgressCallback func(current, total int, filename string, result *BatchResult)

// BatchProcessor subtitles every media file in a directory through a shared
// Maker.
type BatchProcessor struct {
	MediaDir         string
	Maker            *Maker
	MaxConcurrency   int
	ProgressCallback BatchProgressCallback

	mu        sync.Mutex
	processed map[string]bool
}

// NewBatchProcessor creates a batch runner over mediaDir.
func NewBatchProcessor(mediaDir string, maker *Maker, callback BatchProgressCallback) *BatchProcessor {
	concurrency := maker.Config.MaxWorkers
	if concurrency > 4 {
		// each file already fans out into segment workers
		concurrency = 4
	}

	return &BatchProcessor{
		MediaDir:         mediaDir,
		Maker:            maker,
		MaxConcurrency:   concurrency,
		ProgressCallback: callback,
		processed:        make(map[string]bool),
	}
}

// ProcessAll subtitles every media file found in the directory.
func (p *BatchProcessor) ProcessAll(ctx context.Context) ([]BatchResult, error) {
	mediaScanner := scanner.NewMediaScanner()
	files, err := mediaScanner.ScanDirectory(p.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("scanning media directory: %w", err)
	}

	if len(files) == 0 {
		utils.Info("no media files found in %s", p.MediaDir)
		return []BatchResult{}, nil
	}

	pm := p.Maker.ProgressManager
	if pm != nil {
		pm.CreateProgressBar("batch_overall", len(files),
			"overall", fmt.Sprintf("0/%d files", len(files)))
	}

	results := make(chan BatchResult, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.MaxConcurrency)

	var doneMu sync.Mutex
	doneCount := 0

	for i, file := range files {
		wg.Add(1)
		sem <- struct{}{}

		go func(index int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			filename := filepath.Base(path)

			if p.ProgressCallback != nil {
				p.ProgressCallback(index+1, len(files), filename, nil)
			}

			result := p.ProcessSingleFile(ctx, path)

			if p.ProgressCallback != nil {
				p.ProgressCallback(index+1, len(files), filename, &result)
			}

			doneMu.Lock()
			doneCount++
			done := doneCount
			doneMu.Unlock()

			if pm != nil {
				pm.UpdateProgressBar("batch_overall", done,
					fmt.Sprintf("%d/%d files", done, len(files)))
			}

			results <- result
		}(i, file.Path)
	}

	wg.Wait()
	close(results)

	if pm != nil {
		pm.CompleteProgressBar("batch_overall", "all files processed")
	}

	allResults := make([]BatchResult, 0, len(files))
	for result := range results {
		allResults = append(allResults, result)
	}

	return allResults, nil
}

// ProcessSingleFile subtitles one file and records it as processed.
func (p *BatchProcessor) ProcessSingleFile(ctx context.Context, filePath string) BatchResult {
	startTime := time.Now()

	result := BatchResult{FilePath: filePath}

	res, err := p.Maker.Process(ctx, filePath)
	result.ProcessTime = time.Since(startTime)

	if err != nil {
		result.Error = err
		utils.Error("processing %s: %v", filepath.Base(filePath), err)
		return result
	}

	result.Success = true
	result.Result = res

	p.mu.Lock()
	p.processed[filePath] = true
	p.mu.Unlock()

	return result
}

// IsRecognizedFile reports whether this batch run already handled the path.
func (p *BatchProcessor) IsRecognizedFile(filePath string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed[filePath]
}
