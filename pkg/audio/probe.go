package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// MediaInfo holds the ffprobe view of a media file.
type MediaInfo struct {
	Path       string
	Name       string
	Format     string
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	Size       int64
}

// Probe reads stream and format information via ffprobe.
func Probe(ctx context.Context, filePath string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "stream=sample_rate,channels:format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("probing media info: %w", err)
	}

	info := &MediaInfo{
		Path: filePath,
		Name: filepath.Base(filePath),
	}

	if ext := filepath.Ext(filePath); ext != "" {
		info.Format = ext[1:]
	}

	// ffprobe prints stream entries before format entries; audio-only files
	// yield sample_rate, channels, duration in that order.
	var values []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && line != "N/A" {
			values = append(values, line)
		}
	}

	for _, v := range values {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			switch {
			case info.SampleRate == 0 && f > 1000 && f == float64(int(f)):
				info.SampleRate = int(f)
			case info.Channels == 0 && f >= 1 && f <= 8 && f == float64(int(f)):
				info.Channels = int(f)
			default:
				info.Duration = f
			}
		}
	}

	if fileInfo, err := os.Stat(filePath); err == nil {
		info.Size = fileInfo.Size()
	}

	if info.Duration <= 0 {
		return nil, fmt.Errorf("could not determine duration of %s", filePath)
	}

	return info, nil
}

// Duration returns only the duration of a media file in seconds.
func Duration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probing duration: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", strings.TrimSpace(string(output)), err)
	}

	return duration, nil
}
