package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/utils"
)

// Entries that carry no speech never make it into the subtitle file, but an
// endless subtitle is just as bad: an entry whose end never comes keeps the
// last line on screen. Force a minimum display window instead.
const minEntrySeconds = 5.0

// SRTExporter writes recognition results as SubRip subtitle files.
type SRTExporter struct {
	OutputFolder string
}

// NewSRTExporter creates an exporter writing into outputFolder.
func NewSRTExporter(outputFolder string) *SRTExporter {
	return &SRTExporter{
		OutputFolder: outputFolder,
	}
}

// FormatSRTTime formats seconds as the SubRip timestamp HH:MM:SS,mmm.
func (e *SRTExporter) FormatSRTTime(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := int(seconds) % 60
	milliseconds := int(math.Round((seconds - math.Floor(seconds)) * 1000))
	if milliseconds >= 1000 {
		milliseconds = 999
	}

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, milliseconds)
}

// GenerateSRTContent renders segments as SubRip text. Empty segments are
// dropped and sequence numbers stay dense.
func (e *SRTExporter) GenerateSRTContent(segments []models.DataSegment) string {
	var srtLines []string

	seq := 0
	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		startTime := segment.StartTime
		endTime := segment.EndTime

		if endTime <= startTime {
			endTime = startTime + minEntrySeconds
		}

		seq++
		srtLines = append(srtLines, fmt.Sprintf("%d", seq))
		srtLines = append(srtLines, fmt.Sprintf("%s --> %s",
			e.FormatSRTTime(startTime), e.FormatSRTTime(endTime)))
		srtLines = append(srtLines, text)
		srtLines = append(srtLines, "")
	}

	return strings.Join(srtLines, "\n")
}

// ExportSRT writes segments to <base>.srt in the output folder and returns
// the file path.
func (e *SRTExporter) ExportSRT(segments []models.DataSegment, sourcePath string) (string, error) {
	if err := os.MkdirAll(e.OutputFolder, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	baseName := utils.BaseNameWithoutExt(sourcePath)
	outputFile := filepath.Join(e.OutputFolder, baseName+".srt")

	srtContent := e.GenerateSRTContent(segments)

	if err := os.WriteFile(outputFile, []byte(srtContent), 0644); err != nil {
		return "", fmt.Errorf("writing SRT file: %w", err)
	}

	utils.Info("wrote subtitles: %s", outputFile)
	return outputFile, nil
}
