package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/utils"
)

// TranscriptSegment is one timed piece of the transcript.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptResult is the machine-readable form of a whole transcription.
type TranscriptResult struct {
	Language string              `json:"language,omitempty"`
	FullText string              `json:"full_text"`
	Segments []TranscriptSegment `json:"segments"`
}

// JSONExporter writes recognition results as JSON transcripts.
type JSONExporter struct {
	OutputFolder string
	Language     string
}

// NewJSONExporter creates an exporter writing into outputFolder.
func NewJSONExporter(outputFolder, language string) *JSONExporter {
	return &JSONExporter{
		OutputFolder: outputFolder,
		Language:     language,
	}
}

// GenerateJSONContent builds the TranscriptResult for segments.
func (e *JSONExporter) GenerateJSONContent(segments []models.DataSegment) TranscriptResult {
	result := TranscriptResult{
		Language: e.Language,
		Segments: make([]TranscriptSegment, 0, len(segments)),
	}

	var fullTextBuilder strings.Builder

	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		if fullTextBuilder.Len() > 0 {
			fullTextBuilder.WriteString(" ")
		}
		fullTextBuilder.WriteString(text)

		endTime := segment.EndTime
		if endTime <= segment.StartTime {
			endTime = segment.StartTime + minEntrySeconds
		}

		result.Segments = append(result.Segments, TranscriptSegment{
			Start: segment.StartTime,
			End:   endTime,
			Text:  text,
		})
	}

	result.FullText = fullTextBuilder.String()

	return result
}

// ExportJSON writes segments to <base>.json in the output folder and
// returns the file path.
func (e *JSONExporter) ExportJSON(segments []models.DataSegment, sourcePath string) (string, error) {
	if err := os.MkdirAll(e.OutputFolder, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	baseName := utils.BaseNameWithoutExt(sourcePath)
	outputFile := filepath.Join(e.OutputFolder, baseName+".json")

	if err := utils.SaveJSONFile(outputFile, e.GenerateJSONContent(segments)); err != nil {
		return "", err
	}

	utils.Info("wrote JSON transcript: %s", outputFile)
	return outputFile, nil
}
