package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/utils"
)

// TextExporter writes recognition results as a plain-text transcript.
type TextExporter struct {
	OutputFolder      string
	IncludeTimestamps bool
}

// NewTextExporter creates an exporter writing into outputFolder.
func NewTextExporter(outputFolder string, includeTimestamps bool) *TextExporter {
	return &TextExporter{
		OutputFolder:      outputFolder,
		IncludeTimestamps: includeTimestamps,
	}
}

// GenerateTextContent renders segments as a readable transcript with a
// small header.
func (e *TextExporter) GenerateTextContent(segments []models.DataSegment, sourcePath string) string {
	var out strings.Builder

	out.WriteString("# " + utils.BaseNameWithoutExt(sourcePath))
	out.WriteString("\n# generated: " + time.Now().Format("2006-01-02 15:04:05"))
	out.WriteString("\n\n")

	var lines []string
	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		if e.IncludeTimestamps {
			stamp := fmt.Sprintf("[%s-%s]",
				utils.FormatTime(segment.StartTime),
				utils.FormatTime(segment.EndTime))
			lines = append(lines, stamp+" "+text)
		} else {
			lines = append(lines, text)
		}
	}

	out.WriteString(strings.Join(lines, "\n\n"))
	out.WriteString("\n")

	return out.String()
}

// ExportText writes segments to <base>.txt in the output folder and returns
// the file path.
func (e *TextExporter) ExportText(segments []models.DataSegment, sourcePath string) (string, error) {
	if err := os.MkdirAll(e.OutputFolder, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	baseName := utils.BaseNameWithoutExt(sourcePath)
	outputFile := filepath.Join(e.OutputFolder, baseName+".txt")

	content := e.GenerateTextContent(segments, sourcePath)

	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing text file: %w", err)
	}

	utils.Info("wrote transcript: %s", outputFile)
	return outputFile, nil
}
