package models

// Result summarizes the processing of a single media file.
type Result struct {
	FilePath      string            `json:"file_path"`
	JobID         string            `json:"job_id"`
	Service       string            `json:"service"`
	Language      string            `json:"language"`
	OutputFiles   map[string]string `json:"output_files"`
	SegmentCount  int               `json:"segment_count"`  // windows carrying text
	SkippedCount  int               `json:"skipped_count"`  // windows without usable speech
	DurationMs    int64             `json:"duration_ms"`    // audio duration
	ProcessTimeMs int64             `json:"process_time_ms"`
}
