package models

// DataSegment is one transcribed (and possibly translated) stretch of the
// source audio. Times are offsets into the original file, in seconds.
type DataSegment struct {
	Text      string
	StartTime float64
	EndTime   float64
}

// Duration returns the segment length in seconds.
func (s DataSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}
