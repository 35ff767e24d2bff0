package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kuroonai/submaker/pkg/utils"
)

// MediaFile describes one scanned media file.
type MediaFile struct {
	Path    string
	Name    string
	Ext     string
	Size    int64
	ModTime time.Time
	IsVideo bool
	IsAudio bool
}

// MediaScanner finds audio and video files in a directory.
type MediaScanner struct {
	AudioExtensions []string
	VideoExtensions []string
}

// NewMediaScanner creates a scanner covering the formats ffmpeg decodes for
// us.
func NewMediaScanner() *MediaScanner {
	return &MediaScanner{
		AudioExtensions: []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac"},
		VideoExtensions: []string{".mp4", ".mov", ".avi", ".mkv", ".flv", ".wmv"},
	}
}

// ScanDirectory lists media files directly inside dir (non-recursive).
// Hidden files are skipped.
func (s *MediaScanner) ScanDirectory(dir string) ([]MediaFile, error) {
	var mediaFiles []MediaFile

	utils.Debug("scanning directory: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			utils.Warn("reading file info: %v", err)
			continue
		}

		path := filepath.Join(dir, entry.Name())
		ext := strings.ToLower(filepath.Ext(path))

		isAudio := s.isAudioExt(ext)
		isVideo := s.isVideoExt(ext)

		if isAudio || isVideo {
			mediaFiles = append(mediaFiles, MediaFile{
				Path:    path,
				Name:    entry.Name(),
				Ext:     ext,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				IsVideo: isVideo,
				IsAudio: isAudio,
			})
		}
	}

	utils.Debug("scan found %d media files", len(mediaFiles))

	return mediaFiles, nil
}

// IsMediaFile reports whether path has a supported media extension.
func (s *MediaScanner) IsMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return s.isAudioExt(ext) || s.isVideoExt(ext)
}

// FilterNewFiles drops files whose paths are already in processedPaths.
func (s *MediaScanner) FilterNewFiles(files []MediaFile, processedPaths map[string]bool) []MediaFile {
	var newFiles []MediaFile

	for _, file := range files {
		if !processedPaths[file.Path] {
			newFiles = append(newFiles, file)
		}
	}

	return newFiles
}

func (s *MediaScanner) isAudioExt(ext string) bool {
	for _, audioExt := range s.AudioExtensions {
		if ext == audioExt {
			return true
		}
	}
	return false
}

func (s *MediaScanner) isVideoExt(ext string) bool {
	for _, videoExt := range s.VideoExtensions {
		if ext == videoExt {
			return true
		}
	}
	return false
}
