package asr

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/utils"
)

// BaseASR carries the pieces every recognizer needs: the audio bytes and a
// content-addressed cache of previous results.
type BaseASR struct {
	AudioPath  string
	FileBinary []byte
	CRC32      uint32
	CRC32Hex   string
	UseCache   bool
}

// NewBaseASR loads the audio file and computes its checksum.
func NewBaseASR(audioPath string, useCache bool) (*BaseASR, error) {
	baseASR := &BaseASR{
		AudioPath: audioPath,
		UseCache:  useCache,
	}

	if err := baseASR.loadFile(); err != nil {
		return nil, err
	}

	baseASR.calculateCRC32()
	return baseASR, nil
}

func (b *BaseASR) loadFile() error {
	if _, err := os.Stat(b.AudioPath); err != nil {
		return fmt.Errorf("invalid audio path %s: %w", b.AudioPath, err)
	}

	data, err := os.ReadFile(b.AudioPath)
	if err != nil {
		return fmt.Errorf("reading audio file: %w", err)
	}
	b.FileBinary = data

	return nil
}

func (b *BaseASR) calculateCRC32() {
	b.CRC32 = crc32.ChecksumIEEE(b.FileBinary)
	b.CRC32Hex = fmt.Sprintf("%08x", b.CRC32)
	utils.Debug("audio checksum: %s", b.CRC32Hex)
}

// GetCacheKey builds a cache file name from the service prefix and content
// checksum, so renaming the file still hits the cache.
func (b *BaseASR) GetCacheKey(prefix string) string {
	return fmt.Sprintf("%s-%s.json", prefix, b.CRC32Hex)
}

// LoadFromCache returns previously cached segments for this audio, if any.
func (b *BaseASR) LoadFromCache(cacheDir, cacheKey string) ([]models.DataSegment, bool) {
	if !b.UseCache {
		return nil, false
	}

	cacheFilePath := filepath.Join(cacheDir, cacheKey)

	var segments []models.DataSegment
	found, err := utils.LoadJSONFile(cacheFilePath, &segments)
	if err != nil {
		utils.Debug("unreadable cache file %s: %v", cacheFilePath, err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	return segments, true
}

// SaveToCache stores segments for this audio's checksum.
func (b *BaseASR) SaveToCache(cacheDir, cacheKey string, segments []models.DataSegment) error {
	if !b.UseCache {
		return nil
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	return utils.SaveJSONFile(filepath.Join(cacheDir, cacheKey), segments)
}
