package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all tunables for a subtitle run. It is loaded from a JSON
// file and then overridden by command-line flags.
type Config struct {
	OutputFolder    string  `json:"output_folder"`     // where subtitle files are written
	TempDir         string  `json:"temp_dir"`          // scratch space for WAV/FLAC segments
	Language        string  `json:"language"`          // recognition language code, e.g. en-US
	SegmentLength   int     `json:"segment_length"`    // window length in seconds
	TranslateTo     string  `json:"translate_to"`      // override translation target, empty = derive from Language
	MaxRetries      int     `json:"max_retries"`       // per API call
	RetryDelay      float64 `json:"retry_delay"`       // seconds, grows linearly per attempt
	MaxWorkers      int     `json:"max_workers"`       // segment pool size
	ASRService      string  `json:"asr_service"`       // service name or "auto"
	UseCache        bool    `json:"use_cache"`         // reuse recognition results keyed by content checksum
	ExportJSON      bool    `json:"export_json"`
	ExportTXT       bool    `json:"export_txt"`
	ShowProgress    bool    `json:"show_progress"`
	KeepTemp        bool    `json:"keep_temp"`         // keep intermediate WAV/FLAC files
	WatchDebounceMs int     `json:"watch_debounce_ms"` // quiescence window for watch mode
	LogLevel        string  `json:"log_level"`
	LogFile         string  `json:"log_file"`
}

// ConfigValidationError reports a single invalid field.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s - %s", e.Field, e.Message)
}

// NewDefaultConfig returns the configuration used when no file is given.
func NewDefaultConfig() *Config {
	return &Config{
		OutputFolder:    "./output",
		TempDir:         "",
		Language:        "en-US",
		SegmentLength:   10,
		TranslateTo:     "",
		MaxRetries:      3,
		RetryDelay:      1.0,
		MaxWorkers:      4,
		ASRService:      "auto",
		UseCache:        false,
		ExportJSON:      false,
		ExportTXT:       false,
		ShowProgress:    true,
		KeepTemp:        false,
		WatchDebounceMs: 2000,
		LogLevel:        "INFO",
		LogFile:         "",
	}
}

// Validate checks field ranges and creates the output folder if missing.
func (c *Config) Validate() error {
	if err := ensureDirExists(c.OutputFolder); err != nil {
		return &ConfigValidationError{"OutputFolder", err.Error()}
	}

	if c.Language == "" {
		return &ConfigValidationError{"Language", "language code is required"}
	}

	if c.SegmentLength < 1 || c.SegmentLength > 300 {
		return &ConfigValidationError{"SegmentLength", "must be between 1 and 300 seconds"}
	}

	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return &ConfigValidationError{"MaxRetries", "must be between 1 and 10"}
	}

	if c.RetryDelay < 0.1 || c.RetryDelay > 10.0 {
		return &ConfigValidationError{"RetryDelay", "must be between 0.1 and 10.0 seconds"}
	}

	if c.MaxWorkers < 1 || c.MaxWorkers > 16 {
		return &ConfigValidationError{"MaxWorkers", "must be between 1 and 16"}
	}

	if c.WatchDebounceMs < 100 || c.WatchDebounceMs > 60000 {
		return &ConfigValidationError{"WatchDebounceMs", "must be between 100 and 60000"}
	}

	return nil
}

// LoadFromFile loads and validates a JSON configuration file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return c.Validate()
}

// SaveToFile writes the configuration as indented JSON.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Update applies a partial update, rolling back on validation failure.
// Round-tripping through JSON keeps the map-to-struct mapping consistent
// with the file format.
func (c *Config) Update(updates map[string]interface{}) error {
	prev := *c

	updateBytes, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("serializing config update: %w", err)
	}

	if err := json.Unmarshal(updateBytes, c); err != nil {
		*c = prev
		return fmt.Errorf("applying config update: %w", err)
	}

	if err := c.Validate(); err != nil {
		*c = prev
		return err
	}

	return nil
}

// Reset restores the default configuration.
func (c *Config) Reset() {
	*c = *NewDefaultConfig()
}

func ensureDirExists(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}

	return nil
}
