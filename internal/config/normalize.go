package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeConversion()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeTools() {
	candidates := make([]string, 0, len(c.Tools.ExtractorCandidates))
	for _, candidate := range c.Tools.ExtractorCandidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	if len(candidates) == 0 {
		candidates = defaultExtractorCandidates()
	}
	c.Tools.ExtractorCandidates = candidates

	if c.Tools.Transcoder = strings.TrimSpace(c.Tools.Transcoder); c.Tools.Transcoder == "" {
		c.Tools.Transcoder = defaultTranscoder
	}
}

func (c *Config) normalizeConversion() {
	if c.Conversion.InfoTimeout <= 0 {
		c.Conversion.InfoTimeout = defaultInfoTimeout
	}
	if c.Conversion.ConvertTimeout <= 0 {
		c.Conversion.ConvertTimeout = defaultConvertTimeout
	}
	if c.Conversion.MaxCaptureBytes <= 0 {
		c.Conversion.MaxCaptureBytes = defaultMaxCaptureBytes
	}
	c.Conversion.AudioFormat = strings.ToLower(strings.TrimSpace(c.Conversion.AudioFormat))
	if c.Conversion.AudioFormat == "" {
		c.Conversion.AudioFormat = defaultAudioFormat
	}
	if c.Conversion.AudioQuality = strings.TrimSpace(c.Conversion.AudioQuality); c.Conversion.AudioQuality == "" {
		c.Conversion.AudioQuality = defaultAudioQuality
	}
}

func (c *Config) normalizeServer() {
	if c.Server.ConvertRatePerMinute <= 0 {
		c.Server.ConvertRatePerMinute = defaultConvertRate
	}
	if c.Server.ConvertBurst <= 0 {
		c.Server.ConvertBurst = defaultConvertBurst
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
