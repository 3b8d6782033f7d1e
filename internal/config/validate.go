package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if len(c.Tools.ExtractorCandidates) == 0 {
		return errors.New("tools.extractor_candidates must include at least one binary")
	}
	if strings.TrimSpace(c.Tools.Transcoder) == "" {
		return errors.New("tools.transcoder must be set")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if err := ensurePositiveMap(map[string]int{
		"conversion.info_timeout":    c.Conversion.InfoTimeout,
		"conversion.convert_timeout": c.Conversion.ConvertTimeout,
	}); err != nil {
		return err
	}
	if c.Conversion.MaxCaptureBytes <= 0 {
		return errors.New("conversion.max_capture_bytes must be positive")
	}
	if c.Conversion.AudioFormat == "" {
		return errors.New("conversion.audio_format must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
