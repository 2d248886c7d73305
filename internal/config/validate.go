package config

import (
	"errors"
	"fmt"

	"avsub/internal/options"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.FontSize == 0 {
		return errors.New("subtitles.font_size must not be zero")
	}
	if _, err := options.ParseColor(c.Subtitles.PrimaryColor); err != nil {
		return fmt.Errorf("subtitles.primary_color: %w", err)
	}
	if _, err := options.ParseColor(c.Subtitles.OutlineColor); err != nil {
		return fmt.Errorf("subtitles.outline_color: %w", err)
	}
	if _, err := options.ParseAlignment(c.Subtitles.Position); err != nil {
		return fmt.Errorf("subtitles.position: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// OptionDefaults returns an OptionSet seeded with the configured subtitle
// defaults. Values were checked by Validate.
func (c *Config) OptionDefaults() options.OptionSet {
	opts := options.Default()
	opts.FontName = c.Subtitles.FontName
	opts.FontSize = c.Subtitles.FontSize
	if color, err := options.ParseColor(c.Subtitles.PrimaryColor); err == nil {
		opts.PrimaryColor = color
	}
	if color, err := options.ParseColor(c.Subtitles.OutlineColor); err == nil {
		opts.OutlineColor = color
	}
	if align, err := options.ParseAlignment(c.Subtitles.Position); err == nil {
		opts.Alignment = align
	}
	return opts
}
