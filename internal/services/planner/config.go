// File: internal/services/planner/config.go
package planner

import "fmt"

type Config struct {
	TitleMaxRunes int
	MaxPhotoBytes int64
}

func (c *Config) Validate() error {
	if c.TitleMaxRunes <= 0 {
		return fmt.Errorf("title_max_runes must be positive")
	}
	if c.MaxPhotoBytes <= 0 {
		return fmt.Errorf("max_photo_bytes must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		TitleMaxRunes: 200,
		MaxPhotoBytes: 5 << 20,
	}
}
