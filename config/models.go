package config

import (
	"errors"
	"time"

	"github.com/kilianp07/citypredict/core/prediction"
)

// ModelsConfig locates the model artifacts.
type ModelsConfig struct {
	Dir   string           `json:"dir"`
	Files prediction.Files `json:"files"`
	// Strict refuses to start when any domain fails to load.
	Strict bool `json:"strict"`
}

func (c *ModelsConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "models"
	}
	c.Files.SetDefaults()
}

func (c ModelsConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("dir is required")
	}
	return nil
}

// HistoryConfig locates the historical water consumption dataset.
type HistoryConfig struct {
	Path        string        `json:"path"`
	ReadTimeout time.Duration `json:"read_timeout"`
}

func (c *HistoryConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "data/water_consumption.csv"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 2 * time.Second
	}
}

func (c HistoryConfig) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	return nil
}
