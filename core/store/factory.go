package store

import (
	"github.com/kilianp07/citypredict/core/factory"
)

// Config holds the settings shared by the store backends.
type Config struct {
	Path       string `json:"path"`
	Capacity   int    `json:"capacity"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var registry = factory.NewRegistry[Store]()

func init() {
	mustRegister("memory", func(conf map[string]any) (Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMemoryStore(c.Capacity), nil
	})
	mustRegister("jsonl", func(conf map[string]any) (Store, error) {
		c, err := decodeWithPath(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path)
	})
	mustRegister("jsonl_rotating", func(conf map[string]any) (Store, error) {
		c, err := decodeWithPath(conf)
		if err != nil {
			return nil, err
		}
		if c.MaxSizeMB <= 0 {
			c.MaxSizeMB = 10
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	mustRegister("sqlite", func(conf map[string]any) (Store, error) {
		c, err := decodeWithPath(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}

func mustRegister(name string, f factory.Factory[Store]) {
	if err := registry.Register(name, f); err != nil {
		panic(err)
	}
}

func decodeWithPath(conf map[string]any) (Config, error) {
	var c Config
	if err := factory.Decode(conf, &c); err != nil {
		return c, err
	}
	if c.Path == "" {
		return c, factory.MissingField("path")
	}
	return c, nil
}

// Register adds a store backend.
func Register(name string, f factory.Factory[Store]) error {
	return registry.Register(name, f)
}

// Types lists the registered backends.
func Types() []string { return registry.Names() }

// New creates the store described by cfg.
func New(cfg factory.ModuleConfig) (Store, error) {
	return registry.Create(cfg)
}
