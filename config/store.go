package config

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/kilianp07/citypredict/core/factory"
	"github.com/kilianp07/citypredict/core/store"
)

// StoreConfig defines the in-memory prediction store and the optional
// durable audit log.
type StoreConfig struct {
	// Capacity bounds the records kept per domain.
	Capacity int `json:"capacity"`
	// Audit selects an append-only backend ("jsonl", "jsonl_rotating",
	// "sqlite"). An empty type disables it.
	Audit factory.ModuleConfig `json:"audit"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = store.DefaultCapacity
	}
}

func (c StoreConfig) Validate() error {
	if c.Audit.Type == "" {
		return nil
	}
	if !lo.Contains(store.Types(), c.Audit.Type) {
		return fmt.Errorf("unknown audit backend %s", c.Audit.Type)
	}
	return nil
}

// AuditEnabled reports whether an audit backend is configured.
func (c StoreConfig) AuditEnabled() bool { return c.Audit.Type != "" }
