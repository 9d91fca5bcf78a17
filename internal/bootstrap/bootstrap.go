// Package bootstrap opens the configured collection backend for the binaries.
package bootstrap

import (
	"fmt"

	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/adapter/storage/bolt"
	"github.com/its-jojoo/otterboard/internal/adapter/storage/memory"
	"github.com/its-jojoo/otterboard/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/otterboard/internal/config"
	"github.com/its-jojoo/otterboard/internal/core"
)

// OpenBackend returns the KV backend named by cfg. ephemeral forces the
// in-memory backend.
func OpenBackend(cfg config.Config, ephemeral bool) (storage.Backend, error) {
	if ephemeral || cfg.Storage.Backend == config.BackendMemory {
		return memory.New(), nil
	}
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, fmt.Errorf("storage path: %w", err)
	}
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return sqlite.Open(path)
	case config.BackendBolt:
		return bolt.Open(path)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// PrivacyFilter builds the ignore filter from the clipboard section.
func PrivacyFilter(cfg config.Config) (*core.PrivacyFilter, error) {
	return core.NewPrivacyFilter(cfg.Clipboard.IgnorePatterns, cfg.Clipboard.UseRegex)
}
