package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/hub"
	"github.com/prasenjit/swagger-hub/internal/stats"
	"github.com/prasenjit/swagger-hub/internal/storage"
)

// hubSectionHelp describes where the hub section comes from
const hubSectionHelp = `
The hub section is read directly from a YAML or JSON config file, keeping
key case and document order. SWAGGERHUB_* environment variables override
the application settings (server, storage, logging, hub) only; they never
reach the hub section. For other config formats the section is taken from
viper, whose keys are lower-cased, so error paths read e.g.
'swagger:documents:0:BaseAddressUrl'.`

// configLoaded is set once viper has read a config file
var configLoaded bool

// loadHubSection returns the configuration tree the hub section is resolved
// from. A YAML or JSON config file is re-read as an ordered tree so that documents
// keep their declared order; otherwise viper's merged settings are used.
func loadHubSection() (config.Section, error) {
	if configLoaded {
		file := viper.ConfigFileUsed()
		switch strings.ToLower(filepath.Ext(file)) {
		case ".yaml", ".yml", ".json", "":
			return config.LoadFile(file)
		}
	}
	return config.FromSettings(viper.AllSettings()), nil
}

// newStorage creates the snapshot storage selected by cfg
func newStorage(cfg config.StorageConfig, logger *slog.Logger) (storage.Storage, error) {
	if cfg.Type != "file" {
		return storage.NewMemoryStorage(), nil
	}

	path := cfg.Path
	if path != "" && !filepath.IsAbs(path) {
		if cwd, err := os.Getwd(); err == nil {
			path = filepath.Join(cwd, path)
		}
	}
	logger.Info("using data directory", "path", path)

	store, err := storage.NewFileStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	return store, nil
}

// newProvider resolves the hub section of root and assembles the provider
func newProvider(cfg *config.Config, root config.Section, store storage.Storage, collector *stats.Collector, logger *slog.Logger) (*hub.Provider, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	return hub.NewFromConfig(hub.Dependencies{
		Transport: transport,
		Loggers:   hub.SlogFactory{Base: logger},
		Options: []hub.Option{
			hub.WithStorage(store),
			hub.WithStats(collector),
			hub.WithFetchTimeout(cfg.Hub.FetchTimeout),
		},
	}, root, cfg.Hub.Section)
}
