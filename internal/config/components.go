package config

import (
	"go.uber.org/zap"

	"github.com/mmadfox/fencer"
	"github.com/mmadfox/fencer/internal/geocode"
	"github.com/mmadfox/fencer/internal/remote"
)

func (c *Config) StoreOptions(logger *zap.Logger) remote.Options {
	opts := c.Store
	opts.Logger = logger
	return opts
}

func (c *Config) GeocoderOptions(logger *zap.Logger) geocode.Options {
	opts := c.Geocoder
	if len(opts.URL) == 0 {
		opts.URL = geocode.DefaultURL
	}
	opts.Logger = logger
	return opts
}

// NewRegistry builds a registry backed by the configured HTTP store.
func (c *Config) NewRegistry(logger *zap.Logger) (*fencer.Registry, error) {
	store, err := remote.New(c.StoreOptions(logger.Named("store")))
	if err != nil {
		return nil, err
	}
	return fencer.NewRegistry(store, fencer.WithLogger(logger.Named("registry"))), nil
}

// NewChecker builds the address check flow on top of registry.
func (c *Config) NewChecker(registry *fencer.Registry, kv fencer.KV, logger *zap.Logger) *fencer.Checker {
	geocoder := geocode.NewNominatim(c.GeocoderOptions(logger.Named("geocoder")))
	return fencer.NewChecker(geocoder, registry, kv, logger.Named("checker"))
}
