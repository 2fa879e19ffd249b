package config

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-asgraph/pkg/logging"
	"github.com/dd0wney/cluso-asgraph/pkg/snapshot"
)

// OpenStore opens the configured snapshot store, resolving the cache
// directory against output_dir
func (c *Config) OpenStore(ctx context.Context, logger logging.Logger) (snapshot.Store, func() error, error) {
	cache := c.Cache
	cache.Dir = c.CacheDir()
	return cache.OpenStore(ctx, logger)
}

// OpenStore opens the configured snapshot store. The returned close
// function is never nil.
func (c CacheConfig) OpenStore(ctx context.Context, logger logging.Logger) (snapshot.Store, func() error, error) {
	noop := func() error { return nil }

	var (
		store   snapshot.Store
		closeFn = noop
	)
	if (c.Backend == BackendFile || c.Backend == BackendBadger) && c.Dir == "" {
		return nil, noop, fmt.Errorf("%w: cache.dir is required for the %s backend", ErrInvalid, c.Backend)
	}

	switch c.Backend {
	case BackendNone:
		return snapshot.NopStore{}, noop, nil
	case BackendFile:
		fs, err := snapshot.NewFileStore(c.Dir)
		if err != nil {
			return nil, noop, err
		}
		store = fs
	case BackendBadger:
		cfg := snapshot.DefaultBadgerConfig(c.Dir)
		cfg.Logger = logger
		bs, err := snapshot.OpenBadgerStore(cfg)
		if err != nil {
			return nil, noop, err
		}
		store, closeFn = bs, bs.Close
	case BackendS3:
		client, err := snapshot.NewS3Client(ctx, snapshot.S3Config{
			Bucket:   c.Bucket,
			Prefix:   c.Prefix,
			Region:   c.Region,
			Endpoint: c.Endpoint,
		})
		if err != nil {
			return nil, noop, err
		}
		s3s, err := snapshot.NewS3Store(client, c.Bucket, c.Prefix)
		if err != nil {
			return nil, noop, err
		}
		store = s3s
	default:
		return nil, noop, fmt.Errorf("%w: unknown cache backend %q", ErrInvalid, c.Backend)
	}

	if c.ReadOnly {
		store = snapshot.ReadOnly(store)
	}
	return store, closeFn, nil
}
