package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/metrics"
)

type instrumented struct {
	Store
	metrics *metrics.Registry
}

// Instrument wraps a store so that every Get and Put is counted and timed
// under the store's backend name.
func Instrument(s Store, m *metrics.Registry) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, metrics: m}
}

func (s *instrumented) Get(ctx context.Context, key Key) (*asgraph.Graph, error) {
	start := time.Now()
	g, err := s.Store.Get(ctx, key)

	status := metrics.StatusSuccess
	switch {
	case errors.Is(err, ErrNotFound):
		status = metrics.StatusMiss
	case errors.Is(err, ErrCorrupt):
		status = metrics.StatusCorrupt
	case err != nil:
		status = metrics.StatusError
	}
	s.metrics.RecordSnapshotOperation(s.Name(), "get", status, time.Since(start))
	return g, err
}

func (s *instrumented) Put(ctx context.Context, key Key, g *asgraph.Graph) error {
	start := time.Now()
	err := s.Store.Put(ctx, key, g)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	s.metrics.RecordSnapshotOperation(s.Name(), "put", status, time.Since(start))
	return err
}
