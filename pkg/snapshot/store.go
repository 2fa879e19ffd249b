// Package snapshot persists built AS graphs so later runs can skip the
// computation. Stores are a best-effort cache: a missing or corrupt entry
// only means the graph is rebuilt.
package snapshot

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
)

// Key identifies one snapshot
type Key struct {
	Year   int
	Family asgraph.Family
}

// String returns "<year>/<family>"
func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.Year, k.Family)
}

// Store is a get/put capability over persisted graphs.
//
// Get returns ErrNotFound for an absent key and an error wrapping
// ErrCorrupt when the stored bytes do not decode. It never returns a
// partially decoded graph.
type Store interface {
	Get(ctx context.Context, key Key) (*asgraph.Graph, error)
	Put(ctx context.Context, key Key, g *asgraph.Graph) error
	// Name identifies the backend in logs and metrics
	Name() string
}

// NopStore never holds anything. It is the store of deployments without a
// cache: every Get misses and every Put is dropped.
type NopStore struct{}

func (NopStore) Get(context.Context, Key) (*asgraph.Graph, error) { return nil, ErrNotFound }
func (NopStore) Put(context.Context, Key, *asgraph.Graph) error   { return nil }
func (NopStore) Name() string                                     { return "none" }

type readOnly struct {
	Store
}

func (readOnly) Put(context.Context, Key, *asgraph.Graph) error { return nil }

// ReadOnly wraps a store so that Put becomes a no-op
func ReadOnly(s Store) Store {
	return readOnly{Store: s}
}

// checkKey rejects keys that cannot name a snapshot
func checkKey(key Key) error {
	if key.Year < 0 {
		return fmt.Errorf("invalid snapshot year %d", key.Year)
	}
	if !key.Family.Valid() {
		return fmt.Errorf("%w: %d", asgraph.ErrInvalidFamily, key.Family)
	}
	return nil
}

// checkGraph makes sure a decoded graph belongs to the key it was read from
func checkGraph(key Key, g *asgraph.Graph) error {
	if g.Year != key.Year || g.Family != key.Family {
		return fmt.Errorf("%w: stored graph is %d/%s", ErrCorrupt, g.Year, g.Family)
	}
	return nil
}
