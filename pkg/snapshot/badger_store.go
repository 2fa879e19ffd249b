package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/logging"
)

// BadgerConfig holds configuration for a badger-backed store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps the database in RAM. Useful for testing.
	InMemory bool

	// SyncWrites fsyncs every write
	SyncWrites bool

	// Logger receives badger's internal logs. Nil disables them.
	Logger logging.Logger
}

// DefaultBadgerConfig returns the configuration for an on-disk cache
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryBadgerConfig returns a configuration for tests
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts logging.Logger to badger's Logger interface.
type badgerLogger struct {
	logger logging.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore keeps snapshots in an embedded badger database under keys
// "snapshot/<year>/<family>".
type BadgerStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// OpenBadgerStore opens or creates the database
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, dirPermissions); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Name implements Store
func (s *BadgerStore) Name() string {
	return "badger"
}

func badgerKey(key Key) []byte {
	return []byte("snapshot/" + key.String())
}

// Get implements Store
func (s *BadgerStore) Get(ctx context.Context, key Key) (*asgraph.Graph, error) {
	if err := checkKey(key); err != nil {
		return nil, s.wrap("get", key, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.wrap("get", key, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, s.wrap("get", key, ErrStoreClosed)
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, s.wrap("get", key, ErrNotFound)
		}
		return nil, s.wrap("get", key, err)
	}

	g, err := Decode(data)
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	if err := checkGraph(key, g); err != nil {
		return nil, s.wrap("get", key, err)
	}
	return g, nil
}

// Put implements Store
func (s *BadgerStore) Put(ctx context.Context, key Key, g *asgraph.Graph) error {
	if err := checkKey(key); err != nil {
		return s.wrap("put", key, err)
	}
	if err := ctx.Err(); err != nil {
		return s.wrap("put", key, err)
	}

	data, err := Encode(g)
	if err != nil {
		return s.wrap("put", key, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return s.wrap("put", key, ErrStoreClosed)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(key), data)
	})
	if err != nil {
		return s.wrap("put", key, err)
	}
	return nil
}

// Close closes the database. Later calls return ErrStoreClosed.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	return s.db.Close()
}

func (s *BadgerStore) wrap(op string, key Key, err error) error {
	return &Error{Op: op, Backend: s.Name(), Key: key, Cause: err}
}
