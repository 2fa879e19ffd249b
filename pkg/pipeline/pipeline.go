// Package pipeline runs one build task per corpus year on a worker pool.
// Each task serves what it can from the snapshot store, builds the
// missing families from the year's dump and persists them again.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/corpus"
	"github.com/dd0wney/cluso-asgraph/pkg/logging"
	"github.com/dd0wney/cluso-asgraph/pkg/metrics"
	"github.com/dd0wney/cluso-asgraph/pkg/parallel"
	"github.com/dd0wney/cluso-asgraph/pkg/snapshot"
)

const (
	// DefaultCheckEvery is the number of announcements read between
	// cancellation checks
	DefaultCheckEvery = 4096

	// batchSize is the number of announcements handed to a family
	// builder at once
	batchSize = 512
)

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	// Workers is the number of concurrent year tasks, NumCPU when zero
	Workers int

	Build asgraph.BuildOptions

	// Store caches built graphs, NopStore when nil
	Store snapshot.Store

	// Open opens a corpus file, OpenMRT when nil
	Open SourceOpener

	// Logger defaults to logging.DefaultLogger
	Logger  logging.Logger
	Metrics *metrics.Registry

	CheckEvery int
}

// Pipeline builds the graphs of a corpus
type Pipeline struct {
	opts   Options
	logger logging.Logger
}

// New creates a pipeline, filling in defaults
func New(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Store == nil {
		opts.Store = snapshot.NopStore{}
	}
	if opts.Open == nil {
		opts.Open = OpenMRT
	}
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger()
	}
	if opts.CheckEvery <= 0 {
		opts.CheckEvery = DefaultCheckEvery
	}
	opts.Store = snapshot.Instrument(opts.Store, opts.Metrics)

	return &Pipeline{
		opts:   opts,
		logger: opts.Logger.With(logging.Component("pipeline")),
	}
}

// Result is the outcome of one year task
type Result struct {
	Year int
	File corpus.File
	V4   *asgraph.Graph
	V6   *asgraph.Graph
	// Err is a *TaskError when the task failed; the graphs are nil then
	Err error
}

// Graph returns the graph of the given family
func (r Result) Graph(f asgraph.Family) *asgraph.Graph {
	if f == asgraph.V6 {
		return r.V6
	}
	return r.V4
}

// OK reports whether the task succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Succeeded returns the successful results, order preserved
func Succeeded(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the failed results, order preserved
func Failed(results []Result) []Result {
	out := make([]Result, 0)
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Run executes one task per file and returns the results sorted by year,
// whatever order the tasks finish in. A failing task never affects the
// others; its Result carries the error. Run itself only fails on
// duplicate years or when the worker pool cannot start.
func (p *Pipeline) Run(ctx context.Context, files []corpus.File) ([]Result, error) {
	seen := make(map[int]string, len(files))
	for _, f := range files {
		if prev, ok := seen[f.Year]; ok {
			return nil, fmt.Errorf("%w: %d in %s and %s", corpus.ErrDuplicateYear, f.Year, prev, f.Path)
		}
		seen[f.Year] = f.Path
	}

	start := time.Now()
	pool, err := parallel.NewWorkerPool(p.opts.Workers, parallel.WithPanicHandler(func(r any) {
		p.logger.Error("worker recovered from panic", logging.Any("panic", r))
	}))
	if err != nil {
		return nil, err
	}

	p.logger.Info("run started", logging.Count(len(files)), logging.Int("workers", pool.Workers()))

	results := make([]Result, len(files))
	for i, f := range files {
		if err := pool.SubmitContext(ctx, func() {
			results[i] = p.runTask(ctx, f)
		}); err != nil {
			results[i] = failure(f, "", err)
		}
	}
	pool.Close()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Year < results[j].Year
	})

	failed := len(Failed(results))
	if p.opts.Metrics != nil {
		p.opts.Metrics.RunDurationSecs.Set(time.Since(start).Seconds())
	}
	p.logger.Info("run finished",
		logging.Count(len(results)),
		logging.Int("failed", failed),
		logging.Latency(time.Since(start)))
	return results, nil
}

func failure(f corpus.File, family string, cause error) Result {
	return Result{
		Year: f.Year,
		File: f,
		Err: &TaskError{
			Year:   f.Year,
			Family: family,
			File:   f.Path,
			Cause:  cause,
		},
	}
}
