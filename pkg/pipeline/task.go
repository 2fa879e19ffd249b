package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/corpus"
	"github.com/dd0wney/cluso-asgraph/pkg/logging"
	"github.com/dd0wney/cluso-asgraph/pkg/metrics"
	"github.com/dd0wney/cluso-asgraph/pkg/mrt"
	"github.com/dd0wney/cluso-asgraph/pkg/snapshot"
)

// runTask produces both graphs of one year
func (p *Pipeline) runTask(ctx context.Context, f corpus.File) (res Result) {
	start := time.Now()
	logger := p.logger.With(logging.Year(f.Year), logging.File(f.Name()))

	if m := p.opts.Metrics; m != nil {
		m.TasksInFlight.Inc()
		defer func() {
			m.TasksInFlight.Dec()
			status := metrics.StatusSuccess
			if res.Err != nil {
				status = metrics.StatusError
			}
			m.RecordTask(status, time.Since(start))
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("year task panicked",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())))
			res = failure(f, "", fmt.Errorf("%w: %v", ErrTaskPanic, r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failure(f, "", err)
	}

	var (
		graphs  [len(asgraph.Families)]*asgraph.Graph
		missing []asgraph.Family
	)
	for _, fam := range asgraph.Families {
		g, ok := p.load(ctx, snapshot.Key{Year: f.Year, Family: fam}, logger)
		if !ok {
			missing = append(missing, fam)
			continue
		}
		graphs[fam] = g
		p.observe(g, metrics.OriginSnapshot)
	}

	if len(missing) > 0 {
		built, err := p.build(ctx, f, missing, logger)
		if err != nil {
			var te *TaskError
			if errors.As(err, &te) {
				logger.Error("year task failed", logging.Error(err))
				return Result{Year: f.Year, File: f, Err: te}
			}
			logger.Error("year task failed", logging.Error(err))
			return failure(f, "", err)
		}

		for _, fam := range missing {
			g := built[fam]
			graphs[fam] = g
			p.observe(g, metrics.OriginSource)
			p.persist(ctx, g, logger)
		}
	}

	for _, g := range graphs {
		if len(g.Paths) == 0 {
			logger.Warn("empty corpus: no paths retained",
				logging.Family(g.Family),
				logging.Vertices(g.VertexCount()))
		}
	}

	logger.Info("year task finished",
		logging.Int("ipv4_vertices", graphs[asgraph.V4].VertexCount()),
		logging.Int("ipv6_vertices", graphs[asgraph.V6].VertexCount()),
		logging.Float64("ipv4_mean_path_length", graphs[asgraph.V4].MeanPathLength()),
		logging.Float64("ipv6_mean_path_length", graphs[asgraph.V6].MeanPathLength()),
		logging.Int("built", len(missing)),
		logging.Latency(time.Since(start)))

	return Result{Year: f.Year, File: f, V4: graphs[asgraph.V4], V6: graphs[asgraph.V6]}
}

// load reads one snapshot. Every failure is a miss.
func (p *Pipeline) load(ctx context.Context, key snapshot.Key, logger logging.Logger) (*asgraph.Graph, bool) {
	g, err := p.opts.Store.Get(ctx, key)
	switch {
	case err == nil:
		logger.Debug("snapshot hit", logging.Family(key.Family), logging.Backend(p.opts.Store.Name()))
		return g, true
	case errors.Is(err, snapshot.ErrNotFound):
		logger.Debug("snapshot miss", logging.Family(key.Family), logging.Backend(p.opts.Store.Name()))
	default:
		logger.Warn("snapshot unusable, recomputing",
			logging.Family(key.Family),
			logging.Backend(p.opts.Store.Name()),
			logging.Error(err))
	}
	return nil, false
}

// persist stores a freshly built graph. Failures are logged only.
func (p *Pipeline) persist(ctx context.Context, g *asgraph.Graph, logger logging.Logger) {
	key := snapshot.Key{Year: g.Year, Family: g.Family}
	if err := p.opts.Store.Put(ctx, key, g); err != nil {
		logger.Warn("snapshot not persisted",
			logging.Family(g.Family),
			logging.Backend(p.opts.Store.Name()),
			logging.Error(err))
	}
}

func (p *Pipeline) observe(g *asgraph.Graph, origin string) {
	if p.opts.Metrics == nil {
		return
	}
	p.opts.Metrics.RecordGraph(g.Year, g.Family.String(), origin,
		g.VertexCount(), g.EdgeCount(), g.Relationships.Counts())
}

// build reads the year's source once, routing each announcement by peer
// family to the builder of that family if it is missing. Builders run
// concurrently with the reader.
func (p *Pipeline) build(ctx context.Context, f corpus.File, missing []asgraph.Family, logger logging.Logger) ([len(asgraph.Families)]*asgraph.Graph, error) {
	var out [len(asgraph.Families)]*asgraph.Graph

	src, err := p.opts.Open(ctx, f)
	if err != nil {
		return out, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	builders := make([]*asgraph.Builder, len(missing))
	for i, fam := range missing {
		b, err := asgraph.NewBuilder(f.Year, fam, p.opts.Build)
		if err != nil {
			return out, err
		}
		builders[i] = b
	}

	g, gctx := errgroup.WithContext(ctx)

	var feeds [len(asgraph.Families)]chan []asgraph.Announcement
	for i, fam := range missing {
		b := builders[i]
		feed := make(chan []asgraph.Announcement, 4)
		feeds[fam] = feed

		g.Go(func() (err error) {
			defer recoverBuild(f, fam.String(), logger, &err)

			timer := logging.StartTimer(logger, "graph built", logging.Family(fam))
			for batch := range feed {
				for _, a := range batch {
					if _, err := b.Add(a); err != nil {
						timer.EndError(err)
						return &TaskError{Year: f.Year, Family: fam.String(), File: f.Path, Cause: err}
					}
				}
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			graph, err := b.Build()
			if err != nil {
				timer.EndError(err)
				return &TaskError{Year: f.Year, Family: fam.String(), File: f.Path, Cause: err}
			}
			out[fam] = graph

			timer.End(logging.Paths(b.Retained()), logging.Vertices(graph.VertexCount()))
			if m := p.opts.Metrics; m != nil {
				m.RecordBuild(fam.String(), timer.Elapsed(), b.Retained(), b.Discarded())
			}
			return nil
		})
	}

	g.Go(func() (err error) {
		defer func() {
			for _, feed := range feeds {
				if feed != nil {
					close(feed)
				}
			}
		}()
		defer recoverBuild(f, "", logger, &err)
		return p.read(gctx, src, &feeds, logger)
	})

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// recoverBuild turns a panic on a build goroutine into a TaskError, so the
// group fails like any other build error
func recoverBuild(f corpus.File, family string, logger logging.Logger, err *error) {
	if r := recover(); r != nil {
		logger.Error("build panicked",
			logging.String("family", family),
			logging.Any("panic", r),
			logging.String("stack", string(debug.Stack())))
		*err = &TaskError{Year: f.Year, Family: family, File: f.Path, Cause: fmt.Errorf("%w: %v", ErrTaskPanic, r)}
	}
}

// skipCounter is implemented by sources that pass over records they
// cannot decode into announcements
type skipCounter interface {
	Skipped() int
}

// read drains src into the family feeds
func (p *Pipeline) read(ctx context.Context, src Source, feeds *[len(asgraph.Families)]chan []asgraph.Announcement, logger logging.Logger) (err error) {
	var (
		batches [len(asgraph.Families)][]asgraph.Announcement
		read    int
	)
	defer func() {
		if m := p.opts.Metrics; m != nil {
			m.RecordSourceFile(read, errors.Is(err, mrt.ErrDecode))
		}
	}()

	send := func(fam asgraph.Family) error {
		if len(batches[fam]) == 0 {
			return nil
		}
		select {
		case feeds[fam] <- batches[fam]:
			batches[fam] = make([]asgraph.Announcement, 0, batchSize)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		if read%p.opts.CheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		a, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		read++

		fam := asgraph.FamilyOf(a.PeerAddr)
		if feeds[fam] == nil {
			continue
		}
		batches[fam] = append(batches[fam], a)
		if len(batches[fam]) >= batchSize {
			if err := send(fam); err != nil {
				return err
			}
		}
	}

	if sc, ok := src.(skipCounter); ok && sc.Skipped() > 0 {
		logger.Warn("unsupported records skipped", logging.Count(sc.Skipped()))
	}

	for _, fam := range asgraph.Families {
		if feeds[fam] == nil {
			continue
		}
		if err := send(fam); err != nil {
			return err
		}
	}
	return nil
}
