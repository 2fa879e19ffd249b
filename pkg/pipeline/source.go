package pipeline

import (
	"context"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/corpus"
	"github.com/dd0wney/cluso-asgraph/pkg/mrt"
)

// Source yields the announcements of one corpus file. Next returns io.EOF
// after the last announcement.
type Source interface {
	Next() (asgraph.Announcement, error)
	Close() error
}

// SourceOpener opens the source of a corpus file
type SourceOpener func(ctx context.Context, f corpus.File) (Source, error)

// OpenMRT opens a corpus file as an MRT routing table dump
func OpenMRT(_ context.Context, f corpus.File) (Source, error) {
	r, err := mrt.Open(f.Path)
	if err != nil {
		return nil, err
	}
	return r, nil
}
