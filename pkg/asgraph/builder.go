package asgraph

import "fmt"

// BuildOptions tunes path normalization
type BuildOptions struct {
	// CollapsePrepending drops consecutive repeats of an ASN inside
	// sequence segments, so prepended paths produce no self-loops
	CollapsePrepending bool
}

// Builder accumulates the paths of one (year, family) corpus. It is owned
// by a single build and is not safe for concurrent use.
//
// Add folds announcements into the neighbor graph. Build seals the
// builder, so every degree is final before the transit pass reads it.
type Builder struct {
	graph     *Graph
	opts      BuildOptions
	sealed    bool
	seen      int
	discarded int
}

// NewBuilder creates an empty builder for the given year and family
func NewBuilder(year int, family Family, opts BuildOptions) (*Builder, error) {
	if !family.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFamily, family)
	}
	return &Builder{
		graph: newGraph(year, family),
		opts:  opts,
	}, nil
}

// Add normalizes one announcement. It reports whether a path was retained:
// announcements without an AS-path, or whose path flattens to nothing,
// are discarded.
func (b *Builder) Add(a Announcement) (bool, error) {
	if b.sealed {
		return false, ErrBuilderSealed
	}
	b.seen++

	if a.ASPath == nil {
		b.discarded++
		return false, nil
	}

	path := normalize(a.ASPath, b.graph.Neighbors, b.opts.CollapsePrepending)
	if len(path) == 0 {
		b.discarded++
		return false, nil
	}

	b.graph.Paths = append(b.graph.Paths, path)
	return true, nil
}

// Seen returns the number of announcements passed to Add
func (b *Builder) Seen() int {
	return b.seen
}

// Retained returns the number of paths kept so far
func (b *Builder) Retained() int {
	return len(b.graph.Paths)
}

// Discarded returns the number of announcements that produced no path
func (b *Builder) Discarded() int {
	return b.discarded
}

// Build seals the builder and runs the transit, relationship and role
// passes over the final neighbor graph.
func (b *Builder) Build() (*Graph, error) {
	if b.sealed {
		return nil, ErrBuilderSealed
	}
	b.sealed = true

	g := b.graph
	g.Transit = inferTransit(g.Paths, g.Neighbors)
	g.Relationships = classifyRelationships(g.Paths, g.Transit)
	g.Roles = classifyRoles(g.Neighbors, g.Relationships)
	return g, nil
}

// BuildFrom builds a graph from an in-memory announcement list
func BuildFrom(year int, family Family, announcements []Announcement, opts BuildOptions) (*Graph, error) {
	b, err := NewBuilder(year, family, opts)
	if err != nil {
		return nil, err
	}
	for _, a := range announcements {
		if _, err := b.Add(a); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
