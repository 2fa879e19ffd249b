package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/config"
	"github.com/dd0wney/cluso-asgraph/pkg/logging"
	"github.com/dd0wney/cluso-asgraph/pkg/snapshot"
	"github.com/dd0wney/cluso-asgraph/pkg/stats"
	"github.com/dd0wney/cluso-asgraph/pkg/validation"
)

var errNoCache = errors.New("no snapshot cache configured")

type inspectFlags struct {
	year         int
	family       string
	asn          uint32
	cacheBackend string
	cacheDir     string
}

func newInspectCmd(root *rootOptions) *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show a cached graph, or one AS of it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root, func(c *config.Config) {
				if changed(cmd, "cache") {
					c.Cache.Backend = flags.cacheBackend
				}
				if changed(cmd, "cache-dir") {
					c.Cache.Dir = flags.cacheDir
				}
			})
			if err != nil {
				return err
			}
			return runInspect(cmd, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.year, "year", "y", 0, "Year of the graph")
	f.StringVarP(&flags.family, "family", "f", "ipv4", "Address family (ipv4, ipv6)")
	f.Uint32Var(&flags.asn, "asn", 0, "Show the relationships of this AS")
	f.StringVar(&flags.cacheBackend, "cache", "", "Snapshot cache backend (file, badger, s3)")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "Snapshot cache directory")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func runInspect(cmd *cobra.Command, cfg *config.Config, flags *inspectFlags) error {
	if err := validation.ValidateYear(flags.year); err != nil {
		return err
	}
	family, err := asgraph.ParseFamily(flags.family)
	if err != nil {
		return err
	}
	if cfg.Cache.Backend == config.BackendNone {
		return errNoCache
	}

	logger, _ := newLogger(cfg, cmd.ErrOrStderr())
	store, closeStore, err := cfg.OpenStore(cmd.Context(), logger)
	if err != nil {
		return fmt.Errorf("open snapshot cache: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing snapshot cache failed", logging.Error(err))
		}
	}()

	key := snapshot.Key{Year: flags.year, Family: family}
	g, err := store.Get(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}

	out := cmd.OutOrStdout()
	if changed(cmd, "asn") {
		logger.Debug("inspecting AS", logging.Year(flags.year), logging.ASN(flags.asn))
		return printAS(out, g, asgraph.ASN(flags.asn))
	}
	printGraph(out, g)
	return nil
}

func printGraph(w io.Writer, g *asgraph.Graph) {
	fs := stats.OfGraph(g)
	fmt.Fprintf(w, "Year:           %d\n", g.Year)
	fmt.Fprintf(w, "Family:         %s\n", g.Family)
	fmt.Fprintf(w, "ASes:           %d\n", fs.Vertices)
	fmt.Fprintf(w, "Links:          %d\n", fs.Edges)
	fmt.Fprintf(w, "Paths:          %d\n", fs.Paths)
	fmt.Fprintf(w, "Mean path:      %.3f\n", fs.MeanPathLength)
	for _, kind := range []string{"customer", "provider", "peer", "sibling"} {
		fmt.Fprintf(w, "%-16s%d\n", strings.ToUpper(kind[:1])+kind[1:]+":", fs.Relationships[kind])
	}
	for _, r := range asgraph.Roles {
		fmt.Fprintf(w, "%-33s%d\n", r.String()+":", fs.Roles[r])
	}
}

func printAS(w io.Writer, g *asgraph.Graph, a asgraph.ASN) error {
	role, ok := g.RoleOf(a)
	if !ok {
		return fmt.Errorf("AS%d is not in the %d %s graph", a, g.Year, g.Family)
	}

	fmt.Fprintf(w, "AS%d (%d, %s)\n", a, g.Year, g.Family)
	fmt.Fprintf(w, "Role:       %s\n", role)
	fmt.Fprintf(w, "Degree:     %d\n", g.Degree(a))
	fmt.Fprintf(w, "Customers:  %s\n", join(g.Relationships.Customers[a]))
	fmt.Fprintf(w, "Providers:  %s\n", join(g.Relationships.Providers[a]))
	fmt.Fprintf(w, "Peers:      %s\n", join(g.Relationships.Peers[a]))
	fmt.Fprintf(w, "Siblings:   %s\n", join(g.Relationships.Siblings[a]))
	return nil
}

func join(s asgraph.ASSet) string {
	if len(s) == 0 {
		return "-"
	}
	asns := s.Sorted()
	parts := make([]string, len(asns))
	for i, a := range asns {
		parts[i] = fmt.Sprintf("%d", a)
	}
	return strings.Join(parts, " ")
}
