// Package report writes the per-year figure tables of a run as CSV files
// and renders a terminal summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/stats"
)

// Figure is one year-ordered table
type Figure struct {
	// Name is the file name the table is written to
	Name   string
	Header []string
	row    func(stats.YearStats) []string
}

var familyHeader = []string{"Year", "IPv4", "IPv6"}

// VertexCounts is the number of ASes per family
var VertexCounts = Figure{
	Name:   "Figure 1.1.csv",
	Header: familyHeader,
	row: func(y stats.YearStats) []string {
		return []string{itoa(y.Year), itoa(y.V4.Vertices), itoa(y.V6.Vertices)}
	},
}

// EdgeCounts is the number of adjacency entries per family
var EdgeCounts = Figure{
	Name:   "Figure 1.2.csv",
	Header: familyHeader,
	row: func(y stats.YearStats) []string {
		return []string{itoa(y.Year), itoa(y.V4.Edges), itoa(y.V6.Edges)}
	},
}

// MeanPathLengths is the mean retained path length per family
var MeanPathLengths = Figure{
	Name:   "Figure 7.csv",
	Header: familyHeader,
	row: func(y stats.YearStats) []string {
		return []string{itoa(y.Year), ftoa(y.V4.MeanPathLength), ftoa(y.V6.MeanPathLength)}
	},
}

// RoleFractions is the share of each role, and of all ASes, present in
// the IPv6 graph
var RoleFractions = Figure{
	Name:   "Figure 8.csv",
	Header: roleHeader(),
	row: func(y stats.YearStats) []string {
		rec := make([]string, 0, asgraph.NumRoles+2)
		rec = append(rec, itoa(y.Year))
		for _, f := range y.RoleFractions {
			rec = append(rec, ftoa(f))
		}
		return append(rec, ftoa(y.Overall))
	},
}

// Figures lists every table in output order
func Figures() []Figure {
	return []Figure{VertexCounts, EdgeCounts, MeanPathLengths, RoleFractions}
}

func roleHeader() []string {
	h := make([]string, 0, asgraph.NumRoles+2)
	h = append(h, "Year")
	for _, r := range asgraph.Roles {
		h = append(h, r.String())
	}
	return append(h, "All")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteCSV writes one figure, header first, one row per year
func WriteCSV(w io.Writer, fig Figure, years []stats.YearStats) (retErr error) {
	cw := csv.NewWriter(w)
	defer func() {
		cw.Flush()
		if err := cw.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("flush %s: %w", fig.Name, err)
		}
	}()

	if err := cw.Write(fig.Header); err != nil {
		return fmt.Errorf("write %s header: %w", fig.Name, err)
	}
	for _, y := range years {
		if err := cw.Write(fig.row(y)); err != nil {
			return fmt.Errorf("write %s row %d: %w", fig.Name, y.Year, err)
		}
	}
	return nil
}

// WriteFigures writes every figure into dir, creating it if needed, and
// returns the paths written
func WriteFigures(dir string, years []stats.YearStats) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for _, fig := range Figures() {
		path := filepath.Join(dir, fig.Name)
		if err := writeFile(path, fig, years); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, fig Figure, years []stats.YearStats) (retErr error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return WriteCSV(file, fig, years)
}
