package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/stats"
)

func sampleStats() []stats.YearStats {
	return []stats.YearStats{
		{
			Year: 2004,
			V4: stats.FamilyStats{Vertices: 3, Edges: 4, Paths: 1, MeanPathLength: 3,
				Relationships: map[string]int{"customer": 2, "provider": 2}},
			V6: stats.FamilyStats{Vertices: 6, Edges: 8, Paths: 4, MeanPathLength: 2,
				Relationships: map[string]int{"customer": 4, "provider": 4}},
			RoleFractions: [asgraph.NumRoles]float64{5.0 / 6.0, 1, 0, 0},
			Overall:       0.5,
		},
		{Year: 2005, Filled: true},
		{
			Year:          2006,
			V4:            stats.FamilyStats{Vertices: 10, Edges: 18, MeanPathLength: 2.25},
			RoleFractions: [asgraph.NumRoles]float64{0.25, 0, 0, 0.75},
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		fig  Figure
		want [][]string
	}{
		{VertexCounts, [][]string{
			{"Year", "IPv4", "IPv6"},
			{"2004", "3", "6"},
			{"2005", "0", "0"},
			{"2006", "10", "0"},
		}},
		{EdgeCounts, [][]string{
			{"Year", "IPv4", "IPv6"},
			{"2004", "4", "8"},
			{"2005", "0", "0"},
			{"2006", "18", "0"},
		}},
		{MeanPathLengths, [][]string{
			{"Year", "IPv4", "IPv6"},
			{"2004", "3", "2"},
			{"2005", "0", "0"},
			{"2006", "2.25", "0"},
		}},
		{RoleFractions, [][]string{
			{"Year", "Enterprise Customer", "Small Transit Provider", "Large Transit Provider", "Content/Access/Hosting Provider", "All"},
			{"2004", "0.8333333333333334", "1", "0", "0", "0.5"},
			{"2005", "0", "0", "0", "0", "0"},
			{"2006", "0.25", "0", "0", "0.75", "0"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.fig.Name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, tt.fig, sampleStats()))
			assert.Equal(t, tt.want, readCSV(t, buf.Bytes()))
		})
	}
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, VertexCounts, nil))
	assert.Equal(t, "Year,IPv4,IPv6\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("device full") }

func TestWriteCSV_WriterError(t *testing.T) {
	err := WriteCSV(failingWriter{}, EdgeCounts, sampleStats())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Figure 1.2.csv")
}

func TestWriteFigures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")

	paths, err := WriteFigures(dir, sampleStats())
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for i, fig := range Figures() {
		assert.Equal(t, filepath.Join(dir, fig.Name), paths[i])
		data, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		records := readCSV(t, data)
		assert.Equal(t, fig.Header, records[0])
		assert.Len(t, records, 4)
	}
}

func TestWriteFigures_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := WriteFigures(filepath.Join(file, "results"), sampleStats())
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, sampleStats())
	out := buf.String()

	assert.Contains(t, out, "V4 ASES")
	assert.Contains(t, out, "2004")
	assert.Contains(t, out, "2006")
	assert.NotContains(t, out, "2005", "filled years are not summarized")
	assert.Contains(t, out, "0.500")
}
