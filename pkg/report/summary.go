package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/dd0wney/cluso-asgraph/pkg/stats"
)

// WriteSummary renders the per-year statistics as a plain table
func WriteSummary(w io.Writer, years []stats.YearStats) {
	rows := make([][]string, 0, len(years))
	for _, y := range years {
		if y.Filled {
			continue
		}
		rows = append(rows, []string{
			itoa(y.Year),
			itoa(y.V4.Vertices),
			itoa(y.V6.Vertices),
			itoa(y.V4.Edges),
			itoa(y.V6.Edges),
			fmt.Sprintf("%.2f", y.V4.MeanPathLength),
			fmt.Sprintf("%.2f", y.V6.MeanPathLength),
			itoa(y.V4.Relationships["customer"] + y.V6.Relationships["customer"]),
			itoa(y.V4.Relationships["peer"] + y.V6.Relationships["peer"]),
			itoa(y.V4.Relationships["sibling"] + y.V6.Relationships["sibling"]),
			fmt.Sprintf("%.3f", y.Overall),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{
		"YEAR", "V4 ASES", "V6 ASES", "V4 LINKS", "V6 LINKS",
		"V4 PATH", "V6 PATH", "C2P", "P2P", "S2S", "V6 SHARE",
	})
	table.AppendBulk(rows)
	table.Render()
}
