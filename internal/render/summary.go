// Package render formats a result set for terminal output.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// Summary writes a human-readable overview of the run: the per-species
// trend table joined with the significance markers.
func Summary(w io.Writer, rs domain.ResultSet) {
	sig := make(map[string]domain.SignificanceResult, len(rs.Significance))
	for _, s := range rs.Significance {
		sig[s.SpeciesID] = s
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Species", "Slope", "Change Ratio", "Nonzero Obs", "Rho", "Signif", "Direction"})

	for _, tr := range rs.Trends {
		s, tested := sig[tr.SpeciesID]
		rho, level, direction := "-", "-", "-"
		if tested {
			rho = strconv.FormatFloat(s.Rho, 'f', 3, 64)
			direction = s.Direction
			if s.Level != "" {
				level = s.Level
			}
		}
		t.AppendRow(table.Row{
			tr.SpeciesID,
			formatStat(tr.Slope),
			formatStat(tr.ChangeRatio),
			tr.TotalNonzero,
			rho,
			level,
			direction,
		})
	}
	t.Render()

	fmt.Fprintf(w, "(%d species, generated %s)\n",
		len(rs.Trends), rs.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
}

func formatStat(f domain.Float) string {
	if !f.OK {
		return "undefined"
	}
	return strconv.FormatFloat(f.V, 'f', 4, 64)
}
