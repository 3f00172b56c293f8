package analytics

import (
	"sort"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

// ComputeHeatmap builds the tool by unit compliance grid over completed sessions.
func ComputeHeatmap(sessions []models.AuditSession) models.Heatmap {
	grid := make(map[string]map[string]*tally)
	units := make(map[string]bool)

	for _, s := range completedSessions(sessions) {
		tool := toolName(s)
		unit := orUnassigned(s.Header.Unit)
		row, ok := grid[tool]
		if !ok {
			row = make(map[string]*tally)
			grid[tool] = row
		}
		cell, ok := row[unit]
		if !ok {
			cell = &tally{}
			row[unit] = cell
		}
		units[unit] = true
		for _, sample := range s.Samples {
			cell.addSample(sample)
		}
	}

	heatmap := models.Heatmap{
		Tools: make([]string, 0, len(grid)),
		Units: make([]string, 0, len(units)),
		Cells: make(map[string]map[string]models.HeatmapCell, len(grid)),
	}
	for tool, row := range grid {
		heatmap.Tools = append(heatmap.Tools, tool)
		cells := make(map[string]models.HeatmapCell, len(row))
		for unit, t := range row {
			cells[unit] = models.HeatmapCell{
				Total:    t.total,
				Passing:  t.passing,
				Rate:     utils.RoundPercent(t.passing, t.total),
				Critical: t.critical,
			}
		}
		heatmap.Cells[tool] = cells
	}
	for unit := range units {
		heatmap.Units = append(heatmap.Units, unit)
	}
	sort.Strings(heatmap.Tools)
	sort.Strings(heatmap.Units)
	return heatmap
}
