package grocery

import (
	"math"

	"github.com/rdouglass/larder/internal/model"
)

// ProgressReport summarizes how much of a grocery list has been checked off.
type ProgressReport struct {
	Checked    int `json:"checked"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Progress counts checked items. An empty list reports zero percent rather
// than dividing by zero.
func Progress(items []model.GroceryItem) ProgressReport {
	report := ProgressReport{Total: len(items)}
	for _, item := range items {
		if item.Checked {
			report.Checked++
		}
	}
	if report.Total > 0 {
		report.Percentage = int(math.Round(float64(report.Checked) / float64(report.Total) * 100))
	}
	return report
}
