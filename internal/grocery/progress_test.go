package grocery

import (
	"testing"

	"github.com/rdouglass/larder/internal/model"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		items   []model.GroceryItem
		want    ProgressReport
	}{
		{
			"empty list",
			nil,
			ProgressReport{Checked: 0, Total: 0, Percentage: 0},
		},
		{
			"half checked",
			[]model.GroceryItem{{Checked: true}, {Checked: false}},
			ProgressReport{Checked: 1, Total: 2, Percentage: 50},
		},
		{
			"all checked",
			[]model.GroceryItem{{Checked: true}, {Checked: true}},
			ProgressReport{Checked: 2, Total: 2, Percentage: 100},
		},
		{
			"rounds to nearest percent",
			[]model.GroceryItem{{Checked: true}, {}, {}},
			ProgressReport{Checked: 1, Total: 3, Percentage: 33},
		},
		{
			"rounds up",
			[]model.GroceryItem{{Checked: true}, {Checked: true}, {}},
			ProgressReport{Checked: 2, Total: 3, Percentage: 67},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.items); got != tt.want {
				t.Errorf("Progress() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
