package store

import "testing"

func TestPlannerAssignAndWeekEntries(t *testing.T) {
	ps := NewPlannerStore(setupTestDB(t))

	if _, err := ps.Assign("2026-08-24", "2026-08-26", "r-soup"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := ps.Assign("2026-08-24", "2026-08-24", "r-tacos"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	entries, err := ps.WeekEntries("2026-08-24")
	if err != nil {
		t.Fatalf("week entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Date order regardless of insertion order.
	if entries[0].Date != "2026-08-24" || entries[0].RecipeID != "r-tacos" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Date != "2026-08-26" || entries[1].RecipeID != "r-soup" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestPlannerAssignReplacesExisting(t *testing.T) {
	ps := NewPlannerStore(setupTestDB(t))

	ps.Assign("2026-08-24", "2026-08-24", "r-old")
	entry, err := ps.Assign("2026-08-24", "2026-08-24", "r-new")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if entry.RecipeID != "r-new" {
		t.Errorf("recipe id = %q, want last writer to win", entry.RecipeID)
	}

	entries, _ := ps.WeekEntries("2026-08-24")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after reassign, got %d", len(entries))
	}
}

func TestPlannerUnassign(t *testing.T) {
	ps := NewPlannerStore(setupTestDB(t))

	ps.Assign("2026-08-24", "2026-08-25", "r1")
	if err := ps.Unassign("2026-08-25"); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	entry, err := ps.GetByDate("2026-08-25")
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil", entry)
	}

	// Unassigning an empty date is a no-op, not an error.
	if err := ps.Unassign("2026-08-25"); err != nil {
		t.Errorf("second unassign: %v", err)
	}
}

func TestPlannerClearWeek(t *testing.T) {
	ps := NewPlannerStore(setupTestDB(t))

	ps.Assign("2026-08-24", "2026-08-24", "r1")
	ps.Assign("2026-08-24", "2026-08-25", "r2")
	ps.Assign("2026-08-31", "2026-08-31", "r3")

	count, err := ps.ClearWeek("2026-08-24")
	if err != nil {
		t.Fatalf("clear week: %v", err)
	}
	if count != 2 {
		t.Errorf("cleared %d entries, want 2", count)
	}

	other, _ := ps.WeekEntries("2026-08-31")
	if len(other) != 1 {
		t.Errorf("other week lost entries: %v", other)
	}
}
