package grocery

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantName string
		wantQty  string
	}{
		{"quantity unit and prep word", "2 cups diced tomatoes", "Tomatoes", "2 cups"},
		{"fraction quantity", "1/2 tsp salt", "Salt", "1/2 tsp"},
		{"range quantity", "2-3 cloves garlic, minced", "Garlic", "2-3 cloves"},
		{"multiple prep words", "1 lb boneless skinless chicken breast", "Chicken breast", "1 lb"},
		{"no quantity", "olive oil", "Olive oil", ""},
		{"unit without number", "pinch cayenne", "Cayenne", "pinch"},
		{"mixed case input", "2 Cups Shredded CHEESE", "Cheese", "2 cups"},
		{"parenthetical stripped", "1 can (15 oz) black beans", "15 oz black beans", "1 can"},
		{"trailing prep phrase", "basil, for garnish", "Basil", ""},
		{"multiword prep word", "butter, room temperature", "Butter", ""},
		{"unit prefix of a word", "cantaloupe", "Cantaloupe", ""},
		{"decimal quantity", "1.5 kg flour", "Flour", "1.5 kg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.line)
			if got.Name != tt.wantName {
				t.Errorf("Normalize(%q).Name = %q, want %q", tt.line, got.Name, tt.wantName)
			}
			if got.Quantity != tt.wantQty {
				t.Errorf("Normalize(%q).Quantity = %q, want %q", tt.line, got.Quantity, tt.wantQty)
			}
		})
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	got := Normalize("")
	if got.Name != "" || got.Quantity != "" {
		t.Errorf("Normalize(\"\") = %+v, want empty name and quantity", got)
	}
}

func TestNormalizeFallbackName(t *testing.T) {
	// A line made entirely of prep words would strip to nothing, so the
	// original untouched input becomes the name.
	got := Normalize("Diced")
	if got.Name != "Diced" {
		t.Errorf("name = %q, want fallback to original input", got.Name)
	}
	if got.Quantity != "" {
		t.Errorf("quantity = %q, want empty", got.Quantity)
	}
}

func TestNormalizeNonEmptyNameInvariant(t *testing.T) {
	lines := []string{
		"2 cups diced tomatoes",
		"diced",
		"  ",
		"1",
		"to taste",
		"(,)",
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		if got := Normalize(line); got.Name == "" {
			t.Errorf("Normalize(%q).Name is empty, want non-empty for non-empty input", line)
		}
	}
}

func TestNormalizeIdempotentAndPure(t *testing.T) {
	line := "2 cups diced tomatoes"
	first := Normalize(line)
	second := Normalize(line)
	if first != second {
		t.Errorf("repeated calls differ: %+v vs %+v", first, second)
	}
}
