package grocery

import "strings"

// CategoryOther is the fallback when no keyword matches. It carries no
// keywords of its own and is never searched.
const CategoryOther = "Other"

type category struct {
	name     string
	keywords []string
}

// categoryTable is searched in declaration order, and each keyword list in
// declaration order; the first keyword that is a substring of the lowercased
// item name wins. Collisions between categories (e.g. "tomato sauce") are
// resolved by table order, not by keyword length.
var categoryTable = []category{
	{"Produce", []string{
		"tomato", "onion", "garlic", "pepper", "carrot", "celery",
		"lettuce", "spinach", "kale", "arugula", "broccoli", "cauliflower",
		"cabbage", "cucumber", "zucchini", "squash", "mushroom", "potato",
		"avocado", "corn", "green bean", "asparagus", "eggplant",
		"apple", "banana", "lemon", "lime", "orange", "berry", "berries",
		"grape", "melon", "mango", "peach", "pear", "pineapple",
		"cilantro", "parsley", "basil", "mint", "ginger", "scallion",
		"shallot", "leek", "herb", "fruit", "salad",
	}},
	{"Meat & Seafood", []string{
		"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham",
		"steak", "lamb", "veal", "salmon", "shrimp", "tuna", "cod",
		"tilapia", "crab", "lobster", "fish",
	}},
	{"Dairy & Eggs", []string{
		"milk", "cheese", "butter", "yogurt", "cream", "egg",
		"half and half",
	}},
	{"Grains & Pasta", []string{
		"rice", "pasta", "spaghetti", "noodle", "macaroni", "quinoa",
		"couscous", "barley", "oat", "cereal", "bread", "tortilla",
		"bagel", "bun",
	}},
	{"Canned & Jarred", []string{
		"canned", "can of", "jarred", "jar of", "broth", "stock", "soup",
		"beans", "chickpea", "lentil", "olives", "tomato paste",
	}},
	{"Spices & Seasonings", []string{
		"salt", "cumin", "paprika", "oregano", "thyme", "rosemary",
		"cinnamon", "nutmeg", "turmeric", "curry", "chili powder",
		"cayenne", "bay lea", "spice", "seasoning",
	}},
	{"Oils & Vinegars", []string{
		"oil", "vinegar",
	}},
	{"Condiments & Sauces", []string{
		"ketchup", "mustard", "mayonnaise", "mayo", "salsa", "dressing",
		"honey", "syrup", "jam", "jelly", "sauce",
	}},
	{"Baking", []string{
		"flour", "sugar", "baking powder", "baking soda", "yeast",
		"vanilla", "cocoa", "chocolate", "cornstarch",
	}},
}

// Categorize returns the grocery category for an ingredient name. It is a
// pure function, total over all string inputs.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, cat := range categoryTable {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.name
			}
		}
	}
	return CategoryOther
}

// Categories returns the closed category set in display order, ending with
// the fallback.
func Categories() []string {
	names := make([]string, 0, len(categoryTable)+1)
	for _, cat := range categoryTable {
		names = append(names, cat.name)
	}
	return append(names, CategoryOther)
}
