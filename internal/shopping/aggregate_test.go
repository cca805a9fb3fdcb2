package shopping

import (
	"testing"

	"family-meal-planner/internal/settings"
	"family-meal-planner/internal/weekly"
)

func TestNormalizeIngredient(t *testing.T) {
	cases := map[string]string{
		"Tomatoes":        "tomato",
		"tomato":          "tomato",
		"Eggs":            "egg",
		"  Salt ":         "salt",
		"Onions!":         "onion",
		"2 red onions":    "2 red onions",
		"olive   oil":     "olive oil",
		"Rice (basmati)":  "rice basmati",
		"":                "",
		"gas":             "gas", // too short to singularize
	}
	for in, want := range cases {
		if got := NormalizeIngredient(in); got != want {
			t.Errorf("NormalizeIngredient(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanDisplayName(t *testing.T) {
	if got := CleanDisplayName("  Olive   Oil  "); got != "Olive Oil" {
		t.Errorf("CleanDisplayName = %q, want %q", got, "Olive Oil")
	}
}

func testPantry() []settings.PantryItem {
	return []settings.PantryItem{
		{Name: "Salt", Aliases: []string{"sea salt"}},
		{Name: "Garlic", Uncertain: true},
	}
}

func testList() *weekly.ShoppingList {
	return &weekly.ShoppingList{
		WeekStart: "2026-02-16",
		Items: []weekly.ShoppingItem{
			{Ingredient: "Salt", RecipeID: "r1", RecipeTitle: "Lasagna"},
			{Ingredient: "sea salt", RecipeID: "r2", RecipeTitle: "Fish Tacos"},
			{Ingredient: "Garlic", RecipeID: "r1", RecipeTitle: "Lasagna"},
			{Ingredient: "Tomatoes", RecipeID: "r1", RecipeTitle: "Lasagna"},
			{Ingredient: "tomatoes", RecipeID: "r2", RecipeTitle: "Fish Tacos"},
			{Ingredient: "Olive oil", RecipeID: "r2", RecipeTitle: "Fish Tacos"},
			{Ingredient: "  ", RecipeID: "r2", RecipeTitle: "Fish Tacos"},
		},
	}
}

func TestBuildAggregate(t *testing.T) {
	agg := BuildAggregate(testList(), testPantry())

	if len(agg.Buy) != 2 {
		t.Fatalf("got %d buy items, want 2: %+v", len(agg.Buy), agg.Buy)
	}
	// Sorted case-insensitively.
	if agg.Buy[0].Name != "Olive oil" || agg.Buy[0].Count != 1 {
		t.Errorf("Buy[0] = %+v, want Olive oil x1", agg.Buy[0])
	}
	if agg.Buy[1].Name != "Tomatoes" || agg.Buy[1].Count != 2 {
		t.Errorf("Buy[1] = %+v, want Tomatoes x2", agg.Buy[1])
	}

	if len(agg.PantryUsed) != 1 || agg.PantryUsed[0].Name != "Salt" || agg.PantryUsed[0].Count != 2 {
		t.Errorf("PantryUsed = %+v, want Salt x2 via alias", agg.PantryUsed)
	}
	if len(agg.PantryUncertain) != 1 || agg.PantryUncertain[0].Name != "Garlic" {
		t.Errorf("PantryUncertain = %+v, want Garlic", agg.PantryUncertain)
	}

	// Raw lines keep every non-pantry occurrence for the consolidator.
	if len(agg.BuyLines) != 3 {
		t.Errorf("BuyLines = %v, want 3 raw lines", agg.BuyLines)
	}
}

func TestBuildPerRecipe(t *testing.T) {
	perRecipe, agg := BuildPerRecipe(testList(), testPantry())

	if len(perRecipe) != 2 {
		t.Fatalf("got %d recipe groups, want 2", len(perRecipe))
	}
	if perRecipe[0].Title != "Lasagna" {
		t.Errorf("first group = %q, want Lasagna (input order)", perRecipe[0].Title)
	}
	if len(perRecipe[0].Ingredients) != 1 || perRecipe[0].Ingredients[0] != "Tomatoes" {
		t.Errorf("Lasagna ingredients = %v, want [Tomatoes]", perRecipe[0].Ingredients)
	}
	if len(perRecipe[1].Ingredients) != 2 {
		t.Errorf("Fish Tacos ingredients = %v, want 2 items", perRecipe[1].Ingredients)
	}
	if len(agg.PantryUsed) != 1 || len(agg.PantryUncertain) != 1 {
		t.Errorf("pantry buckets = %+v / %+v", agg.PantryUsed, agg.PantryUncertain)
	}
}
