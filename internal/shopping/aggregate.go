package shopping

import (
	"sort"
	"strings"

	"family-meal-planner/internal/settings"
	"family-meal-planner/internal/weekly"
)

// CountedItem is an aggregated shopping entry.
type CountedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RecipeItems groups the to-buy ingredients of a single recipe.
type RecipeItems struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
}

// Aggregate is the pantry-filtered roll-up of a weekly shopping list.
type Aggregate struct {
	Buy             []CountedItem
	BuyLines        []string // raw display lines, input for AI consolidation
	PantryUsed      []CountedItem
	PantryUncertain []CountedItem
}

// pantryEntry resolves a normalized alias back to its pantry item.
type pantryEntry struct {
	name      string
	uncertain bool
}

// buildPantryAliasMap indexes pantry names and aliases by their
// normalized form. First entry wins on alias collisions.
func buildPantryAliasMap(items []settings.PantryItem) map[string]pantryEntry {
	aliasMap := make(map[string]pantryEntry)
	for _, item := range items {
		candidates := append([]string{item.Name}, item.Aliases...)
		for _, cand := range candidates {
			norm := NormalizeIngredient(cand)
			if norm == "" {
				continue
			}
			if _, exists := aliasMap[norm]; !exists {
				aliasMap[norm] = pantryEntry{name: item.Name, uncertain: item.Uncertain}
			}
		}
	}
	return aliasMap
}

// BuildAggregate folds the engine's raw shopping items into buy and
// pantry buckets.
func BuildAggregate(list *weekly.ShoppingList, pantry []settings.PantryItem) *Aggregate {
	aliasMap := buildPantryAliasMap(pantry)

	buyCounts := map[string]int{}
	buyDisplay := map[string]string{}
	var buyLines []string
	pantryUsed := map[string]int{}
	pantryUncertain := map[string]int{}

	for _, item := range list.Items {
		raw := strings.TrimSpace(item.Ingredient)
		if raw == "" {
			continue
		}
		norm := NormalizeIngredient(raw)
		if norm == "" {
			continue
		}

		if entry, ok := aliasMap[norm]; ok {
			if entry.uncertain {
				pantryUncertain[entry.name]++
			} else {
				pantryUsed[entry.name]++
			}
			continue
		}

		display := CleanDisplayName(raw)
		buyLines = append(buyLines, display)
		if _, seen := buyDisplay[norm]; !seen {
			buyDisplay[norm] = display
		}
		buyCounts[norm]++
	}

	return &Aggregate{
		Buy:             toCountedList(buyCounts, buyDisplay),
		BuyLines:        buyLines,
		PantryUsed:      toCountedList(pantryUsed, nil),
		PantryUncertain: toCountedList(pantryUncertain, nil),
	}
}

// BuildPerRecipe groups the engine's raw shopping items by source
// recipe, still honoring the pantry.
func BuildPerRecipe(list *weekly.ShoppingList, pantry []settings.PantryItem) ([]RecipeItems, *Aggregate) {
	aliasMap := buildPantryAliasMap(pantry)

	var perRecipe []RecipeItems
	index := map[string]int{}
	pantryUsed := map[string]int{}
	pantryUncertain := map[string]int{}

	for _, item := range list.Items {
		raw := strings.TrimSpace(item.Ingredient)
		if raw == "" {
			continue
		}
		norm := NormalizeIngredient(raw)
		if norm == "" {
			continue
		}

		i, ok := index[item.RecipeID]
		if !ok {
			perRecipe = append(perRecipe, RecipeItems{Title: item.RecipeTitle, Ingredients: []string{}})
			i = len(perRecipe) - 1
			index[item.RecipeID] = i
		}

		if entry, matched := aliasMap[norm]; matched {
			if entry.uncertain {
				pantryUncertain[entry.name]++
			} else {
				pantryUsed[entry.name]++
			}
			continue
		}
		perRecipe[i].Ingredients = append(perRecipe[i].Ingredients, CleanDisplayName(raw))
	}

	agg := &Aggregate{
		PantryUsed:      toCountedList(pantryUsed, nil),
		PantryUncertain: toCountedList(pantryUncertain, nil),
	}
	return perRecipe, agg
}

func toCountedList(counts map[string]int, displayMap map[string]string) []CountedItem {
	items := make([]CountedItem, 0, len(counts))
	for k, v := range counts {
		name := k
		if displayMap != nil {
			name = displayMap[k]
		}
		items = append(items, CountedItem{Name: name, Count: v})
	}
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items
}
