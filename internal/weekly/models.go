package weekly

import (
	"strings"
	"time"
)

// DummyPrefix marks a day assignment that is a placeholder title rather
// than a recipe id. Used when the catalog cannot fill all seven days.
const DummyPrefix = "TBD: "

// Days maps day-of-week numbers (1..7, Monday=1) to a recipe id or a
// dummy marker. JSON keys are strings, matching the stored shape.
type Days map[int]string

// Copy returns an independent copy of the day assignments.
func (d Days) Copy() Days {
	out := make(Days, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// IsDummy reports whether a day assignment is a placeholder, not a recipe id.
func IsDummy(v string) bool {
	return strings.HasPrefix(v, DummyPrefix)
}

// IsRecipeID reports whether a day assignment references a stored recipe.
func IsRecipeID(v string) bool {
	return v != "" && !IsDummy(v)
}

// Plan is the committed weekly recipe assignment. Exactly one exists per
// week key; days always holds entries for 1..7.
type Plan struct {
	ID        int64     `json:"id"`
	WeekStart string    `json:"week_start"`
	Days      Days      `json:"days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft is an in-progress swap session. At most one exists per week key;
// it lives from the first preview until Confirm or Cancel.
type Draft struct {
	ID             int64     `json:"id"`
	WeekStart      string    `json:"week_start"`
	BasePlanID     int64     `json:"base_plan_id"`
	ProposedDays   Days      `json:"proposed_days"`
	RequestedSwaps []int     `json:"requested_swaps"`
	AvoidIDs       []string  `json:"avoid_ids"`
	Revision       int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShoppingItem is one raw ingredient line attributed to its source recipe.
type ShoppingItem struct {
	Ingredient  string `json:"ingredient"`
	RecipeID    string `json:"recipe_id"`
	RecipeTitle string `json:"recipe_title"`
}

// ShoppingList is the pre-formatting ingredient aggregate for a week.
// Pantry matching and AI consolidation happen downstream.
type ShoppingList struct {
	WeekStart string         `json:"week_start"`
	Items     []ShoppingItem `json:"items"`
}
