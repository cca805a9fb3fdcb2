package settings

// PantryItem is a staple the household assumes is at home; matching
// ingredients are kept off the buy list.
type PantryItem struct {
	Name      string   `json:"name"`
	Uncertain bool     `json:"uncertain"`
	Aliases   []string `json:"aliases"`
}

// Preferences bias weekly plan generation toward tagged recipes.
type Preferences struct {
	Tags []string `json:"tags"`
}

// Telegram controls automatic bot notifications.
type Telegram struct {
	AutoSendPlan bool `json:"auto_send_plan"`
	AutoSendShop bool `json:"auto_send_shop"`
}

// DefaultPantryItems seed the pantry before the household customizes it.
var DefaultPantryItems = []PantryItem{
	{Name: "Salt"},
	{Name: "Pepper"},
	{Name: "Sugar"},
	{Name: "Flour"},
	{Name: "Olive oil", Aliases: []string{"Cooking oil", "Vegetable oil"}},
	{Name: "Vinegar"},
	{Name: "Soy sauce"},
	{Name: "Mustard"},
	{Name: "Tomato paste"},
	{Name: "Broth", Aliases: []string{"Stock", "Bouillon"}},
	{Name: "Rice"},
	{Name: "Pasta", Aliases: []string{"Noodles"}},
	{Name: "Paprika powder"},
	{Name: "Curry powder"},
	{Name: "Chili flakes"},
	{Name: "Oregano"},
	{Name: "Basil"},
	{Name: "Baking powder"},
	{Name: "Cornstarch", Aliases: []string{"Starch"}},
	{Name: "Garlic", Uncertain: true},
	{Name: "Onions", Uncertain: true},
}
