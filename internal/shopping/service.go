package shopping

import (
	"context"
	"fmt"
	"strings"

	"family-meal-planner/internal/settings"
	"family-meal-planner/internal/weekly"
)

// List modes.
const (
	ModeConsolidated = "consolidated"
	ModePerRecipe    = "per_recipe"
)

// ListBuilder produces the raw per-day shopping items for a week.
// Satisfied by *weekly.Engine.
type ListBuilder interface {
	BuildShoppingList(ctx context.Context) (*weekly.ShoppingList, error)
}

// PantrySource yields the configured pantry. Satisfied by
// *settings.Repository.
type PantrySource interface {
	GetPantry(ctx context.Context) ([]settings.PantryItem, error)
}

// Payload is the adapter-facing shopping list for a week.
type Payload struct {
	WeekStart       string        `json:"week_start"`
	Mode            string        `json:"mode"`
	Buy             []CountedItem `json:"buy"`
	PerRecipe       []RecipeItems `json:"per_recipe,omitempty"`
	PantryUsed      []CountedItem `json:"pantry_used"`
	PantryUncertain []CountedItem `json:"pantry_uncertain_used"`
	Note            string        `json:"note,omitempty"`
	Message         string        `json:"message"`
}

// Service turns the engine's raw shopping list into pantry-aware,
// optionally AI-consolidated output.
type Service struct {
	lists        ListBuilder
	pantry       PantrySource
	consolidator *Consolidator
}

func NewService(lists ListBuilder, pantry PantrySource, consolidator *Consolidator) *Service {
	return &Service{lists: lists, pantry: pantry, consolidator: consolidator}
}

// Build derives the shopping list for the current week's saved plan.
// Unknown modes fall back to consolidated.
func (s *Service) Build(ctx context.Context, mode string) (*Payload, error) {
	list, err := s.lists.BuildShoppingList(ctx)
	if err != nil {
		return nil, err
	}

	pantryItems, err := s.pantry.GetPantry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pantry: %w", err)
	}

	if mode == ModePerRecipe {
		perRecipe, agg := BuildPerRecipe(list, pantryItems)
		p := &Payload{
			WeekStart:       list.WeekStart,
			Mode:            ModePerRecipe,
			Buy:             []CountedItem{},
			PerRecipe:       perRecipe,
			PantryUsed:      agg.PantryUsed,
			PantryUncertain: agg.PantryUncertain,
		}
		p.Message = formatPerRecipeMessage(p)
		return p, nil
	}

	agg := BuildAggregate(list, pantryItems)
	p := &Payload{
		WeekStart:       list.WeekStart,
		Mode:            ModeConsolidated,
		Buy:             agg.Buy,
		PantryUsed:      agg.PantryUsed,
		PantryUncertain: agg.PantryUncertain,
	}

	merged, note := s.consolidator.Consolidate(ctx, agg.BuyLines)
	if note != "" {
		p.Note = note
	} else {
		buy := make([]CountedItem, 0, len(merged))
		for _, line := range merged {
			buy = append(buy, CountedItem{Name: line, Count: 1})
		}
		p.Buy = buy
	}

	p.Message = formatConsolidatedMessage(p)
	return p, nil
}

func formatConsolidatedMessage(p *Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Shopping list (week of %s)\n", p.WeekStart)

	if len(p.Buy) == 0 {
		b.WriteString("\nNothing to buy.\n")
	} else {
		b.WriteString("\nTo buy:\n")
		for _, item := range p.Buy {
			writeCountedLine(&b, item)
		}
	}
	writePantrySections(&b, p)
	if p.Note != "" {
		fmt.Fprintf(&b, "\nℹ️ %s\n", p.Note)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPerRecipeMessage(p *Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Shopping list by recipe (week of %s)\n", p.WeekStart)

	if len(p.PerRecipe) == 0 {
		b.WriteString("\nNothing to buy.\n")
	}
	for _, r := range p.PerRecipe {
		fmt.Fprintf(&b, "\n%s:\n", r.Title)
		if len(r.Ingredients) == 0 {
			b.WriteString("  (covered by pantry)\n")
			continue
		}
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&b, "  - %s\n", ing)
		}
	}
	writePantrySections(&b, p)
	return strings.TrimRight(b.String(), "\n")
}

func writePantrySections(b *strings.Builder, p *Payload) {
	if len(p.PantryUsed) > 0 {
		b.WriteString("\nFrom pantry:\n")
		for _, item := range p.PantryUsed {
			writeCountedLine(b, item)
		}
	}
	if len(p.PantryUncertain) > 0 {
		b.WriteString("\nCheck pantry first:\n")
		for _, item := range p.PantryUncertain {
			writeCountedLine(b, item)
		}
	}
}

func writeCountedLine(b *strings.Builder, item CountedItem) {
	if item.Count > 1 {
		fmt.Fprintf(b, "  - %s (x%d)\n", item.Name, item.Count)
	} else {
		fmt.Fprintf(b, "  - %s\n", item.Name)
	}
}
