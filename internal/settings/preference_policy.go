package settings

import (
	"context"

	"family-meal-planner/internal/recipe"
)

// TagPreferencePolicy supplies recipe ids whose tags intersect the
// household's preference tags. It satisfies the engine's
// PreferencePolicy contract; no preferences means no bias.
type TagPreferencePolicy struct {
	settings *Repository
	recipes  *recipe.Repository
}

// NewTagPreferencePolicy creates a new TagPreferencePolicy.
func NewTagPreferencePolicy(settings *Repository, recipes *recipe.Repository) *TagPreferencePolicy {
	return &TagPreferencePolicy{settings: settings, recipes: recipes}
}

// PreferredIDs returns up to limit active recipe ids matching the
// preference tags.
func (p *TagPreferencePolicy) PreferredIDs(ctx context.Context, limit int) ([]string, error) {
	prefs, err := p.settings.GetPreferences(ctx)
	if err != nil {
		return nil, err
	}
	if len(prefs.Tags) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(prefs.Tags))
	for _, t := range prefs.Tags {
		wanted[t] = struct{}{}
	}

	active, err := p.recipes.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, rec := range active {
		for _, tag := range rec.Tags {
			if _, ok := wanted[tag]; ok {
				ids = append(ids, rec.ID)
				break
			}
		}
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}
