package weekly

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"family-meal-planner/internal/recipe"
)

// Catalog is the engine's read-only view of the recipe store. Only active
// recipes are visible through it.
type Catalog interface {
	ListActive(ctx context.Context) ([]recipe.Recipe, error)
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
}

// PreferencePolicy supplies recipe ids to bias plan generation toward.
// A nil policy means unbiased sampling.
type PreferencePolicy interface {
	PreferredIDs(ctx context.Context, limit int) ([]string, error)
}

// At most this many of the seven picks come from the preference policy.
const preferMax = 3

// draftUpdateRetries bounds the optimistic-concurrency retry loop in
// PreviewSwap before ErrConcurrentModification is surfaced.
const draftUpdateRetries = 3

// planStore is the persistence surface the engine drives. *Store is the
// only real implementation; tests wrap it to interleave writers.
type planStore interface {
	GetPlan(ctx context.Context, weekStart string) (*Plan, error)
	UpsertPlan(ctx context.Context, weekStart string, days Days) error
	GetDraft(ctx context.Context, weekStart string) (*Draft, error)
	CreateDraft(ctx context.Context, d *Draft) (conflict bool, err error)
	UpdateDraft(ctx context.Context, d *Draft) (updated bool, err error)
	DeleteDraft(ctx context.Context, weekStart string) (deleted bool, err error)
	withTx(ctx context.Context, fn func(*Store) error) error
}

// Engine owns the weekly plan lifecycle: generation, the swap draft
// session, confirm/cancel, and the raw shopping aggregate. Both the REST
// layer and the bot call these operations and nothing else.
type Engine struct {
	store   planStore
	catalog Catalog
	prefs   PreferencePolicy
	rng     *rand.Rand
	now     func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRand injects a seeded random source, used by tests for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock injects the time source that decides the current week key.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPreferencePolicy injects the optional generation bias.
func WithPreferencePolicy(p PreferencePolicy) Option {
	return func(e *Engine) { e.prefs = p }
}

// NewEngine creates a new Engine.
func NewEngine(store *Store, catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		catalog: catalog,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentWeek returns the week key all operations are scoped to.
func (e *Engine) CurrentWeek() string {
	return WeekKey(e.now())
}

// GetCurrent returns the committed plan and open draft for the current
// week. Either may be nil; there are no side effects.
func (e *Engine) GetCurrent(ctx context.Context) (*Plan, *Draft, error) {
	week := e.CurrentWeek()

	plan, err := e.store.GetPlan(ctx, week)
	if err != nil {
		return nil, nil, err
	}
	draft, err := e.store.GetDraft(ctx, week)
	if err != nil {
		return nil, nil, err
	}
	return plan, draft, nil
}

// GeneratePlan builds seven day assignments from the active catalog and
// overwrites any existing plan for the week. An open draft is deleted:
// its base plan no longer exists and it must never be shown again.
func (e *Engine) GeneratePlan(ctx context.Context) (*Plan, error) {
	week := e.CurrentWeek()

	active, err := e.catalog.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active recipes: %w", err)
	}
	if len(active) == 0 {
		return nil, ErrNoRecipesAvailable
	}

	picked := e.pickPlanRecipes(ctx, active)

	days := make(Days, 7)
	dummy := 0
	for d := 1; d <= 7; d++ {
		if d-1 < len(picked) {
			days[d] = picked[d-1]
		} else {
			dummy++
			days[d] = fmt.Sprintf("%sNew recipe %d", DummyPrefix, dummy)
		}
	}

	err = e.store.withTx(ctx, func(s *Store) error {
		if err := s.UpsertPlan(ctx, week, days); err != nil {
			return err
		}
		_, err := s.DeleteDraft(ctx, week)
		return err
	})
	if err != nil {
		return nil, err
	}

	return e.store.GetPlan(ctx, week)
}

// pickPlanRecipes selects up to seven distinct recipe ids, preferred
// ones first when a policy is configured.
func (e *Engine) pickPlanRecipes(ctx context.Context, active []recipe.Recipe) []string {
	ids := make([]string, 0, len(active))
	for _, rec := range active {
		ids = append(ids, rec.ID)
	}

	var picked []string
	taken := make(map[string]struct{})

	if e.prefs != nil {
		preferred, err := e.prefs.PreferredIDs(ctx, preferMax)
		if err == nil && len(preferred) > 0 {
			activeSet := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				activeSet[id] = struct{}{}
			}
			sample, _ := Sample(e.rng, preferred, nil, preferMax)
			for _, id := range sample {
				if _, ok := activeSet[id]; !ok {
					continue
				}
				if len(picked) >= preferMax {
					break
				}
				picked = append(picked, id)
				taken[id] = struct{}{}
			}
		}
	}

	rest, err := Sample(e.rng, ids, taken, 7-len(picked))
	if err != nil && err != ErrInsufficientCandidates {
		return picked
	}
	return append(picked, rest...)
}

// PreviewSwap proposes replacements for the given days, creating the
// week's draft on first use and rerolling it afterwards. Recipes rejected
// by a reroll join the avoid set and stay ineligible until Confirm or
// Cancel. Returns the updated draft plus warnings for days that could not
// be changed because the catalog ran out of candidates.
func (e *Engine) PreviewSwap(ctx context.Context, days []int) (*Draft, []string, error) {
	swapDays, err := validateSwapDays(days)
	if err != nil {
		return nil, nil, err
	}

	week := e.CurrentWeek()

	for attempt := 0; attempt < draftUpdateRetries; attempt++ {
		plan, err := e.store.GetPlan(ctx, week)
		if err != nil {
			return nil, nil, err
		}
		if plan == nil {
			return nil, nil, ErrNoPlanToSwap
		}

		draft, err := e.store.GetDraft(ctx, week)
		if err != nil {
			return nil, nil, err
		}
		if draft == nil {
			draft = &Draft{
				WeekStart:    week,
				BasePlanID:   plan.ID,
				ProposedDays: plan.Days.Copy(),
			}
			conflict, err := e.store.CreateDraft(ctx, draft)
			if err != nil {
				return nil, nil, err
			}
			if conflict {
				// Another preview created the draft first; reroll against it.
				continue
			}
			draft, err = e.store.GetDraft(ctx, week)
			if err != nil {
				return nil, nil, err
			}
			if draft == nil {
				return nil, nil, ErrConcurrentModification
			}
		}

		warnings, err := e.rerollDraft(ctx, plan, draft, swapDays)
		if err != nil {
			return nil, nil, err
		}

		updated, err := e.store.UpdateDraft(ctx, draft)
		if err != nil {
			return nil, nil, err
		}
		if !updated {
			continue
		}

		fresh, err := e.store.GetDraft(ctx, week)
		if err != nil {
			return nil, nil, err
		}
		return fresh, warnings, nil
	}

	return nil, nil, ErrConcurrentModification
}

// rerollDraft mutates the draft in place: it samples replacements for
// the swapped days, then moves the displaced proposals into the avoid
// set. Days that cannot be filled keep their prior proposal.
func (e *Engine) rerollDraft(ctx context.Context, plan *Plan, draft *Draft, swapDays []int) ([]string, error) {
	avoid := make(map[string]struct{}, len(draft.AvoidIDs))
	for _, id := range draft.AvoidIDs {
		avoid[id] = struct{}{}
	}

	exclude := make(map[string]struct{}, len(avoid)+len(swapDays))
	for id := range avoid {
		exclude[id] = struct{}{}
	}
	for _, d := range swapDays {
		if cur := draft.ProposedDays[d]; IsRecipeID(cur) {
			exclude[cur] = struct{}{}
		}
	}

	active, err := e.catalog.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active recipes: %w", err)
	}
	candidates := make([]string, 0, len(active))
	for _, rec := range active {
		candidates = append(candidates, rec.ID)
	}

	picks, err := Sample(e.rng, candidates, exclude, len(swapDays))
	if err != nil && err != ErrInsufficientCandidates {
		return nil, err
	}

	var warnings []string
	for i, d := range swapDays {
		if i < len(picks) {
			// Reject semantics: a proposal displaced by this reroll becomes
			// ineligible for the rest of the session. A kept proposal was
			// never rejected and stays eligible.
			if prev := draft.ProposedDays[d]; IsRecipeID(prev) && prev != plan.Days[d] {
				avoid[prev] = struct{}{}
			}
			draft.ProposedDays[d] = picks[i]
		} else {
			warnings = append(warnings,
				fmt.Sprintf("%s kept its previous suggestion: no eligible recipes left", DayLabels[d]))
		}
	}

	draft.RequestedSwaps = swapDays
	draft.AvoidIDs = sortedIDs(avoid)
	return warnings, nil
}

// Confirm commits the draft's proposed days into the week's plan and
// closes the session, discarding the avoid set.
func (e *Engine) Confirm(ctx context.Context) (*Plan, error) {
	week := e.CurrentWeek()

	draft, err := e.store.GetDraft(ctx, week)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrNoDraftToConfirm
	}

	err = e.store.withTx(ctx, func(s *Store) error {
		if err := s.UpsertPlan(ctx, week, draft.ProposedDays); err != nil {
			return err
		}
		_, err := s.DeleteDraft(ctx, week)
		return err
	})
	if err != nil {
		return nil, err
	}

	return e.store.GetPlan(ctx, week)
}

// Cancel discards the open draft, leaving the plan untouched. Cancelling
// an already-closed session returns ErrNoDraftToCancel; adapters may
// treat that as a no-op success.
func (e *Engine) Cancel(ctx context.Context) error {
	deleted, err := e.store.DeleteDraft(ctx, e.CurrentWeek())
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoDraftToCancel
	}
	return nil
}

// BuildShoppingList aggregates raw ingredient lines across the committed
// plan's recipe days. Dummy and empty days are skipped; normalization and
// AI consolidation are the caller's concern.
func (e *Engine) BuildShoppingList(ctx context.Context) (*ShoppingList, error) {
	week := e.CurrentWeek()

	plan, err := e.store.GetPlan(ctx, week)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNoPlanForShop
	}

	list := &ShoppingList{WeekStart: week, Items: []ShoppingItem{}}
	for d := 1; d <= 7; d++ {
		rid := plan.Days[d]
		if !IsRecipeID(rid) {
			continue
		}
		rec, err := e.catalog.Get(ctx, rid)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		for _, ing := range rec.Ingredients {
			if ing == "" {
				continue
			}
			list.Items = append(list.Items, ShoppingItem{
				Ingredient:  ing,
				RecipeID:    rec.ID,
				RecipeTitle: rec.Title,
			})
		}
	}
	return list, nil
}

// validateSwapDays rejects empty, duplicate or out-of-range selections
// before any store access happens.
func validateSwapDays(days []int) ([]int, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no days given", ErrInvalidDaySelection)
	}

	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 7 {
			return nil, fmt.Errorf("%w: day %d out of range 1..7", ErrInvalidDaySelection, d)
		}
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("%w: day %d repeated", ErrInvalidDaySelection, d)
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Ints(out)
	return out, nil
}

func sortedIDs(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
