package weekly

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"family-meal-planner/internal/database"
	"family-meal-planner/internal/recipe"
)

// testClock pins every engine operation to the week of Mon 2026-02-16.
func testClock() time.Time {
	return time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, seed int64, recipeCount int) (*Engine, *recipe.Repository) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := recipe.NewRepository(db.SQL)
	for i := 1; i <= recipeCount; i++ {
		rec := &recipe.Recipe{
			ID:    fmt.Sprintf("r%d", i),
			Title: fmt.Sprintf("Recipe %d", i),
			Ingredients: []string{
				fmt.Sprintf("ingredient %d-a", i),
				fmt.Sprintf("ingredient %d-b", i),
			},
		}
		if err := repo.Create(context.Background(), rec); err != nil {
			t.Fatalf("failed to seed recipe: %v", err)
		}
	}

	eng := NewEngine(NewStore(db.SQL), repo,
		WithRand(rand.New(rand.NewSource(seed))),
		WithClock(testClock),
	)
	return eng, repo
}

func TestCurrentWeek(t *testing.T) {
	eng, _ := newTestEngine(t, 1, 0)
	if got := eng.CurrentWeek(); got != "2026-02-16" {
		t.Errorf("CurrentWeek() = %q, want 2026-02-16", got)
	}
}

func TestGeneratePlan(t *testing.T) {
	t.Run("NoRecipes", func(t *testing.T) {
		eng, _ := newTestEngine(t, 1, 0)
		_, err := eng.GeneratePlan(context.Background())
		if !errors.Is(err, ErrNoRecipesAvailable) {
			t.Errorf("err = %v, want ErrNoRecipesAvailable", err)
		}
	})

	t.Run("FillsDummiesWhenCatalogIsSmall", func(t *testing.T) {
		eng, _ := newTestEngine(t, 1, 3)
		plan, err := eng.GeneratePlan(context.Background())
		if err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		recipeDays, dummyDays := 0, 0
		seen := map[string]bool{}
		for d := 1; d <= 7; d++ {
			v := plan.Days[d]
			switch {
			case IsDummy(v):
				dummyDays++
			case IsRecipeID(v):
				recipeDays++
				if seen[v] {
					t.Errorf("recipe %s assigned twice", v)
				}
				seen[v] = true
			default:
				t.Errorf("day %d is empty", d)
			}
		}
		if recipeDays != 3 || dummyDays != 4 {
			t.Errorf("got %d recipe days and %d dummy days, want 3 and 4", recipeDays, dummyDays)
		}
	})

	t.Run("SevenUniqueRecipes", func(t *testing.T) {
		eng, _ := newTestEngine(t, 2, 10)
		plan, err := eng.GeneratePlan(context.Background())
		if err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		seen := map[string]bool{}
		for d := 1; d <= 7; d++ {
			v := plan.Days[d]
			if !IsRecipeID(v) {
				t.Errorf("day %d is not a recipe: %q", d, v)
				continue
			}
			if seen[v] {
				t.Errorf("recipe %s assigned twice", v)
			}
			seen[v] = true
		}
	})

	t.Run("OverwritesPlanAndDiscardsDraft", func(t *testing.T) {
		eng, _ := newTestEngine(t, 3, 10)
		ctx := context.Background()

		if _, err := eng.GeneratePlan(ctx); err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}
		if _, _, err := eng.PreviewSwap(ctx, []int{2}); err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}

		if _, err := eng.GeneratePlan(ctx); err != nil {
			t.Fatalf("second GeneratePlan: %v", err)
		}
		_, draft, err := eng.GetCurrent(ctx)
		if err != nil {
			t.Fatalf("GetCurrent: %v", err)
		}
		if draft != nil {
			t.Error("regenerating the plan should discard the open draft")
		}
	})
}

func TestPreviewSwapValidation(t *testing.T) {
	eng, _ := newTestEngine(t, 1, 10)
	ctx := context.Background()

	for name, days := range map[string][]int{
		"Empty":      {},
		"DayZero":    {0},
		"DayEight":   {8},
		"Duplicated": {2, 2},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := eng.PreviewSwap(ctx, days)
			if !errors.Is(err, ErrInvalidDaySelection) {
				t.Errorf("err = %v, want ErrInvalidDaySelection", err)
			}
		})
	}
}

func TestPreviewSwap(t *testing.T) {
	t.Run("NoPlan", func(t *testing.T) {
		eng, _ := newTestEngine(t, 1, 10)
		_, _, err := eng.PreviewSwap(context.Background(), []int{2})
		if !errors.Is(err, ErrNoPlanToSwap) {
			t.Errorf("err = %v, want ErrNoPlanToSwap", err)
		}
	})

	t.Run("ReplacesOnlyRequestedDays", func(t *testing.T) {
		eng, _ := newTestEngine(t, 4, 10)
		ctx := context.Background()

		plan, err := eng.GeneratePlan(ctx)
		if err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		draft, warnings, err := eng.PreviewSwap(ctx, []int{2, 5})
		if err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("unexpected warnings: %v", warnings)
		}

		for d := 1; d <= 7; d++ {
			if d == 2 || d == 5 {
				if draft.ProposedDays[d] == plan.Days[d] {
					t.Errorf("day %d was not rerolled", d)
				}
				continue
			}
			if draft.ProposedDays[d] != plan.Days[d] {
				t.Errorf("day %d changed although it was not requested", d)
			}
		}
		if draft.ProposedDays[2] == draft.ProposedDays[5] {
			t.Error("both swapped days got the same recipe")
		}

		// The committed plan must stay untouched by the preview.
		stored, _, err := eng.GetCurrent(ctx)
		if err != nil {
			t.Fatalf("GetCurrent: %v", err)
		}
		for d := 1; d <= 7; d++ {
			if stored.Days[d] != plan.Days[d] {
				t.Errorf("committed plan changed on day %d", d)
			}
		}
	})

	t.Run("RejectedRecipesJoinAvoidSet", func(t *testing.T) {
		eng, _ := newTestEngine(t, 5, 12)
		ctx := context.Background()

		if _, err := eng.GeneratePlan(ctx); err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		var proposals []string
		for i := 0; i < 3; i++ {
			draft, _, err := eng.PreviewSwap(ctx, []int{2})
			if err != nil {
				t.Fatalf("PreviewSwap %d: %v", i, err)
			}
			proposals = append(proposals, draft.ProposedDays[2])
		}

		for i := 0; i < len(proposals); i++ {
			for j := i + 1; j < len(proposals); j++ {
				if proposals[i] == proposals[j] {
					t.Errorf("proposal %q repeated within one session", proposals[i])
				}
			}
		}

		_, draft, err := eng.GetCurrent(ctx)
		if err != nil {
			t.Fatalf("GetCurrent: %v", err)
		}
		avoid := strings.Join(draft.AvoidIDs, ",")
		for _, rejected := range proposals[:2] {
			if !strings.Contains(avoid, rejected) {
				t.Errorf("rejected recipe %s missing from avoid set %v", rejected, draft.AvoidIDs)
			}
		}
	})

	t.Run("KeepsDayWhenNoCandidatesLeft", func(t *testing.T) {
		eng, _ := newTestEngine(t, 6, 1)
		ctx := context.Background()

		plan, err := eng.GeneratePlan(ctx)
		if err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		draft, warnings, err := eng.PreviewSwap(ctx, []int{1})
		if err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}
		if draft.ProposedDays[1] != plan.Days[1] {
			t.Errorf("day 1 changed although the catalog had no alternative")
		}
		if len(warnings) != 1 || !strings.Contains(warnings[0], "Mon kept its previous suggestion") {
			t.Errorf("warnings = %v, want a kept-suggestion warning for Mon", warnings)
		}
	})

	t.Run("KeptDaysStayOutOfAvoidSet", func(t *testing.T) {
		eng, _ := newTestEngine(t, 11, 3)
		ctx := context.Background()

		plan, err := eng.GeneratePlan(ctx)
		if err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		first, _, err := eng.PreviewSwap(ctx, []int{3})
		if err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}
		rerolled := first.ProposedDays[3]
		if rerolled == plan.Days[3] {
			t.Fatalf("day 3 was not rerolled")
		}

		// Swapping all three recipe days leaves a single eligible recipe,
		// so two days keep their suggestion.
		draft, warnings, err := eng.PreviewSwap(ctx, []int{1, 2, 3})
		if err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}
		if len(warnings) != 2 {
			t.Fatalf("warnings = %v, want 2 kept-suggestion warnings", warnings)
		}
		if draft.ProposedDays[1] != plan.Days[3] {
			t.Errorf("day 1 = %q, want the only eligible recipe %q", draft.ProposedDays[1], plan.Days[3])
		}
		if draft.ProposedDays[3] != rerolled {
			t.Errorf("day 3 = %q, want its kept suggestion %q", draft.ProposedDays[3], rerolled)
		}
		// Kept suggestions were never replaced, so nothing joins the
		// avoid set.
		if len(draft.AvoidIDs) != 0 {
			t.Errorf("avoid set = %v, want empty", draft.AvoidIDs)
		}
	})

	t.Run("DummyDayCanReceiveRecipe", func(t *testing.T) {
		eng, _ := newTestEngine(t, 7, 1)
		ctx := context.Background()

		if _, err := eng.GeneratePlan(ctx); err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		// With one recipe the plan has a single recipe day; the rest are
		// dummies. Rerolling a dummy day may reuse that recipe.
		draft, warnings, err := eng.PreviewSwap(ctx, []int{7})
		if err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("unexpected warnings: %v", warnings)
		}
		if !IsRecipeID(draft.ProposedDays[7]) {
			t.Errorf("day 7 = %q, want a recipe id", draft.ProposedDays[7])
		}
	})
}

// racingStore slips a competing draft update in front of the engine's
// own write, making the revision check fail a set number of times.
type racingStore struct {
	*Store
	conflicts int
}

func (r *racingStore) UpdateDraft(ctx context.Context, d *Draft) (bool, error) {
	if r.conflicts > 0 {
		r.conflicts--
		if fresh, err := r.Store.GetDraft(ctx, d.WeekStart); err == nil && fresh != nil {
			if _, err := r.Store.UpdateDraft(ctx, fresh); err != nil {
				return false, err
			}
		}
	}
	return r.Store.UpdateDraft(ctx, d)
}

func TestPreviewSwapConcurrency(t *testing.T) {
	setup := func(t *testing.T, conflicts int) *Engine {
		t.Helper()
		eng, _ := newTestEngine(t, 12, 10)
		ctx := context.Background()

		if _, err := eng.GeneratePlan(ctx); err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}
		// Open the draft up front so the races below hit the update path.
		if _, _, err := eng.PreviewSwap(ctx, []int{2}); err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}

		eng.store = &racingStore{Store: eng.store.(*Store), conflicts: conflicts}
		return eng
	}

	t.Run("RetriesAgainstFreshDraft", func(t *testing.T) {
		eng := setup(t, 1)

		draft, _, err := eng.PreviewSwap(context.Background(), []int{3})
		if err != nil {
			t.Fatalf("PreviewSwap should absorb a single conflict: %v", err)
		}
		// Draft history: create (1), first swap (2), competing write (3),
		// retried swap (4).
		if draft.Revision != 4 {
			t.Errorf("draft revision = %d, want 4 after the retried write", draft.Revision)
		}
	})

	t.Run("SurfacesErrorWhenRetriesExhaust", func(t *testing.T) {
		eng := setup(t, draftUpdateRetries)

		_, _, err := eng.PreviewSwap(context.Background(), []int{3})
		if !errors.Is(err, ErrConcurrentModification) {
			t.Errorf("err = %v, want ErrConcurrentModification", err)
		}
	})
}

func TestConfirm(t *testing.T) {
	t.Run("NoDraft", func(t *testing.T) {
		eng, _ := newTestEngine(t, 1, 10)
		_, err := eng.Confirm(context.Background())
		if !errors.Is(err, ErrNoDraftToConfirm) {
			t.Errorf("err = %v, want ErrNoDraftToConfirm", err)
		}
	})

	t.Run("CommitsProposalAndClosesSession", func(t *testing.T) {
		eng, _ := newTestEngine(t, 8, 10)
		ctx := context.Background()

		if _, err := eng.GeneratePlan(ctx); err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}
		draft, _, err := eng.PreviewSwap(ctx, []int{3})
		if err != nil {
			t.Fatalf("PreviewSwap: %v", err)
		}

		plan, err := eng.Confirm(ctx)
		if err != nil {
			t.Fatalf("Confirm: %v", err)
		}
		for d := 1; d <= 7; d++ {
			if plan.Days[d] != draft.ProposedDays[d] {
				t.Errorf("day %d = %q, want %q", d, plan.Days[d], draft.ProposedDays[d])
			}
		}

		_, open, err := eng.GetCurrent(ctx)
		if err != nil {
			t.Fatalf("GetCurrent: %v", err)
		}
		if open != nil {
			t.Error("draft should be gone after Confirm")
		}

		// A new session starts clean: the first reroll only excludes the
		// day's current recipe, so the avoid set is still empty.
		fresh, _, err := eng.PreviewSwap(ctx, []int{3})
		if err != nil {
			t.Fatalf("PreviewSwap after Confirm: %v", err)
		}
		if len(fresh.AvoidIDs) != 0 {
			t.Errorf("avoid set %v survived Confirm, want empty", fresh.AvoidIDs)
		}
	})
}

func TestCancel(t *testing.T) {
	eng, _ := newTestEngine(t, 9, 10)
	ctx := context.Background()

	plan, err := eng.GeneratePlan(ctx)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if _, _, err := eng.PreviewSwap(ctx, []int{2}); err != nil {
		t.Fatalf("PreviewSwap: %v", err)
	}

	if err := eng.Cancel(ctx); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	stored, draft, err := eng.GetCurrent(ctx)
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if draft != nil {
		t.Error("draft should be gone after Cancel")
	}
	for d := 1; d <= 7; d++ {
		if stored.Days[d] != plan.Days[d] {
			t.Errorf("Cancel changed the committed plan on day %d", d)
		}
	}

	if err := eng.Cancel(ctx); !errors.Is(err, ErrNoDraftToCancel) {
		t.Errorf("second Cancel err = %v, want ErrNoDraftToCancel", err)
	}
}

func TestBuildShoppingList(t *testing.T) {
	t.Run("NoPlan", func(t *testing.T) {
		eng, _ := newTestEngine(t, 1, 5)
		_, err := eng.BuildShoppingList(context.Background())
		if !errors.Is(err, ErrNoPlanForShop) {
			t.Errorf("err = %v, want ErrNoPlanForShop", err)
		}
	})

	t.Run("CollectsIngredientsAndSkipsDummies", func(t *testing.T) {
		eng, _ := newTestEngine(t, 10, 2)
		ctx := context.Background()

		if _, err := eng.GeneratePlan(ctx); err != nil {
			t.Fatalf("GeneratePlan: %v", err)
		}

		list, err := eng.BuildShoppingList(ctx)
		if err != nil {
			t.Fatalf("BuildShoppingList: %v", err)
		}
		if list.WeekStart != "2026-02-16" {
			t.Errorf("WeekStart = %q, want 2026-02-16", list.WeekStart)
		}

		// Two recipes with two ingredients each; dummies contribute nothing.
		if len(list.Items) != 4 {
			t.Fatalf("got %d items, want 4: %+v", len(list.Items), list.Items)
		}
		for _, item := range list.Items {
			if item.RecipeID == "" || item.RecipeTitle == "" || item.Ingredient == "" {
				t.Errorf("incomplete shopping item: %+v", item)
			}
		}
	})
}
