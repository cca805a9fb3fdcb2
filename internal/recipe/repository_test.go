package recipe

import (
	"context"
	"path/filepath"
	"testing"

	"family-meal-planner/internal/database"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepositoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := &Recipe{
		Title:       "Fish Tacos",
		SourceURL:   "https://example.com/fish-tacos",
		Tags:        []string{"mexican", "quick"},
		Ingredients: []string{"cod", "tortillas"},
		TimeMinutes: 25,
		Difficulty:  1,
	}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Create must assign an id")
	}
	if !rec.IsActive {
		t.Error("new recipes must be active")
	}

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil || got.Title != "Fish Tacos" || len(got.Ingredients) != 2 {
			t.Errorf("got = %+v", got)
		}

		missing, err := repo.Get(ctx, "nope")
		if err != nil || missing != nil {
			t.Errorf("Get(missing) = (%+v, %v), want (nil, nil)", missing, err)
		}
	})

	t.Run("GetBySourceURL", func(t *testing.T) {
		got, err := repo.GetBySourceURL(ctx, "https://example.com/fish-tacos")
		if err != nil || got == nil || got.ID != rec.ID {
			t.Errorf("GetBySourceURL = (%+v, %v)", got, err)
		}
		missing, err := repo.GetBySourceURL(ctx, "https://example.com/other")
		if err != nil || missing != nil {
			t.Errorf("GetBySourceURL(missing) = (%+v, %v), want (nil, nil)", missing, err)
		}
	})

	t.Run("ListWithTitleFilter", func(t *testing.T) {
		if err := repo.Create(ctx, &Recipe{Title: "Pancakes"}); err != nil {
			t.Fatalf("Create: %v", err)
		}

		all, err := repo.List(ctx, 10, "")
		if err != nil || len(all) != 2 {
			t.Errorf("List = (%d recipes, %v), want 2", len(all), err)
		}

		filtered, err := repo.List(ctx, 10, "fish")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(filtered) != 1 || filtered[0].Title != "Fish Tacos" {
			t.Errorf("filtered = %+v, want case-insensitive title match", filtered)
		}
	})

	t.Run("Update", func(t *testing.T) {
		newTitle := "Baja Fish Tacos"
		newTime := 30
		got, err := repo.Update(ctx, rec.ID, Update{Title: &newTitle, TimeMinutes: &newTime})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.Title != "Baja Fish Tacos" || got.TimeMinutes != 30 {
			t.Errorf("got = %+v", got)
		}
		// Untouched fields survive the partial update.
		if len(got.Tags) != 2 || got.Difficulty != 1 {
			t.Errorf("untouched fields changed: %+v", got)
		}

		missing, err := repo.Update(ctx, "nope", Update{Title: &newTitle})
		if err != nil || missing != nil {
			t.Errorf("Update(missing) = (%+v, %v), want (nil, nil)", missing, err)
		}
	})

	t.Run("Tags", func(t *testing.T) {
		tags, err := repo.ListActiveTags(ctx)
		if err != nil {
			t.Fatalf("ListActiveTags: %v", err)
		}
		if len(tags) != 2 {
			t.Errorf("tags = %v, want [mexican quick]", tags)
		}
	})

	t.Run("Archive", func(t *testing.T) {
		existed, err := repo.Archive(ctx, rec.ID)
		if err != nil || !existed {
			t.Fatalf("Archive = (%v, %v)", existed, err)
		}

		active, err := repo.ListActive(ctx)
		if err != nil {
			t.Fatalf("ListActive: %v", err)
		}
		for _, r := range active {
			if r.ID == rec.ID {
				t.Error("archived recipe still listed as active")
			}
		}

		// Archived recipes stay readable so old plans keep rendering.
		got, err := repo.Get(ctx, rec.ID)
		if err != nil || got == nil || got.IsActive {
			t.Errorf("Get(archived) = (%+v, %v)", got, err)
		}

		existed, err = repo.Archive(ctx, "nope")
		if err != nil || existed {
			t.Errorf("Archive(missing) = (%v, %v), want (false, nil)", existed, err)
		}
	})
}
