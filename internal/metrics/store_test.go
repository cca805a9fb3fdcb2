package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"family-meal-planner/internal/database"
	"family-meal-planner/internal/llm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestRecordAndDailyUsage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	usage := llm.TokenUsage{Model: "gemini-1.5-flash", PromptTokens: 120, CompletionTokens: 40}
	if err := store.RecordUsage(ctx, "shop_consolidator", usage, 350*time.Millisecond); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if err := store.RecordUsage(ctx, "recipe_importer", usage, 500*time.Millisecond); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	daily, err := store.GetDailyUsage(ctx, 7)
	if err != nil {
		t.Fatalf("GetDailyUsage: %v", err)
	}
	if len(daily) != 1 {
		t.Fatalf("got %d daily buckets, want 1", len(daily))
	}
	if daily[0].TotalExecution != 2 || daily[0].TotalPrompt != 240 || daily[0].TotalCompletion != 80 {
		t.Errorf("daily[0] = %+v", daily[0])
	}
}

func TestCleanup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := ExecutionMetric{AgentName: "shop_consolidator", Model: "m", Timestamp: time.Now().UTC().AddDate(0, 0, -40)}
	recent := ExecutionMetric{AgentName: "shop_consolidator", Model: "m"}
	if err := store.Record(ctx, old); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, recent); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := store.Cleanup(ctx, 30); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	daily, err := store.GetDailyUsage(ctx, 60)
	if err != nil {
		t.Fatalf("GetDailyUsage: %v", err)
	}
	total := 0
	for _, d := range daily {
		total += d.TotalExecution
	}
	if total != 1 {
		t.Errorf("total executions after cleanup = %d, want 1", total)
	}
}
