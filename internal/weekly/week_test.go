package weekly

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	cases := map[string]struct {
		in   time.Time
		want string
	}{
		"Monday":    {time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), "2026-02-16"},
		"Wednesday": {time.Date(2026, 2, 18, 23, 59, 0, 0, time.UTC), "2026-02-16"},
		"Sunday":    {time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC), "2026-02-16"},
		"NextWeek":  {time.Date(2026, 2, 23, 0, 0, 1, 0, time.UTC), "2026-02-23"},
		"YearSplit": {time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), "2025-12-29"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := WeekKey(tc.in); got != tc.want {
				t.Errorf("WeekKey(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDaysHelpers(t *testing.T) {
	if !IsDummy(DummyPrefix + "New recipe 1") {
		t.Error("dummy marker not detected")
	}
	if IsDummy("abc123") {
		t.Error("recipe id misdetected as dummy")
	}
	if !IsRecipeID("abc123") {
		t.Error("recipe id not detected")
	}
	if IsRecipeID("") || IsRecipeID(DummyPrefix+"New recipe 2") {
		t.Error("non-recipe value detected as recipe id")
	}

	days := Days{1: "a", 2: "b"}
	cp := days.Copy()
	cp[1] = "changed"
	if days[1] != "a" {
		t.Error("Copy did not detach from the original map")
	}
}
