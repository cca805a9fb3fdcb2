package telegram

import (
	"testing"
)

func TestParseSwapDays(t *testing.T) {
	t.Run("Numbers", func(t *testing.T) {
		days, err := ParseSwapDays([]string{"2", "5", "7"})
		if err != nil {
			t.Fatalf("ParseSwapDays: %v", err)
		}
		if len(days) != 3 || days[0] != 2 || days[1] != 5 || days[2] != 7 {
			t.Errorf("days = %v, want [2 5 7]", days)
		}
	})

	t.Run("DayNames", func(t *testing.T) {
		days, err := ParseSwapDays([]string{"tue", "FRI", "Sunday"})
		if err != nil {
			t.Fatalf("ParseSwapDays: %v", err)
		}
		if len(days) != 3 || days[0] != 2 || days[1] != 5 || days[2] != 7 {
			t.Errorf("days = %v, want [2 5 7]", days)
		}
	})

	t.Run("MixedAndCommaSeparated", func(t *testing.T) {
		days, err := ParseSwapDays([]string{"mon,3", "sat"})
		if err != nil {
			t.Fatalf("ParseSwapDays: %v", err)
		}
		if len(days) != 3 || days[0] != 1 || days[1] != 3 || days[2] != 6 {
			t.Errorf("days = %v, want [1 3 6]", days)
		}
	})

	t.Run("UnknownToken", func(t *testing.T) {
		if _, err := ParseSwapDays([]string{"someday"}); err == nil {
			t.Error("expected error for unknown day token")
		}
	})

	t.Run("OutOfRangePassesThrough", func(t *testing.T) {
		// Range validation belongs to the engine; the parser only converts.
		days, err := ParseSwapDays([]string{"9"})
		if err != nil {
			t.Fatalf("ParseSwapDays: %v", err)
		}
		if len(days) != 1 || days[0] != 9 {
			t.Errorf("days = %v, want [9]", days)
		}
	})
}

func TestParseAddCommand(t *testing.T) {
	t.Run("FullForm", func(t *testing.T) {
		rec, err := ParseAddCommand("Fish Tacos | cod, tortillas , lime | mexican, quick")
		if err != nil {
			t.Fatalf("ParseAddCommand: %v", err)
		}
		if rec.Title != "Fish Tacos" {
			t.Errorf("Title = %q", rec.Title)
		}
		if len(rec.Ingredients) != 3 || rec.Ingredients[1] != "tortillas" {
			t.Errorf("Ingredients = %v", rec.Ingredients)
		}
		if len(rec.Tags) != 2 || rec.Tags[0] != "mexican" {
			t.Errorf("Tags = %v", rec.Tags)
		}
	})

	t.Run("TitleOnly", func(t *testing.T) {
		rec, err := ParseAddCommand("Pancakes")
		if err != nil {
			t.Fatalf("ParseAddCommand: %v", err)
		}
		if rec.Title != "Pancakes" || len(rec.Ingredients) != 0 || len(rec.Tags) != 0 {
			t.Errorf("rec = %+v, want bare title", rec)
		}
	})

	t.Run("EmptyTitle", func(t *testing.T) {
		if _, err := ParseAddCommand("  | stuff"); err == nil {
			t.Error("expected usage error for empty title")
		}
	})
}

func TestSplitCommand(t *testing.T) {
	cases := map[string]struct {
		cmd  string
		args int
	}{
		"swap 2 5":          {"swap", 2},
		"/swap 2":           {"swap", 1},
		"/plan@MealBot":     {"plan", 0},
		"  CONFIRM  ":       {"confirm", 0},
		"":                  {"", 0},
		"list fish tacos":   {"list", 2},
	}
	for in, want := range cases {
		cmd, args := splitCommand(in)
		if cmd != want.cmd || len(args) != want.args {
			t.Errorf("splitCommand(%q) = (%q, %d args), want (%q, %d)", in, cmd, len(args), want.cmd, want.args)
		}
	}
}
