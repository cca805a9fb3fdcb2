package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/settings"
)

// dayAliases maps day-name shorthands to plan day numbers (1 = Monday).
var dayAliases = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

// ParseSwapDays converts "2 5 7" or "tue fri sun" (also comma-separated)
// into day numbers. Validation beyond parsing is left to the engine.
func ParseSwapDays(args []string) ([]int, error) {
	var days []int
	for _, arg := range args {
		for _, tok := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			if n, err := strconv.Atoi(tok); err == nil {
				days = append(days, n)
				continue
			}
			if n, ok := dayAliases[tok]; ok {
				days = append(days, n)
				continue
			}
			return nil, fmt.Errorf("unknown day %q (use 1-7 or mon..sun)", tok)
		}
	}
	return days, nil
}

// ParseAddCommand parses the pipe-separated add format:
//
//	add Title | ingredient, ingredient | tag, tag
//
// Only the title is required.
func ParseAddCommand(args string) (*recipe.Recipe, error) {
	parts := strings.Split(args, "|")
	title := strings.TrimSpace(parts[0])
	if title == "" {
		return nil, fmt.Errorf("usage: add Title | ingredients | tags")
	}

	rec := &recipe.Recipe{Title: title}
	if len(parts) > 1 {
		rec.Ingredients = splitList(parts[1])
	}
	if len(parts) > 2 {
		rec.Tags = settings.CleanTags(splitList(parts[2]))
	}
	return rec, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
