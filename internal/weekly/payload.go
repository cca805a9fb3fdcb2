package weekly

import (
	"context"
	"fmt"
	"strings"
)

// Day assignment kinds as rendered to clients.
const (
	KindRecipe = "recipe"
	KindDummy  = "dummy"
	KindEmpty  = "empty"
)

// DayEntry is one rendered day of a plan or draft.
type DayEntry struct {
	Day      int    `json:"day"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	RecipeID string `json:"recipe_id,omitempty"`
	Title    string `json:"title"`
}

// PlanPayload is the channel-neutral rendering of a committed plan. The
// REST layer serializes it as JSON; the bot sends Message as chat text.
type PlanPayload struct {
	Days    []DayEntry `json:"days"`
	RawDays Days       `json:"raw_days"`
	Message string     `json:"message"`
}

// DraftPayload is the channel-neutral rendering of an open draft.
type DraftPayload struct {
	RequestedSwaps  []int      `json:"requested_swaps"`
	ProposedDays    []DayEntry `json:"proposed_days"`
	RawProposedDays Days       `json:"raw_proposed_days"`
	Warnings        []string   `json:"warnings,omitempty"`
	Message         string     `json:"message"`
}

// BuildPlanPayload renders a plan's days with titles resolved from the
// catalog.
func BuildPlanPayload(ctx context.Context, c Catalog, days Days) (*PlanPayload, error) {
	entries, err := buildDayEntries(ctx, c, days)
	if err != nil {
		return nil, err
	}
	return &PlanPayload{
		Days:    entries,
		RawDays: days,
		Message: formatDayLines("🗓️ Weekly plan (Mon–Sun):", entries) +
			"\n\nCommands: swap 2 5 7 | swap tue fri sun | confirm | cancel | list",
	}, nil
}

// BuildDraftPayload renders a draft preview, including any sampling
// warnings from the reroll that produced it.
func BuildDraftPayload(ctx context.Context, c Catalog, d *Draft, warnings []string) (*DraftPayload, error) {
	entries, err := buildDayEntries(ctx, c, d.ProposedDays)
	if err != nil {
		return nil, err
	}

	msg := "🔁 Preview (NOT saved yet). Use `confirm` or `cancel`.\n\n" +
		formatDayLines("🗓️ Weekly plan (Mon–Sun):", entries)
	for _, w := range warnings {
		msg += "\n⚠️ " + w
	}

	return &DraftPayload{
		RequestedSwaps:  d.RequestedSwaps,
		ProposedDays:    entries,
		RawProposedDays: d.ProposedDays,
		Warnings:        warnings,
		Message:         msg,
	}, nil
}

func buildDayEntries(ctx context.Context, c Catalog, days Days) ([]DayEntry, error) {
	entries := make([]DayEntry, 0, 7)
	for d := 1; d <= 7; d++ {
		v := days[d]
		entry := DayEntry{Day: d, Label: DayLabels[d]}
		switch {
		case v == "":
			entry.Kind = KindEmpty
			entry.Title = "—"
		case IsDummy(v):
			entry.Kind = KindDummy
			entry.Title = v
		default:
			entry.Kind = KindRecipe
			entry.RecipeID = v
			title, err := resolveTitle(ctx, c, v)
			if err != nil {
				return nil, err
			}
			entry.Title = title
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// resolveTitle falls back to the raw id when the recipe is gone, so a
// stale plan still renders instead of erroring out.
func resolveTitle(ctx context.Context, c Catalog, id string) (string, error) {
	rec, err := c.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return id, nil
	}
	return rec.Title, nil
}

func formatDayLines(header string, entries []DayEntry) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("\n%s: %s", e.Label, e.Title))
	}
	return sb.String()
}
