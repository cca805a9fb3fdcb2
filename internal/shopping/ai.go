package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/metrics"
)

// FallbackNote is attached to the payload when AI consolidation could
// not run and the raw aggregated list is returned instead.
const FallbackNote = "AI consolidation unavailable, showing raw list."

const consolidatePrompt = `You are a shopping list assistant. Consolidate the following ingredient lines into a clean shopping list.

Rules:
- Merge duplicate ingredients and sum their quantities where possible.
- Keep quantities and units when present.
- Do NOT invent items that are not in the input.
- Do NOT drop items from the input.
- Answer with JSON only, no prose: {"to_buy": ["item 1", "item 2", ...]}

Ingredient lines:
%s`

// Consolidator rewrites the raw to-buy lines into a merged list via a
// text model. All failures degrade to the raw list plus a note.
type Consolidator struct {
	gen     llm.TextGenerator
	metrics *metrics.Store
}

// NewConsolidator creates a Consolidator. gen may be nil when no model
// is configured; Consolidate then always falls back.
func NewConsolidator(gen llm.TextGenerator, store *metrics.Store) *Consolidator {
	return &Consolidator{gen: gen, metrics: store}
}

// Consolidate returns the merged lines and an empty note on success, or
// nil lines and FallbackNote when the model is missing or misbehaves.
// An empty input needs no consolidation and carries no note.
func (c *Consolidator) Consolidate(ctx context.Context, buyLines []string) ([]string, string) {
	if len(buyLines) == 0 {
		return nil, ""
	}
	if c == nil || c.gen == nil {
		return nil, FallbackNote
	}

	prompt := fmt.Sprintf(consolidatePrompt, strings.Join(buyLines, "\n"))

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("shop consolidation failed: %v", err)
		return nil, FallbackNote
	}
	if c.metrics != nil {
		if err := c.metrics.RecordUsage(ctx, "shop_consolidator", resp.Usage, time.Since(start)); err != nil {
			log.Printf("failed to record shop consolidation metric: %v", err)
		}
	}

	var parsed struct {
		ToBuy []string `json:"to_buy"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		log.Printf("shop consolidation returned invalid JSON: %v", err)
		return nil, FallbackNote
	}

	var lines []string
	for _, l := range parsed.ToBuy {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, FallbackNote
	}
	return lines, ""
}
