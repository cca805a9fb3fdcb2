package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/settings"
)

const (
	previewCachePrefix = "import_preview_"
	previewCacheTTL    = 20 * time.Minute
	maxImportTags      = 3
)

// Draft is a recipe proposal extracted from a web page. It is cached
// between preview and confirm so the page is fetched once.
type Draft struct {
	SourceURL   string   `json:"source_url"`
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Tags        []string `json:"tags"`
	TimeMinutes int      `json:"time_minutes"`
	Difficulty  int      `json:"difficulty"`
	Notes       string   `json:"notes"`
	AIDrafted   bool     `json:"ai_drafted"`
}

// Service imports recipes from public web pages.
type Service struct {
	recipes *recipe.Repository
	state   *settings.Repository
	gen     llm.TextGenerator
	metrics *metrics.Store
	client  *http.Client
}

func NewService(recipes *recipe.Repository, state *settings.Repository, gen llm.TextGenerator, store *metrics.Store) *Service {
	return &Service{
		recipes: recipes,
		state:   state,
		gen:     gen,
		metrics: store,
		client:  newFetchClient(),
	}
}

// Preview fetches and extracts a recipe draft from rawURL. Results are
// cached for previewCacheTTL, keyed by the URL's hash.
func (s *Service) Preview(ctx context.Context, rawURL string) (*Draft, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	sourceURL := u.String()

	existing, err := s.recipes.GetBySourceURL(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSource, existing.Title)
	}

	if cached, err := s.cachedDraft(ctx, sourceURL); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	body, err := fetchPage(ctx, s.client, sourceURL)
	if err != nil {
		return nil, err
	}
	extracted, err := extractFromHTML(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	draft := s.buildDraft(ctx, sourceURL, extracted)
	if draft.Title == "" && len(draft.Ingredients) == 0 {
		return nil, ErrNoRecipeFound
	}

	if err := s.cacheDraft(ctx, sourceURL, draft); err != nil {
		log.Printf("failed to cache import preview: %v", err)
	}
	return draft, nil
}

// Confirm creates a recipe from the previewed draft. The overrides
// replace draft fields when set so users can fix the extraction.
func (s *Service) Confirm(ctx context.Context, rawURL string, overrides recipe.Update, createdBy string) (*recipe.Recipe, error) {
	draft, err := s.Preview(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	rec := &recipe.Recipe{
		Title:       draft.Title,
		SourceURL:   draft.SourceURL,
		Notes:       draft.Notes,
		Tags:        draft.Tags,
		Ingredients: draft.Ingredients,
		TimeMinutes: draft.TimeMinutes,
		Difficulty:  draft.Difficulty,
		CreatedBy:   createdBy,
	}
	applyOverrides(rec, overrides)

	if strings.TrimSpace(rec.Title) == "" {
		return nil, fmt.Errorf("imported recipe needs a title")
	}
	if err := s.recipes.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func applyOverrides(rec *recipe.Recipe, upd recipe.Update) {
	if upd.Title != nil {
		rec.Title = *upd.Title
	}
	if upd.Notes != nil {
		rec.Notes = *upd.Notes
	}
	if upd.Tags != nil {
		rec.Tags = *upd.Tags
	}
	if upd.Ingredients != nil {
		rec.Ingredients = *upd.Ingredients
	}
	if upd.TimeMinutes != nil {
		rec.TimeMinutes = *upd.TimeMinutes
	}
	if upd.Difficulty != nil {
		rec.Difficulty = *upd.Difficulty
	}
}

func (s *Service) cachedDraft(ctx context.Context, sourceURL string) (*Draft, error) {
	raw, updatedAt, ok, err := s.state.GetRow(ctx, cacheKey(sourceURL))
	if err != nil {
		return nil, err
	}
	if !ok || time.Since(updatedAt) > previewCacheTTL {
		return nil, nil
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, nil
	}
	return &draft, nil
}

func (s *Service) cacheDraft(ctx context.Context, sourceURL string, draft *Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.state.SetValue(ctx, cacheKey(sourceURL), string(data))
}

func cacheKey(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return previewCachePrefix + hex.EncodeToString(sum[:])
}

const draftPrompt = `You are a recipe importer. From the page data below, produce a recipe draft.

Rules:
- Use only information present in the page data.
- "ingredients" is a flat list of strings as written on the page.
- "tags" is at most 3 short lowercase tags (cuisine, meal type, main ingredient).
- "time_minutes" is the total time in minutes, 0 if unknown.
- "difficulty" is 1 (easy), 2 (medium) or 3 (hard), based on step count and technique.
- Answer with JSON only, no prose:
  {"title": "...", "ingredients": ["..."], "tags": ["..."], "time_minutes": 0, "difficulty": 1, "notes": "..."}

Structured data:
Title: %s
Ingredients: %s
Total minutes: %d
Keywords: %s

Page text:
%s`

// buildDraft asks the model to clean up the extraction; without a model
// or on any failure the raw structured data is used as-is.
func (s *Service) buildDraft(ctx context.Context, sourceURL string, ex *Extracted) *Draft {
	draft := &Draft{
		SourceURL:   sourceURL,
		Title:       ex.Title,
		Ingredients: ex.Ingredients,
		Tags:        trimTags(ex.Keywords),
		TimeMinutes: ex.TotalMinutes,
		Difficulty:  1,
	}

	if s.gen == nil {
		return draft
	}

	prompt := fmt.Sprintf(draftPrompt,
		ex.Title, strings.Join(ex.Ingredients, "; "), ex.TotalMinutes,
		strings.Join(ex.Keywords, ", "), ex.PageText)

	start := time.Now()
	resp, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("import draft generation failed: %v", err)
		return draft
	}
	if s.metrics != nil {
		if err := s.metrics.RecordUsage(ctx, "recipe_importer", resp.Usage, time.Since(start)); err != nil {
			log.Printf("failed to record import metric: %v", err)
		}
	}

	var parsed Draft
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		log.Printf("import draft returned invalid JSON: %v", err)
		return draft
	}

	parsed.SourceURL = sourceURL
	parsed.AIDrafted = true
	parsed.Tags = trimTags(parsed.Tags)
	if parsed.Difficulty < 1 || parsed.Difficulty > 3 {
		parsed.Difficulty = 1
	}
	if parsed.Title == "" {
		parsed.Title = ex.Title
	}
	if len(parsed.Ingredients) == 0 {
		parsed.Ingredients = ex.Ingredients
	}
	if parsed.TimeMinutes <= 0 {
		parsed.TimeMinutes = ex.TotalMinutes
	}
	return &parsed
}

func trimTags(tags []string) []string {
	cleaned := settings.CleanTags(tags)
	if len(cleaned) > maxImportTags {
		cleaned = cleaned[:maxImportTags]
	}
	return cleaned
}
