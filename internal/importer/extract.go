package importer

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extracted holds what could be read from a recipe page before any AI
// cleanup runs.
type Extracted struct {
	Title        string
	Ingredients  []string
	TotalMinutes int
	Keywords     []string
	PageText     string
}

// extractFromHTML parses the page and prefers schema.org JSON-LD Recipe
// data, falling back to the visible text for the AI draft.
func extractFromHTML(body []byte) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := &Extracted{}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if rec := findRecipeNode(s.Text()); rec != nil {
			fillFromJSONLD(out, rec)
			return false
		}
		return true
	})

	if out.Title == "" {
		out.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	out.PageText = pageText(doc)
	return out, nil
}

// findRecipeNode digs a schema.org Recipe object out of a JSON-LD
// payload, which may be a single object, an array, or an @graph.
func findRecipeNode(raw string) map[string]any {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	return searchRecipe(data)
}

func searchRecipe(node any) map[string]any {
	switch v := node.(type) {
	case map[string]any:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return searchRecipe(graph)
		}
	case []any:
		for _, item := range v {
			if rec := searchRecipe(item); rec != nil {
				return rec
			}
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func fillFromJSONLD(out *Extracted, rec map[string]any) {
	if name, ok := rec["name"].(string); ok {
		out.Title = strings.TrimSpace(name)
	}
	if raw, ok := rec["recipeIngredient"].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out.Ingredients = append(out.Ingredients, s)
				}
			}
		}
	}
	for _, key := range []string{"totalTime", "cookTime", "prepTime"} {
		if s, ok := rec[key].(string); ok {
			if mins := parseISODuration(s); mins > 0 {
				out.TotalMinutes = mins
				break
			}
		}
	}
	if kw, ok := rec["keywords"].(string); ok {
		for _, part := range strings.Split(kw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out.Keywords = append(out.Keywords, part)
			}
		}
	}
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?`)

// parseISODuration converts an ISO-8601 duration like "PT1H30M" to
// minutes, returning 0 when it cannot be parsed.
func parseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	return days*24*60 + hours*60 + minutes
}

// pageText returns the page's visible text, whitespace-collapsed and
// capped so prompts stay small.
func pageText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()
	text := whitespaceRe.ReplaceAllString(doc.Find("body").Text(), " ")
	text = strings.TrimSpace(text)
	const maxChars = 12000
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}

var whitespaceRe = regexp.MustCompile(`\s+`)
