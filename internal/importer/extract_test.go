package importer

import (
	"strings"
	"testing"
)

func TestParseISODuration(t *testing.T) {
	cases := map[string]int{
		"PT1H30M": 90,
		"PT45M":   45,
		"PT2H":    120,
		"P1DT2H":  1560,
		"pt15m":   15,
		"":        0,
		"garbage": 0,
	}
	for in, want := range cases {
		if got := parseISODuration(in); got != want {
			t.Errorf("parseISODuration(%q) = %d, want %d", in, got, want)
		}
	}
}

const recipePage = `<!DOCTYPE html>
<html><head>
<title>Fallback Title</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "WebSite", "name": "Some Food Blog"},
    {
      "@type": ["Recipe", "CreativeWork"],
      "name": "Spaghetti Carbonara",
      "recipeIngredient": ["400g spaghetti", "200g pancetta", " 4 eggs ", ""],
      "totalTime": "PT35M",
      "keywords": "italian, pasta, dinner, comfort food"
    }
  ]
}
</script>
</head>
<body><h1>Spaghetti Carbonara</h1><p>A classic Roman dish.</p>
<script>console.log("noise")</script>
</body></html>`

func TestExtractFromHTML(t *testing.T) {
	ex, err := extractFromHTML([]byte(recipePage))
	if err != nil {
		t.Fatalf("extractFromHTML: %v", err)
	}

	if ex.Title != "Spaghetti Carbonara" {
		t.Errorf("Title = %q", ex.Title)
	}
	if len(ex.Ingredients) != 3 || ex.Ingredients[2] != "4 eggs" {
		t.Errorf("Ingredients = %v, want 3 trimmed entries", ex.Ingredients)
	}
	if ex.TotalMinutes != 35 {
		t.Errorf("TotalMinutes = %d, want 35", ex.TotalMinutes)
	}
	if len(ex.Keywords) != 4 || ex.Keywords[0] != "italian" {
		t.Errorf("Keywords = %v", ex.Keywords)
	}
	if !strings.Contains(ex.PageText, "classic Roman dish") {
		t.Error("PageText missing body text")
	}
	if strings.Contains(ex.PageText, "console.log") {
		t.Error("PageText must not contain script content")
	}
}

func TestExtractFromHTMLWithoutJSONLD(t *testing.T) {
	ex, err := extractFromHTML([]byte(`<html><head><title> Plain Page </title></head><body>Hello</body></html>`))
	if err != nil {
		t.Fatalf("extractFromHTML: %v", err)
	}
	if ex.Title != "Plain Page" {
		t.Errorf("Title = %q, want the <title> fallback", ex.Title)
	}
	if len(ex.Ingredients) != 0 {
		t.Errorf("Ingredients = %v, want none", ex.Ingredients)
	}
}
