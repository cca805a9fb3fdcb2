package recipe

import "time"

// Recipe is a stored household recipe. Only active recipes take part in
// weekly planning and sampling.
type Recipe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SourceURL   string    `json:"source_url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Tags        []string  `json:"tags"`
	Ingredients []string  `json:"ingredients"`
	TimeMinutes int       `json:"time_minutes,omitempty"`
	Difficulty  int       `json:"difficulty,omitempty"` // 1..3
	IsActive    bool      `json:"is_active"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Update carries a partial recipe update; nil fields are left untouched.
type Update struct {
	Title       *string   `json:"title"`
	SourceURL   *string   `json:"source_url"`
	Notes       *string   `json:"notes"`
	Tags        *[]string `json:"tags"`
	Ingredients *[]string `json:"ingredients"`
	TimeMinutes *int      `json:"time_minutes"`
	Difficulty  *int      `json:"difficulty"`
	IsActive    *bool     `json:"is_active"`
}
