package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// app_state keys owned by this package.
const (
	keyPantry             = "settings_pantry"
	keyPreferences        = "settings_preferences"
	keyTelegram           = "settings_telegram"
	keyTelegramLastChatID = "telegram_last_chat_id"
)

// Repository persists settings and other small key/value state in the
// app_state table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// GetValue retrieves a raw app_state value, or "" if the key is unset.
func (r *Repository) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get app state %q: %w", key, err)
	}
	return value, nil
}

// GetRow retrieves a raw app_state value with its update timestamp.
// ok is false when the key is unset.
func (r *Repository) GetRow(ctx context.Context, key string) (value string, updatedAt time.Time, ok bool, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM app_state WHERE key = ?`, key).Scan(&value, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", time.Time{}, false, nil
		}
		return "", time.Time{}, false, fmt.Errorf("failed to get app state %q: %w", key, err)
	}
	return value, updatedAt, true, nil
}

// SetValue upserts a raw app_state value.
func (r *Repository) SetValue(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set app state %q: %w", key, err)
	}
	return nil
}

// GetPantry returns the configured pantry items, or the defaults when
// nothing has been saved yet.
func (r *Repository) GetPantry(ctx context.Context) ([]PantryItem, error) {
	raw, err := r.GetValue(ctx, keyPantry)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return append([]PantryItem(nil), DefaultPantryItems...), nil
	}

	var stored struct {
		Items []PantryItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pantry settings: %w", err)
	}

	items := normalizePantryItems(stored.Items)
	if len(items) == 0 {
		return append([]PantryItem(nil), DefaultPantryItems...), nil
	}
	return items, nil
}

// SetPantry validates and stores pantry items.
func (r *Repository) SetPantry(ctx context.Context, items []PantryItem) ([]PantryItem, error) {
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("pantry item name must be non-empty")
		}
	}
	cleaned := normalizePantryItems(items)

	data, err := json.Marshal(struct {
		Items []PantryItem `json:"items"`
	}{Items: cleaned})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pantry settings: %w", err)
	}
	if err := r.SetValue(ctx, keyPantry, string(data)); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// GetPreferences returns the stored preference tags.
func (r *Repository) GetPreferences(ctx context.Context) (Preferences, error) {
	raw, err := r.GetValue(ctx, keyPreferences)
	if err != nil {
		return Preferences{}, err
	}
	if raw == "" {
		return Preferences{Tags: []string{}}, nil
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	prefs.Tags = CleanTags(prefs.Tags)
	return prefs, nil
}

// SetPreferences cleans and stores preference tags.
func (r *Repository) SetPreferences(ctx context.Context, prefs Preferences) (Preferences, error) {
	prefs.Tags = CleanTags(prefs.Tags)
	data, err := json.Marshal(prefs)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := r.SetValue(ctx, keyPreferences, string(data)); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// GetTelegram returns the stored Telegram notification flags.
func (r *Repository) GetTelegram(ctx context.Context) (Telegram, error) {
	raw, err := r.GetValue(ctx, keyTelegram)
	if err != nil {
		return Telegram{}, err
	}
	if raw == "" {
		return Telegram{}, nil
	}

	var tg Telegram
	if err := json.Unmarshal([]byte(raw), &tg); err != nil {
		return Telegram{}, fmt.Errorf("failed to unmarshal telegram settings: %w", err)
	}
	return tg, nil
}

// SetTelegram stores the Telegram notification flags.
func (r *Repository) SetTelegram(ctx context.Context, tg Telegram) error {
	data, err := json.Marshal(tg)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram settings: %w", err)
	}
	return r.SetValue(ctx, keyTelegram, string(data))
}

// GetLastChatID returns the chat the bot last heard from, or 0.
func (r *Repository) GetLastChatID(ctx context.Context) (int64, error) {
	raw, err := r.GetValue(ctx, keyTelegramLastChatID)
	if err != nil || raw == "" {
		return 0, err
	}
	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, nil
	}
	return id, nil
}

// SetLastChatID records the chat the bot last heard from.
func (r *Repository) SetLastChatID(ctx context.Context, chatID int64) error {
	return r.SetValue(ctx, keyTelegramLastChatID, fmt.Sprintf("%d", chatID))
}

// CleanTags trims, drops empties and removes duplicates preserving order.
func CleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := []string{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizePantryItems(items []PantryItem) []PantryItem {
	out := []PantryItem{}
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		aliases := []string{}
		seen := make(map[string]struct{})
		for _, a := range item.Aliases {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			aliases = append(aliases, a)
		}
		out = append(out, PantryItem{Name: name, Uncertain: item.Uncertain, Aliases: aliases})
	}
	return out
}
