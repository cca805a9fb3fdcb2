package api

import (
	"net/http"

	"family-meal-planner/internal/settings"
)

// handleSettingsGet returns every settings group in one response.
func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pantry, err := s.settings.GetPantry(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	prefs, err := s.settings.GetPreferences(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	tg, err := s.settings.GetTelegram(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	chatID, err := s.settings.GetLastChatID(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pantry":                map[string]any{"items": pantry},
		"preferences":           prefs,
		"telegram":              tg,
		"telegram_last_chat_id": chatID,
	})
}

func (s *Server) handlePantryGet(w http.ResponseWriter, r *http.Request) {
	items, err := s.settings.GetPantry(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handlePantryPut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []settings.PantryItem `json:"items"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	saved, err := s.settings.SetPantry(r.Context(), req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": saved})
}

func (s *Server) handlePreferencesGet(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.settings.GetPreferences(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePreferencesPut(w http.ResponseWriter, r *http.Request) {
	var prefs settings.Preferences
	if !decodeJSON(w, r, &prefs) {
		return
	}

	saved, err := s.settings.SetPreferences(r.Context(), prefs)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleTelegramGet(w http.ResponseWriter, r *http.Request) {
	tg, err := s.settings.GetTelegram(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tg)
}

func (s *Server) handleTelegramPut(w http.ResponseWriter, r *http.Request) {
	var tg settings.Telegram
	if !decodeJSON(w, r, &tg) {
		return
	}

	if err := s.settings.SetTelegram(r.Context(), tg); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tg)
}
