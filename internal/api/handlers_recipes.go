package api

import (
	"net/http"
	"strings"

	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/settings"
)

const defaultRecipeListLimit = 50

func (s *Server) handleRecipeList(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", defaultRecipeListLimit)
	titleQuery := r.URL.Query().Get("q")

	recipes, err := s.recipes.List(r.Context(), limit, titleQuery)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

func (s *Server) handleRecipeCreate(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if !decodeJSON(w, r, &rec) {
		return
	}
	if strings.TrimSpace(rec.Title) == "" {
		writeError(w, http.StatusBadRequest, "title must be non-empty")
		return
	}
	rec.ID = ""
	rec.Tags = settings.CleanTags(rec.Tags)

	if err := s.recipes.Create(r.Context(), &rec); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleRecipeGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.recipes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRecipeUpdate(w http.ResponseWriter, r *http.Request) {
	var upd recipe.Update
	if !decodeJSON(w, r, &upd) {
		return
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		writeError(w, http.StatusBadRequest, "title must be non-empty")
		return
	}
	if upd.Tags != nil {
		cleaned := settings.CleanTags(*upd.Tags)
		upd.Tags = &cleaned
	}

	rec, err := s.recipes.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleRecipeArchive soft-deletes: the recipe drops out of the catalog
// but existing plans that reference it keep rendering.
func (s *Server) handleRecipeArchive(w http.ResponseWriter, r *http.Request) {
	existed, err := s.recipes.Archive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRecipeTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.recipes.ListActiveTags(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	draft, err := s.importer.Preview(r.Context(), req.URL)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleImportConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL       string        `json:"url"`
		Overrides recipe.Update `json:"overrides"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.importer.Confirm(r.Context(), req.URL, req.Overrides, "api")
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
