package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"family-meal-planner/internal/importer"
	"family-meal-planner/internal/weekly"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{OK: false, Error: msg})
}

// writeEngineError translates domain errors into HTTP responses.
// Validation failures are 400, state conflicts 409; everything else is
// an internal error with the detail kept out of the response.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, weekly.ErrInvalidDaySelection):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, weekly.ErrNoRecipesAvailable),
		errors.Is(err, weekly.ErrNoPlanToSwap),
		errors.Is(err, weekly.ErrNoDraftToConfirm),
		errors.Is(err, weekly.ErrNoPlanForShop),
		errors.Is(err, weekly.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, importer.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, importer.ErrDuplicateSource),
		errors.Is(err, importer.ErrNoRecipeFound):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
