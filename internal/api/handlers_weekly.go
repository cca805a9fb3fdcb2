package api

import (
	"errors"
	"log"
	"net/http"

	"family-meal-planner/internal/shopping"
	"family-meal-planner/internal/weekly"
)

// notifyRequested reports whether the caller asked to push the result
// to the Telegram chat (?notify=1).
func notifyRequested(r *http.Request) bool {
	v := r.URL.Query().Get("notify")
	return v == "1" || v == "true"
}

type weeklyResponse struct {
	OK        bool                 `json:"ok"`
	WeekStart string               `json:"week_start"`
	HasPlan   bool                 `json:"has_plan"`
	HasDraft  bool                 `json:"has_draft"`
	Plan      *weekly.PlanPayload  `json:"plan,omitempty"`
	Draft     *weekly.DraftPayload `json:"draft,omitempty"`
	Message   string               `json:"message,omitempty"`
}

func (r *weeklyResponse) setFlags() {
	r.HasPlan = r.Plan != nil
	r.HasDraft = r.Draft != nil
}

// handleWeeklyCurrent returns the committed plan and open draft without
// side effects.
func (s *Server) handleWeeklyCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plan, draft, err := s.engine.GetCurrent(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := weeklyResponse{OK: true, WeekStart: s.engine.CurrentWeek()}
	if plan != nil {
		payload, err := weekly.BuildPlanPayload(ctx, s.recipes, plan.Days)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		resp.Plan = payload
	}
	if draft != nil {
		payload, err := weekly.BuildDraftPayload(ctx, s.recipes, draft, nil)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		resp.Draft = payload
	}
	if plan == nil && draft == nil {
		resp.Message = "No plan for this week yet. Generate one first."
	}
	resp.setFlags()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plan, err := s.engine.GeneratePlan(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	payload, err := weekly.BuildPlanPayload(ctx, s.recipes, plan.Days)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if notifyRequested(r) && s.notify != nil {
		if err := s.notify.NotifyPlan(ctx, payload.Message); err != nil {
			log.Printf("telegram plan notification failed: %v", err)
		}
	}

	resp := weeklyResponse{
		OK:        true,
		WeekStart: plan.WeekStart,
		Plan:      payload,
	}
	resp.setFlags()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeeklySwap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Days []int `json:"days"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	draft, warnings, err := s.engine.PreviewSwap(ctx, req.Days)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	payload, err := weekly.BuildDraftPayload(ctx, s.recipes, draft, warnings)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := weeklyResponse{
		OK:        true,
		WeekStart: draft.WeekStart,
		HasPlan:   true, // swapping requires a committed plan
		Draft:     payload,
	}
	resp.HasDraft = true
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeeklyConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plan, err := s.engine.Confirm(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	payload, err := weekly.BuildPlanPayload(ctx, s.recipes, plan.Days)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := weeklyResponse{
		OK:        true,
		WeekStart: plan.WeekStart,
		Plan:      payload,
		Message:   "Plan confirmed.",
	}
	resp.setFlags()
	writeJSON(w, http.StatusOK, resp)
}

// handleWeeklyCancel is idempotent: cancelling with no open draft still
// reports success.
func (s *Server) handleWeeklyCancel(w http.ResponseWriter, r *http.Request) {
	err := s.engine.Cancel(r.Context())
	if err != nil && !errors.Is(err, weekly.ErrNoDraftToCancel) {
		writeEngineError(w, err)
		return
	}

	msg := "Preview cancelled."
	if errors.Is(err, weekly.ErrNoDraftToCancel) {
		msg = "Nothing to cancel."
	}

	plan, _, err := s.engine.GetCurrent(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weeklyResponse{
		OK:        true,
		WeekStart: s.engine.CurrentWeek(),
		HasPlan:   plan != nil,
		Message:   msg,
	})
}

func (s *Server) handleWeeklyShop(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = shopping.ModeConsolidated
	}

	payload, err := s.shop.Build(r.Context(), mode)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if notifyRequested(r) && s.notify != nil {
		if err := s.notify.NotifyShop(r.Context(), payload.Message); err != nil {
			log.Printf("telegram shop notification failed: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, payload)
}
