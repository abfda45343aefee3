package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rdouglass/larder/internal/model"
	"github.com/rdouglass/larder/internal/store"
	"github.com/rdouglass/larder/internal/websocket"
	"github.com/rdouglass/larder/internal/week"
)

type PlannerHandler struct {
	plannerStore *store.PlannerStore
	recipeStore  *store.RecipeStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewPlannerHandler(ps *store.PlannerStore, rs *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *PlannerHandler {
	return &PlannerHandler{plannerStore: ps, recipeStore: rs, hub: hub, logger: logger}
}

func (h *PlannerHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type plannerDay struct {
	Date     string        `json:"date"`
	RecipeID string        `json:"recipe_id,omitempty"`
	Recipe   *model.Recipe `json:"recipe,omitempty"`
}

type plannerWeekResponse struct {
	WeekID string       `json:"week_id"`
	Days   []plannerDay `json:"days"`
}

// GetWeek returns all seven days of the requested week, with the assigned
// recipe resolved for each day that has one. Assignments pointing at recipes
// that no longer exist keep their recipe_id but carry no recipe body.
func (h *PlannerHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")
	monday, err := week.Parse(weekID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week_id"})
		return
	}

	entries, err := h.plannerStore.WeekEntries(weekID)
	if err != nil {
		h.logger.Error("failed to load week entries", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load week"})
		return
	}

	byDate := make(map[string]model.PlannerEntry, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e
		ids = append(ids, e.RecipeID)
	}

	recipes, err := h.recipeStore.GetByIDs(ids)
	if err != nil {
		h.logger.Error("failed to resolve planned recipes", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load week"})
		return
	}
	byID := make(map[string]model.Recipe, len(recipes))
	for _, rc := range recipes {
		byID[rc.ID] = rc
	}

	resp := plannerWeekResponse{WeekID: weekID, Days: make([]plannerDay, 0, 7)}
	for _, date := range week.Dates(monday) {
		day := plannerDay{Date: date}
		if e, ok := byDate[date]; ok {
			day.RecipeID = e.RecipeID
			if rc, ok := byID[e.RecipeID]; ok {
				recipe := rc
				day.Recipe = &recipe
			}
		}
		resp.Days = append(resp.Days, day)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PlannerHandler) AssignDay(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")
	date := r.PathValue("date")

	monday, err := week.Parse(weekID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week_id"})
		return
	}
	if !week.ContainsDate(monday, date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is not in week"})
		return
	}

	var req struct {
		RecipeID string `json:"recipe_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.RecipeID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "recipe_id is required"})
		return
	}

	recipe, err := h.recipeStore.GetByID(req.RecipeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get recipe"})
		return
	}
	if recipe == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
		return
	}

	entry, err := h.plannerStore.Assign(weekID, date, req.RecipeID)
	if err != nil {
		h.logger.Error("failed to assign recipe", "error", err, "week_id", weekID, "date", date)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to assign recipe"})
		return
	}

	h.broadcast(websocket.NewMessage("planner", "updated", weekID, map[string]any{"date": date}))
	writeJSON(w, http.StatusOK, entry)
}

func (h *PlannerHandler) UnassignDay(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")
	date := r.PathValue("date")

	monday, err := week.Parse(weekID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week_id"})
		return
	}
	if !week.ContainsDate(monday, date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is not in week"})
		return
	}

	if err := h.plannerStore.Unassign(date); err != nil {
		h.logger.Error("failed to unassign day", "error", err, "date", date)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to unassign day"})
		return
	}

	h.broadcast(websocket.NewMessage("planner", "updated", weekID, map[string]any{"date": date}))
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlannerHandler) ClearWeek(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")
	if _, err := week.Parse(weekID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week_id"})
		return
	}

	count, err := h.plannerStore.ClearWeek(weekID)
	if err != nil {
		h.logger.Error("failed to clear week", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear week"})
		return
	}

	h.broadcast(websocket.NewMessage("planner", "cleared", weekID, nil))
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": count})
}
