package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rdouglass/larder/internal/grocery"
	"github.com/rdouglass/larder/internal/push"
	"github.com/rdouglass/larder/internal/store"
	"github.com/rdouglass/larder/internal/websocket"
	"github.com/rdouglass/larder/internal/week"
)

type GroceryHandler struct {
	groceryStore *store.GroceryStore
	plannerStore *store.PlannerStore
	recipeStore  *store.RecipeStore
	hub          *websocket.Hub
	notifier     *push.Scheduler
	logger       *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, ps *store.PlannerStore, rs *store.RecipeStore, hub *websocket.Hub, notifier *push.Scheduler, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{groceryStore: gs, plannerStore: ps, recipeStore: rs, hub: hub, notifier: notifier, logger: logger}
}

func (h *GroceryHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Generate rebuilds the grocery list for a week from its current meal plan.
// The stored list is replaced wholesale, so checked-off state from a prior
// generation does not survive.
func (h *GroceryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")
	if _, err := week.Parse(weekID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week_id"})
		return
	}

	entries, err := h.plannerStore.WeekEntries(weekID)
	if err != nil {
		h.logger.Error("failed to load week entries", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load week"})
		return
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.RecipeID)
	}
	catalog, err := h.recipeStore.GetByIDs(ids)
	if err != nil {
		h.logger.Error("failed to resolve planned recipes", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load recipes"})
		return
	}

	list := grocery.Build(weekID, entries, catalog, time.Now())
	if err := h.groceryStore.Replace(list); err != nil {
		h.logger.Error("failed to save grocery list", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save grocery list"})
		return
	}

	// Re-read so items carry their assigned row ids.
	saved, err := h.groceryStore.Get(weekID)
	if err != nil || saved == nil {
		h.logger.Error("failed to reload grocery list", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload grocery list"})
		return
	}

	h.broadcast(websocket.NewMessage("grocery", "generated", weekID, map[string]any{"items": len(saved.Items)}))
	if h.notifier != nil {
		go h.notifier.SendGroceryGenerated(weekID, len(saved.Items))
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *GroceryHandler) Get(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")
	if _, err := week.Parse(weekID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week_id"})
		return
	}

	list, err := h.groceryStore.Get(weekID)
	if err != nil {
		h.logger.Error("failed to get grocery list", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get grocery list"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "grocery list not found"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryHandler) ToggleChecked(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.groceryStore.ToggleChecked(weekID, id)
	if err != nil {
		h.logger.Error("failed to toggle checked", "error", err, "week_id", weekID, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle checked"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(websocket.NewMessage("grocery", "checked", weekID, map[string]any{"item_id": item.ID, "checked": item.Checked}))
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")

	list, err := h.groceryStore.Get(weekID)
	if err != nil {
		h.logger.Error("failed to get grocery list", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get grocery list"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "grocery list not found"})
		return
	}

	writeJSON(w, http.StatusOK, grocery.Progress(list.Items))
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("week_id")

	list, err := h.groceryStore.Get(weekID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get grocery list"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "grocery list not found"})
		return
	}

	if err := h.groceryStore.Delete(weekID); err != nil {
		h.logger.Error("failed to delete grocery list", "error", err, "week_id", weekID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete grocery list"})
		return
	}

	h.broadcast(websocket.NewMessage("grocery", "deleted", weekID, nil))
	w.WriteHeader(http.StatusNoContent)
}
