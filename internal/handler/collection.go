package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rdouglass/larder/internal/model"
	"github.com/rdouglass/larder/internal/store"
	"github.com/rdouglass/larder/internal/websocket"
)

type CollectionHandler struct {
	collectionStore *store.CollectionStore
	recipeStore     *store.RecipeStore
	hub             *websocket.Hub
	logger          *slog.Logger
}

func NewCollectionHandler(cs *store.CollectionStore, rs *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{collectionStore: cs, recipeStore: rs, hub: hub, logger: logger}
}

func (h *CollectionHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type collectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	collection, err := h.collectionStore.Create(req.Name, req.Description)
	if err != nil {
		h.logger.Error("failed to create collection", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create collection"})
		return
	}

	h.broadcast(websocket.NewMessage("collection", "created", collection.ID, nil))
	writeJSON(w, http.StatusCreated, collection)
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collectionStore.List()
	if err != nil {
		h.logger.Error("failed to list collections", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list collections"})
		return
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	writeJSON(w, http.StatusOK, collections)
}

func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.collectionStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get collection"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
		return
	}

	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	collection, err := h.collectionStore.Update(id, req.Name, req.Description)
	if err != nil {
		h.logger.Error("failed to update collection", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update collection"})
		return
	}

	h.broadcast(websocket.NewMessage("collection", "updated", id, nil))
	writeJSON(w, http.StatusOK, collection)
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.collectionStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get collection"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
		return
	}

	if err := h.collectionStore.Delete(id); err != nil {
		h.logger.Error("failed to delete collection", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete collection"})
		return
	}

	h.broadcast(websocket.NewMessage("collection", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.collectionStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get collection"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
		return
	}

	recipes, err := h.collectionStore.ListRecipes(id)
	if err != nil {
		h.logger.Error("failed to list collection recipes", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list recipes"})
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *CollectionHandler) AddRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	recipeID := r.PathValue("recipe_id")

	collection, err := h.collectionStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get collection"})
		return
	}
	if collection == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
		return
	}

	recipe, err := h.recipeStore.GetByID(recipeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get recipe"})
		return
	}
	if recipe == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
		return
	}

	if err := h.collectionStore.AddRecipe(id, recipeID); err != nil {
		h.logger.Error("failed to add recipe to collection", "error", err, "collection_id", id, "recipe_id", recipeID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add recipe"})
		return
	}

	h.broadcast(websocket.NewMessage("collection", "updated", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (h *CollectionHandler) RemoveRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	recipeID := r.PathValue("recipe_id")

	collection, err := h.collectionStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get collection"})
		return
	}
	if collection == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
		return
	}

	if err := h.collectionStore.RemoveRecipe(id, recipeID); err != nil {
		h.logger.Error("failed to remove recipe from collection", "error", err, "collection_id", id, "recipe_id", recipeID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove recipe"})
		return
	}

	h.broadcast(websocket.NewMessage("collection", "updated", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
