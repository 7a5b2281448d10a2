package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/database"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/model"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/utils"
)

// StateHandler exposes the per-user key-value store the frontend uses to
// persist wizard progress between visits.
type StateHandler struct{}

func NewStateHandler() *StateHandler {
	return &StateHandler{}
}

func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	key := r.PathValue("key")
	if key == "" {
		utils.SendJSONError(w, "state key is required", http.StatusBadRequest)
		return
	}

	value, found, err := model.LoadState(database.DB, userID, key)
	if err != nil {
		logger.L.Error("Failed to load state", "userID", userID, "key", key, "error", err)
		utils.SendJSONError(w, "Failed to load state", http.StatusInternalServerError)
		return
	}
	if !found {
		utils.SendJSONError(w, "State not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"key": key, "value": value})
}

func (h *StateHandler) HandleSaveState(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	key := r.PathValue("key")
	if key == "" {
		utils.SendJSONError(w, "state key is required", http.StatusBadRequest)
		return
	}

	var requestBody struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := model.SaveState(database.DB, userID, key, requestBody.Value); err != nil {
		logger.L.Error("Failed to save state", "userID", userID, "key", key, "error", err)
		utils.SendJSONError(w, "Failed to save state", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StateHandler) HandleClearState(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	key := r.PathValue("key")
	if key == "" {
		utils.SendJSONError(w, "state key is required", http.StatusBadRequest)
		return
	}

	if err := model.ClearState(database.DB, userID, key); err != nil {
		logger.L.Error("Failed to clear state", "userID", userID, "key", key, "error", err)
		utils.SendJSONError(w, "Failed to clear state", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
