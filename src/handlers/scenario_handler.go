package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/database"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/model"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/services"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/utils"
)

type ScenarioHandler struct {
	portfolioService services.PortfolioService
}

func NewScenarioHandler(portfolioService services.PortfolioService) *ScenarioHandler {
	return &ScenarioHandler{portfolioService: portfolioService}
}

func scenarioIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *ScenarioHandler) HandleCreateScenario(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Name     string `json:"name"`
		ClientID int64  `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.Name == "" {
		utils.SendJSONError(w, "Scenario name is required", http.StatusBadRequest)
		return
	}

	scenario := &model.Scenario{
		UserID:   userID,
		ClientID: requestBody.ClientID,
		Name:     requestBody.Name,
	}
	if err := model.CreateScenario(database.DB, scenario); err != nil {
		logger.L.Error("Failed to create scenario", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create scenario", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(scenario)
}

func (h *ScenarioHandler) HandleListScenarios(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarios, err := model.ListScenarios(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list scenarios", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list scenarios", http.StatusInternalServerError)
		return
	}
	if scenarios == nil {
		scenarios = []model.Scenario{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scenarios)
}

func (h *ScenarioHandler) HandleGetScenario(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, ok := scenarioIDFromPath(r)
	if !ok {
		utils.SendJSONError(w, "Invalid scenario id", http.StatusBadRequest)
		return
	}

	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		logger.L.Warn("Scenario lookup failed", "userID", userID, "scenarioID", scenarioID, "error", err)
		utils.SendJSONError(w, "Scenario not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scenario)
}

func (h *ScenarioHandler) HandleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, ok := scenarioIDFromPath(r)
	if !ok {
		utils.SendJSONError(w, "Invalid scenario id", http.StatusBadRequest)
		return
	}

	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		utils.SendJSONError(w, "Scenario not found", http.StatusNotFound)
		return
	}

	var requestBody struct {
		Name          *string `json:"name"`
		ClientID      *int64  `json:"client_id"`
		PortfolioJSON *string `json:"portfolio_json"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.Name != nil {
		scenario.Name = *requestBody.Name
	}
	if requestBody.ClientID != nil {
		scenario.ClientID = *requestBody.ClientID
	}
	if requestBody.PortfolioJSON != nil {
		scenario.PortfolioJSON = *requestBody.PortfolioJSON
	}

	if err := model.UpdateScenario(database.DB, scenario); err != nil {
		logger.L.Error("Failed to update scenario", "userID", userID, "scenarioID", scenarioID, "error", err)
		utils.SendJSONError(w, "Failed to update scenario", http.StatusInternalServerError)
		return
	}
	h.portfolioService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scenario)
}

func (h *ScenarioHandler) HandleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, ok := scenarioIDFromPath(r)
	if !ok {
		utils.SendJSONError(w, "Invalid scenario id", http.StatusBadRequest)
		return
	}

	if err := model.SoftDeleteScenario(database.DB, userID, scenarioID); err != nil {
		logger.L.Warn("Scenario delete failed", "userID", userID, "scenarioID", scenarioID, "error", err)
		utils.SendJSONError(w, "Scenario not found", http.StatusNotFound)
		return
	}
	h.portfolioService.InvalidateUserCache(userID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *ScenarioHandler) HandleRestoreScenario(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, ok := scenarioIDFromPath(r)
	if !ok {
		utils.SendJSONError(w, "Invalid scenario id", http.StatusBadRequest)
		return
	}

	if err := model.RestoreScenario(database.DB, userID, scenarioID); err != nil {
		logger.L.Warn("Scenario restore failed", "userID", userID, "scenarioID", scenarioID, "error", err)
		utils.SendJSONError(w, "Scenario not found or not deleted", http.StatusNotFound)
		return
	}
	h.portfolioService.InvalidateUserCache(userID)

	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		utils.SendJSONError(w, "Scenario restored but could not be loaded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scenario)
}

func (h *ScenarioHandler) HandleListScenarioResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, ok := scenarioIDFromPath(r)
	if !ok {
		utils.SendJSONError(w, "Invalid scenario id", http.StatusBadRequest)
		return
	}

	// Ownership check before exposing results.
	if _, err := model.GetScenario(database.DB, userID, scenarioID); err != nil {
		utils.SendJSONError(w, "Scenario not found", http.StatusNotFound)
		return
	}

	results, err := model.ListScenarioResults(database.DB, scenarioID)
	if err != nil {
		logger.L.Error("Failed to list scenario results", "userID", userID, "scenarioID", scenarioID, "error", err)
		utils.SendJSONError(w, "Failed to list scenario results", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []model.ScenarioResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (h *ScenarioHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.Name == "" {
		utils.SendJSONError(w, "Client name is required", http.StatusBadRequest)
		return
	}

	client := &model.Client{
		UserID: userID,
		Name:   requestBody.Name,
		Email:  requestBody.Email,
		Phone:  requestBody.Phone,
	}
	if err := model.CreateClient(database.DB, client); err != nil {
		logger.L.Error("Failed to create client", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}

func (h *ScenarioHandler) HandleSearchClients(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	clients, err := model.SearchClients(database.DB, userID, r.URL.Query().Get("q"))
	if err != nil {
		logger.L.Error("Client search failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to search clients", http.StatusInternalServerError)
		return
	}
	if clients == nil {
		clients = []model.Client{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clients)
}
