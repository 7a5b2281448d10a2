package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/services"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/utils"
)

type QuoteHandler struct {
	pricingService services.PricingService
}

func NewQuoteHandler(pricingService services.PricingService) *QuoteHandler {
	return &QuoteHandler{pricingService: pricingService}
}

// HandleQuote prices a single-property application directly, without the
// package analysis flow.
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var app models.LoanApplication
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if app.Address == "" || app.State == "" {
		utils.SendJSONError(w, "Property address and state are required", http.StatusBadRequest)
		return
	}
	if app.NumberOfProperties == 0 {
		app.NumberOfProperties = 1
	}

	response, err := h.pricingService.PriceApplication(app)
	if err != nil {
		if errors.Is(err, services.ErrPricingUnavailable) {
			logger.L.Error("Pricing collaborator failed for single quote", "userID", userID, "error", err)
			utils.SendJSONError(w, "Pricing service is unavailable. Please try again later.", http.StatusBadGateway)
			return
		}
		logger.L.Error("Internal error pricing quote", "userID", userID, "error", err)
		utils.SendJSONError(w, "An internal error occurred while pricing the quote.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.L.Error("Error encoding quote response", "userID", userID, "error", err)
	}
}
