package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/config"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/security/validation"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/services"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/utils"
)

type PortfolioHandler struct {
	portfolioService  services.PortfolioService
	extractionService services.ExtractionService
}

func NewPortfolioHandler(portfolioService services.PortfolioService, extractionService services.ExtractionService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:  portfolioService,
		extractionService: extractionService,
	}
}

// scenarioIDFromRequest reads the scenario ID from the query string for GET
// and DELETE requests.
func scenarioIDFromRequest(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("scenario_id")
	if raw == "" {
		return 0, fmt.Errorf("scenario_id query parameter is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("scenario_id must be a positive integer")
	}
	return id, nil
}

// HandleAnalyze runs the classification pipeline over the posted portfolio
// and returns the resulting packages with their financial rollups.
func (h *PortfolioHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		ScenarioID int64                   `json:"scenario_id"`
		Properties []models.PropertyRecord `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.ScenarioID <= 0 {
		utils.SendJSONError(w, "scenario_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.portfolioService.AnalyzePortfolio(userID, requestBody.ScenarioID, requestBody.Properties)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProperties) {
			logger.L.Warn("Analyze blocked by property validation", "userID", userID, "scenarioID", requestBody.ScenarioID, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error analyzing portfolio", "userID", userID, "scenarioID", requestBody.ScenarioID, "error", err)
		utils.SendJSONError(w, "An internal error occurred while analyzing the portfolio.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding analysis response", "userID", userID, "error", err)
	}
}

// HandleImport parses an uploaded spreadsheet into property rows. The rows
// are returned for review; analysis is a separate call.
func (h *PortfolioHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	scenarioID, err := strconv.ParseInt(r.FormValue("scenario_id"), 10, 64)
	if err != nil || scenarioID <= 0 {
		utils.SendJSONError(w, "scenario_id form field must be a positive integer", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated", "userID", userID, "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	source := r.FormValue("source")
	if source == "" {
		source = "spreadsheet"
	}

	properties, err := h.portfolioService.ImportProperties(file, userID, scenarioID, source)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Import failed during parsing", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing file: %v", err), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error importing properties", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "An internal error occurred while importing the file.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"properties": properties,
	})
}

// HandleExtract forwards an uploaded document to the extraction webhook and
// returns the property rows it produced.
func (h *PortfolioHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Extraction upload failed content validation", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("Forwarding document to extraction", "userID", userID, "filename", fileHeader.Filename, "detectedType", detectedContentType)

	properties, err := h.extractionService.ExtractProperties(file, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, services.ErrExtractionFailed) {
			logger.L.Warn("Extraction webhook failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "Document extraction failed. Please enter the properties manually.", http.StatusBadGateway)
			return
		}
		logger.L.Error("Internal error during extraction", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "An internal error occurred during extraction.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"properties": properties,
	})
}

// HandleGetPackages returns the current package groups and selection for a
// scenario, with ETag support so an unchanged analysis is not re-sent.
func (h *PortfolioHandler) HandleGetPackages(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, err := scenarioIDFromRequest(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.portfolioService.GetPackages(userID, scenarioID)
	if err != nil {
		logger.L.Error("Error retrieving packages", "userID", userID, "scenarioID", scenarioID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving packages for scenario %d", scenarioID), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	currentETag, etagErr := utils.GenerateETag(result)
	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("%q", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else {
		logger.L.Warn("Proceeding without ETag check", "userID", userID, "error", etagErr)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding packages response", "userID", userID, "error", err)
	}
}

// HandleSelectPackages replaces the scenario's package selection.
func (h *PortfolioHandler) HandleSelectPackages(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		ScenarioID int64    `json:"scenario_id"`
		PackageIDs []string `json:"package_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.ScenarioID <= 0 {
		utils.SendJSONError(w, "scenario_id is required", http.StatusBadRequest)
		return
	}

	selection := models.SelectionState{SelectedPackageIDs: requestBody.PackageIDs}
	result, err := h.portfolioService.SelectPackages(userID, requestBody.ScenarioID, selection)
	if err != nil {
		logger.L.Warn("Package selection rejected", "userID", userID, "scenarioID", requestBody.ScenarioID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleDeletePackage removes one package group and prunes it from the
// selection.
func (h *PortfolioHandler) HandleDeletePackage(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, err := scenarioIDFromRequest(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	packageID := r.PathValue("id")
	if packageID == "" {
		utils.SendJSONError(w, "package id is required", http.StatusBadRequest)
		return
	}

	result, err := h.portfolioService.DeletePackage(userID, scenarioID, packageID)
	if err != nil {
		logger.L.Warn("Package deletion failed", "userID", userID, "scenarioID", scenarioID, "packageID", packageID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleSubmit maps the selected packages into a loan application, applies
// any operator enrichment, and prices it.
func (h *PortfolioHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		ScenarioID int64                      `json:"scenario_id"`
		Enrichment map[string]json.RawMessage `json:"enrichment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.ScenarioID <= 0 {
		utils.SendJSONError(w, "scenario_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.portfolioService.SubmitSelection(userID, requestBody.ScenarioID, requestBody.Enrichment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySelection):
			logger.L.Warn("Submission with no packages selected", "userID", userID, "scenarioID", requestBody.ScenarioID)
			utils.SendJSONError(w, "No packages selected. Select at least one package before submitting.", http.StatusBadRequest)
		case errors.Is(err, services.ErrNoProperties):
			logger.L.Warn("Submission with empty packages", "userID", userID, "scenarioID", requestBody.ScenarioID)
			utils.SendJSONError(w, "The selected packages contain no properties.", http.StatusBadRequest)
		case errors.Is(err, services.ErrPricingUnavailable):
			logger.L.Error("Pricing collaborator failed", "userID", userID, "scenarioID", requestBody.ScenarioID, "error", err)
			utils.SendJSONError(w, "Pricing service is unavailable. Please try again later.", http.StatusBadGateway)
		default:
			logger.L.Error("Internal error submitting selection", "userID", userID, "scenarioID", requestBody.ScenarioID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while submitting the selection.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding submission response", "userID", userID, "error", err)
	}
}

// HandleExportPackages writes the scenario's packages as a CSV download.
// Cell values pass through the formula-injection sanitizer.
func (h *PortfolioHandler) HandleExportPackages(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	scenarioID, err := scenarioIDFromRequest(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.portfolioService.GetPackages(userID, scenarioID)
	if err != nil {
		logger.L.Error("Error retrieving packages for export", "userID", userID, "scenarioID", scenarioID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving packages for scenario %d", scenarioID), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"scenario_%d_packages.csv\"", scenarioID))

	cw := csv.NewWriter(w)
	header := []string{"package", "rationale", "address", "property_type", "units", "market_value", "mortgage_balance", "selected"}
	if err := cw.Write(header); err != nil {
		logger.L.Error("Error writing CSV export header", "userID", userID, "error", err)
		return
	}

	for _, pkg := range result.Packages {
		selected := strconv.FormatBool(result.Selection.Contains(pkg.ID))
		for _, p := range pkg.Properties {
			row := []string{
				validation.SanitizeForFormulaInjection(pkg.Name),
				validation.SanitizeForFormulaInjection(pkg.Rationale),
				validation.SanitizeForFormulaInjection(p.Address),
				validation.SanitizeForFormulaInjection(string(p.StructureType)),
				strconv.Itoa(p.UnitCount),
				strconv.FormatFloat(p.MarketValue, 'f', 2, 64),
				strconv.FormatFloat(p.MortgageBalance, 'f', 2, 64),
				selected,
			}
			if err := cw.Write(row); err != nil {
				logger.L.Error("Error writing CSV export row", "userID", userID, "error", err)
				return
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.L.Error("Error flushing CSV export", "userID", userID, "error", err)
	}
}
