package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"github.com/google/uuid"
)

// extractionServiceImpl forwards uploaded documents to the extraction
// webhook and converts its loosely typed rows into PropertyRecord values at
// this boundary. A failed extraction is reported to the caller, who falls
// back to manual entry.
type extractionServiceImpl struct {
	httpClient http.Client
	webhookURL string
}

func NewExtractionService(webhookURL string) ExtractionService {
	return &extractionServiceImpl{
		httpClient: http.Client{Timeout: 60 * time.Second},
		webhookURL: webhookURL,
	}
}

// extractedRow is the webhook's row shape: optional, loosely typed fields.
type extractedRow struct {
	Address         string  `json:"address"`
	County          string  `json:"county"`
	PropertyType    string  `json:"property_type"`
	Units           int     `json:"units"`
	Rural           bool    `json:"rural"`
	CreditScore     int     `json:"credit_score"`
	PurchasePrice   float64 `json:"purchase_price"`
	RehabCost       float64 `json:"rehab_cost"`
	MarketValue     float64 `json:"market_value"`
	MortgageBalance float64 `json:"mortgage_balance"`
	MarketRent      string  `json:"market_rent"`
	LeaseAmount     string  `json:"lease_amount"`
	AnnualTaxes     float64 `json:"annual_taxes"`
	AnnualInsurance float64 `json:"annual_insurance"`
	RentalStrategy  string  `json:"rental_strategy"`
	EntityName      string  `json:"entity_name"`
}

func (s *extractionServiceImpl) ExtractProperties(file io.Reader, filename string) ([]models.PropertyRecord, error) {
	if s.webhookURL == "" {
		return nil, fmt.Errorf("%w: extraction webhook not configured", ErrExtractionFailed)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	req, err := http.NewRequest("POST", s.webhookURL, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.L.Warn("Extraction webhook returned non-success status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: webhook returned status %d", ErrExtractionFailed, resp.StatusCode)
	}

	var payload struct {
		Properties []extractedRow `json:"properties"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook response: %v", ErrExtractionFailed, err)
	}

	properties := make([]models.PropertyRecord, 0, len(payload.Properties))
	for _, row := range payload.Properties {
		properties = append(properties, models.PropertyRecord{
			ID:              uuid.New().String(),
			Address:         row.Address,
			County:          row.County,
			StructureType:   models.StructureType(row.PropertyType),
			UnitCount:       row.Units,
			Rural:           row.Rural,
			CreditScore:     row.CreditScore,
			LoanPurpose:     models.PurposePurchase,
			PurchasePrice:   nonNegative(row.PurchasePrice),
			RehabCost:       nonNegative(row.RehabCost),
			MarketValue:     nonNegative(row.MarketValue),
			MortgageBalance: nonNegative(row.MortgageBalance),
			Occupancy:       models.OccupancyVacant,
			MarketRent:      row.MarketRent,
			LeaseAmount:     row.LeaseAmount,
			AnnualTaxes:     nonNegative(row.AnnualTaxes),
			AnnualHazard:    nonNegative(row.AnnualInsurance),
			RentalStrategy:  row.RentalStrategy,
			EntityName:      row.EntityName,
		})
	}

	logger.L.Info("Extraction webhook returned properties", "count", len(properties))
	return properties, nil
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
