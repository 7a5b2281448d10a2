package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"golang.org/x/net/publicsuffix"
)

// pricingServiceImpl talks to the external pricing API. The API is opaque to
// this application: it accepts the normalized loan application and answers
// with per-note-buyer quotes or rejection flags. Failures are terminal for
// the triggering user action; the operator retries manually.
type pricingServiceImpl struct {
	httpClient http.Client
	baseURL    string
	apiKey     string
}

func NewPricingService(baseURL, apiKey string) PricingService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar for pricing client", "error", err)
	}

	return &pricingServiceImpl{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// PriceApplication POSTs the application to the pricing API and decodes the
// quote map. Non-2xx statuses and malformed bodies are both reported as
// collaborator failures.
func (s *pricingServiceImpl) PriceApplication(app models.LoanApplication) (*models.PricingResponse, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("%w: pricing API URL not configured", ErrPricingUnavailable)
	}

	payload, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("failed to encode loan application: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrPricingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.L.Warn("Pricing API returned non-success status", "status", resp.StatusCode, "body", string(bodyBytes))
		return nil, fmt.Errorf("%w: status %d", ErrPricingUnavailable, resp.StatusCode)
	}

	var pricingResponse models.PricingResponse
	if err := json.NewDecoder(resp.Body).Decode(&pricingResponse); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrPricingUnavailable, err)
	}

	logger.L.Info("Pricing API call complete", "duration", time.Since(startTime),
		"buyerCount", len(pricingResponse.Results), "flagCount", len(pricingResponse.Flags))
	return &pricingResponse, nil
}
