package services

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

var (
	// ErrParsingFailed marks spreadsheet parsing failures.
	ErrParsingFailed = errors.New("file parsing failed")
	// ErrInvalidProperties marks the pre-classification gate refusing to run;
	// wrap it with the invalid-row count.
	ErrInvalidProperties = errors.New("incomplete property data")
	// ErrEmptySelection is returned when submission is attempted with no
	// package selected. No network call is made.
	ErrEmptySelection = errors.New("no packages selected")
	// ErrNoProperties is returned when the selected packages contain no
	// properties.
	ErrNoProperties = errors.New("no properties in selected package")
	// ErrPricingUnavailable marks pricing collaborator failures; terminal for
	// the submission, the operator retries manually.
	ErrPricingUnavailable = errors.New("pricing service unavailable")
	// ErrExtractionFailed marks extraction webhook failures; the caller falls
	// back to manual entry.
	ErrExtractionFailed = errors.New("document extraction failed")
)

// PackageView is a package group joined with its financial rollup for
// display.
type PackageView struct {
	models.PackageGroup
	Financials models.AggregateFinancials `json:"financials"`
}

// AnalysisResult is the outcome of one classification run over a scenario's
// portfolio.
type AnalysisResult struct {
	Packages  []PackageView         `json:"packages"`
	Selection models.SelectionState `json:"selection"`
}

// SubmissionResult pairs the normalized application sent to pricing with the
// collaborator's response.
type SubmissionResult struct {
	Application models.LoanApplication `json:"application"`
	Response    models.PricingResponse `json:"response"`
}

// PortfolioService is the core orchestration surface: import, analysis,
// selection, and submission of package loans for a scenario.
type PortfolioService interface {
	ImportProperties(fileReader io.Reader, userID, scenarioID int64, source string) ([]models.PropertyRecord, error)
	AnalyzePortfolio(userID, scenarioID int64, properties []models.PropertyRecord) (*AnalysisResult, error)
	GetPackages(userID, scenarioID int64) (*AnalysisResult, error)
	SelectPackages(userID, scenarioID int64, selection models.SelectionState) (*AnalysisResult, error)
	DeletePackage(userID, scenarioID int64, packageID string) (*AnalysisResult, error)
	SubmitSelection(userID, scenarioID int64, enrichment map[string]json.RawMessage) (*SubmissionResult, error)
	InvalidateUserCache(userID int64)
}

// PricingService prices a normalized loan application against the external
// pricing API.
type PricingService interface {
	PriceApplication(app models.LoanApplication) (*models.PricingResponse, error)
}

// ExtractionService turns an uploaded document into property rows via the
// extraction webhook.
type ExtractionService interface {
	ExtractProperties(file io.Reader, filename string) ([]models.PropertyRecord, error)
}

// ChatService proxies assistant messages to the chat webhook.
type ChatService interface {
	SendMessage(userID int64, message string) (string, error)
}
