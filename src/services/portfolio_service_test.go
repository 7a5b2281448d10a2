package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/database"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/model"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/processors"
)

// stubPricingService records whether the collaborator was called.
type stubPricingService struct {
	called   bool
	response *models.PricingResponse
	err      error
}

func (s *stubPricingService) PriceApplication(app models.LoanApplication) (*models.PricingResponse, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func setupTestService(t *testing.T) (*portfolioServiceImpl, *stubPricingService, int64) {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(":memory:")

	scenario := &model.Scenario{UserID: 1, Name: "test scenario"}
	err := model.CreateScenario(database.DB, scenario)
	assert.NoError(t, err)

	pricing := &stubPricingService{
		response: &models.PricingResponse{
			Results: map[string]models.NoteBuyerResult{
				"buyer_a": {Quote: json.RawMessage(`{"rate":7.25}`)},
			},
		},
	}
	svc := NewPortfolioService(
		processors.NewPackageClassifier(),
		processors.NewPackageAggregator(),
		processors.NewApplicationMapper(),
		pricing,
		cache.New(time.Minute, time.Minute),
	).(*portfolioServiceImpl)

	return svc, pricing, int64(scenario.ID)
}

func validProperty(address string) models.PropertyRecord {
	return models.PropertyRecord{
		ID:            uuid.New().String(),
		Address:       address,
		StructureType: models.StructureSingleFamily,
		MarketValue:   250000,
		LoanPurpose:   models.PurposePurchase,
	}
}

func TestAnalyzePortfolio_ValidationGate(t *testing.T) {
	svc, _, scenarioID := setupTestService(t)

	missing := validProperty("")
	incomplete := validProperty("2 B St, Boise, ID 83702")
	incomplete.MarketValue = 0

	_, err := svc.AnalyzePortfolio(1, scenarioID, []models.PropertyRecord{
		validProperty("1 A St, Boise, ID 83702"), missing, incomplete,
	})

	assert.ErrorIs(t, err, ErrInvalidProperties)
	assert.Contains(t, err.Error(), "2 properties")
}

func TestAnalyzePortfolio_PersistsGroupsAndClearsSelection(t *testing.T) {
	svc, _, scenarioID := setupTestService(t)

	result, err := svc.AnalyzePortfolio(1, scenarioID, []models.PropertyRecord{
		validProperty("1 A St, Boise, ID 83702"),
		validProperty("2 B St, Boise, ID 83702"),
	})

	assert.NoError(t, err)
	assert.Len(t, result.Packages, 1)
	assert.Equal(t, "Standard Package", result.Packages[0].Name)
	assert.Empty(t, result.Selection.SelectedPackageIDs)

	// A later read sees the persisted state.
	again, err := svc.GetPackages(1, scenarioID)
	assert.NoError(t, err)
	assert.Equal(t, result.Packages[0].ID, again.Packages[0].ID)
}

func TestSelectPackages_RejectsUnknownID(t *testing.T) {
	svc, _, scenarioID := setupTestService(t)

	_, err := svc.AnalyzePortfolio(1, scenarioID, []models.PropertyRecord{
		validProperty("1 A St, Boise, ID 83702"),
	})
	assert.NoError(t, err)

	_, err = svc.SelectPackages(1, scenarioID, models.SelectionState{
		SelectedPackageIDs: []string{"no-such-package"},
	})
	assert.Error(t, err)
}

func TestDeletePackage_PrunesSelection(t *testing.T) {
	svc, _, scenarioID := setupTestService(t)

	rural := validProperty("1 Farm Rd, Plainville, KS 67663")
	rural.Rural = true
	result, err := svc.AnalyzePortfolio(1, scenarioID, []models.PropertyRecord{
		rural, validProperty("2 B St, Boise, ID 83702"),
	})
	assert.NoError(t, err)
	assert.Len(t, result.Packages, 2)

	ruralID := result.Packages[0].ID
	standardID := result.Packages[1].ID

	_, err = svc.SelectPackages(1, scenarioID, models.SelectionState{
		SelectedPackageIDs: []string{ruralID, standardID},
	})
	assert.NoError(t, err)

	afterDelete, err := svc.DeletePackage(1, scenarioID, ruralID)
	assert.NoError(t, err)
	assert.Len(t, afterDelete.Packages, 1)
	assert.Equal(t, []string{standardID}, afterDelete.Selection.SelectedPackageIDs)
}

func TestSubmitSelection_EmptySelectionBeforeNetwork(t *testing.T) {
	svc, pricing, scenarioID := setupTestService(t)

	_, err := svc.AnalyzePortfolio(1, scenarioID, []models.PropertyRecord{
		validProperty("1 A St, Boise, ID 83702"),
	})
	assert.NoError(t, err)

	_, err = svc.SubmitSelection(1, scenarioID, nil)

	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.False(t, pricing.called, "pricing collaborator must not be called for an empty selection")
}

func TestSubmitSelection_PricesAndPersistsResult(t *testing.T) {
	svc, pricing, scenarioID := setupTestService(t)

	result, err := svc.AnalyzePortfolio(1, scenarioID, []models.PropertyRecord{
		validProperty("100 Main St, Springfield, IL 62701"),
	})
	assert.NoError(t, err)

	_, err = svc.SelectPackages(1, scenarioID, models.SelectionState{
		SelectedPackageIDs: []string{result.Packages[0].ID},
	})
	assert.NoError(t, err)

	submission, err := svc.SubmitSelection(1, scenarioID, map[string]json.RawMessage{
		"entity_name": json.RawMessage(`"Springfield Holdings LLC"`),
	})

	assert.NoError(t, err)
	assert.True(t, pricing.called)
	assert.Equal(t, 1, submission.Application.NumberOfProperties)
	assert.Equal(t, "Springfield Holdings LLC", submission.Application.EntityName)
	assert.Contains(t, submission.Response.Results, "buyer_a")

	results, err := model.ListScenarioResults(database.DB, scenarioID)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSubmitSelection_PricingFailureIsTerminal(t *testing.T) {
	svc, pricing, scenarioID := setupTestService(t)
	pricing.err = errors.New("upstream timeout")

	result, err := svc.AnalyzePortfolio(1, scenarioID, []models.PropertyRecord{
		validProperty("1 A St, Boise, ID 83702"),
	})
	assert.NoError(t, err)

	_, err = svc.SelectPackages(1, scenarioID, models.SelectionState{
		SelectedPackageIDs: []string{result.Packages[0].ID},
	})
	assert.NoError(t, err)

	_, err = svc.SubmitSelection(1, scenarioID, nil)
	assert.ErrorIs(t, err, ErrPricingUnavailable)

	// No partial result row.
	results, err := model.ListScenarioResults(database.DB, scenarioID)
	assert.NoError(t, err)
	assert.Empty(t, results)
}
