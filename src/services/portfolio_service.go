package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/database"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/model"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/parsers"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/processors"
	"github.com/patrickmn/go-cache"
)

const (
	ckAnalysisResult = "res_analysis_user_%d_scenario_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type portfolioServiceImpl struct {
	classifier     processors.Classifier
	aggregator     processors.Aggregator
	mapper         processors.Mapper
	pricingService PricingService
	reportCache    *cache.Cache
}

func NewPortfolioService(
	classifier processors.Classifier,
	aggregator processors.Aggregator,
	mapper processors.Mapper,
	pricingService PricingService,
	reportCache *cache.Cache,
) PortfolioService {
	return &portfolioServiceImpl{
		classifier:     classifier,
		aggregator:     aggregator,
		mapper:         mapper,
		pricingService: pricingService,
		reportCache:    reportCache,
	}
}

// ImportProperties parses an uploaded spreadsheet into property records and
// stores them as the scenario's in-progress portfolio. Classification is a
// separate, explicit step.
func (s *portfolioServiceImpl) ImportProperties(fileReader io.Reader, userID, scenarioID int64, source string) ([]models.PropertyRecord, error) {
	startTime := time.Now()
	logger.L.Info("ImportProperties START", "userID", userID, "scenarioID", scenarioID, "source", source)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	properties, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	portfolioJSON, err := json.Marshal(properties)
	if err != nil {
		return nil, fmt.Errorf("error encoding imported portfolio: %w", err)
	}
	scenario.PortfolioJSON = string(portfolioJSON)
	if err := model.UpdateScenario(database.DB, scenario); err != nil {
		return nil, err
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("ImportProperties END", "userID", userID, "propertyCount", len(properties), "duration", time.Since(startTime))
	return properties, nil
}

// AnalyzePortfolio runs the validation gate, classifies the portfolio into
// package groups, and persists the groups wholesale (replacing any previous
// run). The previous selection is discarded with the old groups.
func (s *portfolioServiceImpl) AnalyzePortfolio(userID, scenarioID int64, properties []models.PropertyRecord) (*AnalysisResult, error) {
	if invalid := s.aggregator.ValidateProperties(properties); invalid > 0 {
		return nil, fmt.Errorf("%w: %d properties missing address, property type, or market value", ErrInvalidProperties, invalid)
	}

	groups := s.classifier.Classify(properties)

	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	portfolioJSON, err := json.Marshal(properties)
	if err != nil {
		return nil, fmt.Errorf("error encoding portfolio: %w", err)
	}
	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return nil, fmt.Errorf("error encoding package groups: %w", err)
	}
	selectionJSON, err := json.Marshal(models.SelectionState{SelectedPackageIDs: []string{}})
	if err != nil {
		return nil, fmt.Errorf("error encoding selection: %w", err)
	}
	scenario.PortfolioJSON = string(portfolioJSON)
	scenario.GroupsJSON = string(groupsJSON)
	scenario.SelectionJSON = string(selectionJSON)
	if err := model.UpdateScenario(database.DB, scenario); err != nil {
		return nil, err
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("Portfolio analyzed", "userID", userID, "scenarioID", scenarioID,
		"propertyCount", len(properties), "groupCount", len(groups))
	return s.GetPackages(userID, scenarioID)
}

// GetPackages returns the scenario's current groups, each with its financial
// rollup, plus the operator's selection. Cached until the next write.
func (s *portfolioServiceImpl) GetPackages(userID, scenarioID int64) (*AnalysisResult, error) {
	cacheKey := fmt.Sprintf(ckAnalysisResult, userID, scenarioID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetPackages", "userID", userID, "scenarioID", scenarioID)
		return cached.(*AnalysisResult), nil
	}

	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	groups, selection, err := decodeScenarioState(scenario)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Packages:  make([]PackageView, 0, len(groups)),
		Selection: selection,
	}
	for _, g := range groups {
		result.Packages = append(result.Packages, PackageView{
			PackageGroup: g,
			Financials:   s.aggregator.Aggregate(g),
		})
	}

	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result, nil
}

// SelectPackages replaces the scenario's selection state. Unknown group ids
// are rejected.
func (s *portfolioServiceImpl) SelectPackages(userID, scenarioID int64, selection models.SelectionState) (*AnalysisResult, error) {
	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	groups, _, err := decodeScenarioState(scenario)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(groups))
	for _, g := range groups {
		existing[g.ID] = true
	}
	for _, id := range selection.SelectedPackageIDs {
		if !existing[id] {
			return nil, fmt.Errorf("selected package %s does not exist", id)
		}
	}

	selectionJSON, err := json.Marshal(selection)
	if err != nil {
		return nil, fmt.Errorf("error encoding selection: %w", err)
	}
	scenario.SelectionJSON = string(selectionJSON)
	if err := model.UpdateScenario(database.DB, scenario); err != nil {
		return nil, err
	}

	s.InvalidateUserCache(userID)
	return s.GetPackages(userID, scenarioID)
}

// DeletePackage removes one group from the scenario. Its properties leave
// consideration entirely (they do not return to an ungrouped pool), and the
// selection is pruned so it only references surviving groups.
func (s *portfolioServiceImpl) DeletePackage(userID, scenarioID int64, packageID string) (*AnalysisResult, error) {
	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	groups, selection, err := decodeScenarioState(scenario)
	if err != nil {
		return nil, err
	}

	kept := make([]models.PackageGroup, 0, len(groups))
	existing := make(map[string]bool, len(groups))
	found := false
	for _, g := range groups {
		if g.ID == packageID {
			found = true
			continue
		}
		kept = append(kept, g)
		existing[g.ID] = true
	}
	if !found {
		return nil, fmt.Errorf("package %s not found", packageID)
	}

	groupsJSON, err := json.Marshal(kept)
	if err != nil {
		return nil, fmt.Errorf("error encoding package groups: %w", err)
	}
	selectionJSON, err := json.Marshal(selection.Prune(existing))
	if err != nil {
		return nil, fmt.Errorf("error encoding selection: %w", err)
	}
	scenario.GroupsJSON = string(groupsJSON)
	scenario.SelectionJSON = string(selectionJSON)
	if err := model.UpdateScenario(database.DB, scenario); err != nil {
		return nil, err
	}

	s.InvalidateUserCache(userID)
	return s.GetPackages(userID, scenarioID)
}

// SubmitSelection maps the selected packages to a normalized loan
// application and prices it. The empty-selection check runs before any
// network call; a collaborator failure is terminal for this submission.
func (s *portfolioServiceImpl) SubmitSelection(userID, scenarioID int64, enrichment map[string]json.RawMessage) (*SubmissionResult, error) {
	scenario, err := model.GetScenario(database.DB, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	groups, selection, err := decodeScenarioState(scenario)
	if err != nil {
		return nil, err
	}

	if len(selection.SelectedPackageIDs) == 0 {
		return nil, ErrEmptySelection
	}

	var selected []models.PackageGroup
	for _, g := range groups {
		if selection.Contains(g.ID) {
			selected = append(selected, g)
		}
	}
	propertyCount := 0
	for _, g := range selected {
		propertyCount += len(g.Properties)
	}
	if propertyCount == 0 {
		return nil, ErrNoProperties
	}

	app := s.mapper.Build(selected)
	app, err = s.mapper.ApplyEnrichment(app, enrichment)
	if err != nil {
		return nil, err
	}

	response, err := s.pricingService.PriceApplication(app)
	if err != nil {
		if errors.Is(err, ErrPricingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}

	applicationJSON, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("error encoding application: %w", err)
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("error encoding pricing response: %w", err)
	}
	result := &model.ScenarioResult{
		ScenarioID:      scenarioID,
		ApplicationJSON: string(applicationJSON),
		ResponseJSON:    string(responseJSON),
	}
	if err := model.CreateScenarioResult(database.DB, result); err != nil {
		return nil, err
	}

	logger.L.Info("Selection submitted to pricing", "userID", userID, "scenarioID", scenarioID,
		"packageCount", len(selected), "propertyCount", propertyCount)
	return &SubmissionResult{Application: app, Response: *response}, nil
}

// InvalidateUserCache clears all cached analysis results for a user, forcing
// a rebuild on the next read.
func (s *portfolioServiceImpl) InvalidateUserCache(userID int64) {
	prefix := fmt.Sprintf("res_analysis_user_%d_", userID)
	for key := range s.reportCache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.reportCache.Delete(key)
		}
	}
	logger.L.Debug("Invalidated analysis caches for user", "userID", userID)
}

func decodeScenarioState(scenario *model.Scenario) ([]models.PackageGroup, models.SelectionState, error) {
	var groups []models.PackageGroup
	if scenario.GroupsJSON != "" {
		if err := json.Unmarshal([]byte(scenario.GroupsJSON), &groups); err != nil {
			return nil, models.SelectionState{}, fmt.Errorf("error decoding scenario groups: %w", err)
		}
	}
	var selection models.SelectionState
	if scenario.SelectionJSON != "" {
		if err := json.Unmarshal([]byte(scenario.SelectionJSON), &selection); err != nil {
			return nil, models.SelectionState{}, fmt.Errorf("error decoding scenario selection: %w", err)
		}
	}
	if selection.SelectedPackageIDs == nil {
		selection.SelectedPackageIDs = []string{}
	}
	return groups, selection, nil
}
