package processors

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

// ApplicationMapper flattens one or more selected package groups into the
// single normalized loan application the pricing API expects. It applies the
// geographic-consistency rule and recomputes loan-level metrics; callers
// guard against an empty property set before invoking it.
type ApplicationMapper struct{}

func NewApplicationMapper() *ApplicationMapper {
	return &ApplicationMapper{}
}

// Build unions the selected groups' properties, picks the primary property,
// filters to the primary property's state, and rolls the survivors up into a
// flat application record. Deterministic: identical input yields identical
// output.
func (m *ApplicationMapper) Build(groups []models.PackageGroup) models.LoanApplication {
	union := unionProperties(groups)
	if len(union) == 0 {
		return models.LoanApplication{}
	}

	primary := pickPrimaryProperty(union)
	primaryAddr := splitAddress(primary.Address)

	// State-consistency filter: only same-state properties contribute to
	// the aggregate. The groups themselves keep out-of-state members for
	// display; the exclusion is specific to application mapping.
	filtered := make([]models.PropertyRecord, 0, len(union))
	for _, p := range union {
		if splitAddress(p.Address).State == primaryAddr.State {
			filtered = append(filtered, p)
		}
	}

	var (
		purchasePrice, rehabCost, marketValue, mortgageBalance float64
		taxes, hazard, flood, hoa, monthlyRent                 float64
		totalUnits                                             int
		earliestPurchase                                       time.Time
		entityName                                             string
	)
	for _, p := range filtered {
		purchasePrice += p.PurchasePrice
		rehabCost += p.RehabCost
		marketValue += p.MarketValue
		mortgageBalance += p.MortgageBalance
		taxes += p.AnnualTaxes
		hazard += p.AnnualHazard
		flood += p.AnnualFlood
		hoa += p.AnnualHOA
		monthlyRent += p.MonthlyRent()
		if p.UnitCount > 0 {
			totalUnits += p.UnitCount
		} else {
			totalUnits++
		}
		if d := p.ParsedPurchaseDate(); !d.IsZero() {
			if earliestPurchase.IsZero() || d.Before(earliestPurchase) {
				earliestPurchase = d
			}
		}
		if entityName == "" {
			entityName = p.EntityName
		}
	}

	creditScore := lowestCreditScore(filtered)
	if creditScore == 0 {
		// Fall back to the pre-filter aggregate when no same-state property
		// reports a score.
		creditScore = lowestCreditScore(union)
	}

	app := models.LoanApplication{
		LoanPurpose:          string(primary.LoanPurpose),
		DecisionCreditScore:  creditScore,
		NumberOfProperties:   len(filtered),
		CrossCollateralized:  len(filtered) > 1,
		Address:              primaryAddr.Street,
		City:                 primaryAddr.City,
		State:                primaryAddr.State,
		ZipCode:              primaryAddr.Zip,
		County:               primary.County,
		PropertyType:         mostCommonStructureType(filtered),
		PropertyCondition:    "Average",
		NumberOfUnits:        totalUnits,
		MarketRent:           monthlyRent,
		AnnualTaxes:          taxes,
		AnnualInsurance:      hazard,
		AnnualAssociationFee: hoa,
		AnnualFloodInsurance: flood,
		PurchasePrice:        purchasePrice,
		RehabCost:            rehabCost,
		DesiredLTV:           computeDesiredLTV(purchasePrice, rehabCost, marketValue, mortgageBalance),
		EntityName:           entityName,
	}

	if primary.LoanPurpose == models.PurposeRefinance || primary.LoanPurpose == models.PurposeCashOutRefi {
		app.RefinanceType = "Rate/Term"
		if primary.LoanPurpose == models.PurposeCashOutRefi {
			app.RefinanceType = "Cash-Out"
		}
		app.MortgagePayoff = mortgageBalance
		app.HasMortgage = mortgageBalance > 0
		if !earliestPurchase.IsZero() {
			app.DatePurchased = earliestPurchase.Format("2006-01-02")
		}
	}

	return app
}

// ApplyEnrichment merges an external payload (e.g. the extraction webhook's
// parsed output) into a locally built application, then re-applies the
// authoritative locally computed fields so enrichment cannot silently
// overwrite property count or LTV.
func (m *ApplicationMapper) ApplyEnrichment(app models.LoanApplication, enrichment map[string]json.RawMessage) (models.LoanApplication, error) {
	if len(enrichment) == 0 {
		return app, nil
	}

	raw, err := json.Marshal(app)
	if err != nil {
		return app, fmt.Errorf("marshaling application for enrichment merge: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return app, fmt.Errorf("decoding application for enrichment merge: %w", err)
	}
	for key, value := range enrichment {
		fields[key] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return app, fmt.Errorf("encoding merged application: %w", err)
	}
	var result models.LoanApplication
	if err := json.Unmarshal(merged, &result); err != nil {
		return app, fmt.Errorf("decoding merged application: %w", err)
	}

	// Authoritative overlay.
	result.NumberOfProperties = app.NumberOfProperties
	result.DesiredLTV = app.DesiredLTV
	return result, nil
}

// unionProperties merges the groups' property lists by id, preserving
// first-seen order.
func unionProperties(groups []models.PackageGroup) []models.PropertyRecord {
	seen := make(map[string]bool)
	var union []models.PropertyRecord
	for _, g := range groups {
		for _, p := range g.Properties {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			union = append(union, p)
		}
	}
	return union
}

// pickPrimaryProperty returns the property whose street address begins with
// the lowest number. Ties keep the earlier input position.
func pickPrimaryProperty(properties []models.PropertyRecord) models.PropertyRecord {
	primary := properties[0]
	best := leadingStreetNumber(primary.Address)
	for _, p := range properties[1:] {
		if n := leadingStreetNumber(p.Address); n < best {
			primary = p
			best = n
		}
	}
	return primary
}

// lowestCreditScore returns the lowest score among properties that report
// one, or 0 when none do.
func lowestCreditScore(properties []models.PropertyRecord) int {
	lowest := 0
	for _, p := range properties {
		if p.CreditScore <= 0 {
			continue
		}
		if lowest == 0 || p.CreditScore < lowest {
			lowest = p.CreditScore
		}
	}
	return lowest
}

// mostCommonStructureType returns the display name of the most frequent
// structure type. Ties keep the type encountered first.
func mostCommonStructureType(properties []models.PropertyRecord) string {
	counts := make(map[models.StructureType]int)
	var winner models.StructureType
	for _, p := range properties {
		counts[p.StructureType]++
		if winner == "" || counts[p.StructureType] > counts[winner] {
			winner = p.StructureType
		}
	}
	if winner == "" {
		return ""
	}
	return winner.DisplayName()
}

// computeDesiredLTV recomputes the loan-level LTV. With an existing mortgage
// it uses the refinance framing; otherwise it derives an implied
// purchase-side LTV capped at 80, and only when the numerator is positive.
func computeDesiredLTV(purchasePrice, rehabCost, marketValue, mortgageBalance float64) int {
	if marketValue > 0 && mortgageBalance > 0 {
		return int(math.Round(mortgageBalance / marketValue * 100))
	}
	if marketValue > 0 {
		numerator := purchasePrice + rehabCost - mortgageBalance
		if numerator > 0 {
			ltv := int(math.Round(numerator / marketValue * 100))
			if ltv > 80 {
				ltv = 80
			}
			return ltv
		}
	}
	return 0
}
