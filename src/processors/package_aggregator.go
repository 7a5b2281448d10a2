package processors

import (
	"math"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

// PackageAggregator computes financial rollups for one package group or the
// union of several selected groups. Deterministic and side-effect free.
type PackageAggregator struct{}

func NewPackageAggregator() *PackageAggregator {
	return &PackageAggregator{}
}

// Aggregate unions the groups' properties by id and sums portfolio value,
// mortgage balance, and annual carrying costs. LTV is 0 when the portfolio
// value is 0.
func (a *PackageAggregator) Aggregate(groups ...models.PackageGroup) models.AggregateFinancials {
	seen := make(map[string]bool)
	var totalValue, totalMortgage, annualCosts float64

	for _, group := range groups {
		for _, p := range group.Properties {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			totalValue += p.MarketValue
			totalMortgage += p.MortgageBalance
			annualCosts += p.AnnualTaxes + p.AnnualHazard + p.AnnualFlood + p.AnnualHOA
		}
	}

	ltv := 0
	if totalValue > 0 {
		ltv = int(math.Round(totalMortgage / totalValue * 100))
	}

	return models.AggregateFinancials{
		TotalPortfolioValue:  totalValue,
		TotalMortgageBalance: totalMortgage,
		LTVPercent:           ltv,
		MonthlyCarryingCost:  int(math.Round(annualCosts / 12)),
	}
}

// ValidateProperties is the pre-classification gate: every property needs a
// non-empty address, a structure type, and a market value above 0. Returns
// the count of properties failing the gate; classification is refused
// upstream when the count is non-zero.
func (a *PackageAggregator) ValidateProperties(properties []models.PropertyRecord) int {
	invalid := 0
	for _, p := range properties {
		if p.Address == "" || p.StructureType == "" || p.MarketValue <= 0 {
			invalid++
		}
	}
	return invalid
}
