package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

func TestAggregate_SumsAndLTV(t *testing.T) {
	aggregator := NewPackageAggregator()

	a := testProperty("1 A St, Boise, ID 83702", models.StructureSingleFamily)
	a.MarketValue = 300000
	a.MortgageBalance = 225000
	a.AnnualTaxes = 3600
	a.AnnualHazard = 1200
	b := testProperty("2 B St, Boise, ID 83702", models.StructureSingleFamily)
	b.MarketValue = 200000
	b.MortgageBalance = 150000
	b.AnnualHOA = 1200

	group := models.PackageGroup{ID: "g1", Properties: []models.PropertyRecord{a, b}}
	fin := aggregator.Aggregate(group)

	assert.Equal(t, 500000.0, fin.TotalPortfolioValue)
	assert.Equal(t, 375000.0, fin.TotalMortgageBalance)
	assert.Equal(t, 75, fin.LTVPercent)
	assert.Equal(t, 500, fin.MonthlyCarryingCost) // 6000 / 12
}

func TestAggregate_ZeroValuePortfolio(t *testing.T) {
	aggregator := NewPackageAggregator()

	p := testProperty("1 A St, Boise, ID 83702", models.StructureSingleFamily)
	p.MarketValue = 0
	p.MortgageBalance = 100000

	fin := aggregator.Aggregate(models.PackageGroup{ID: "g1", Properties: []models.PropertyRecord{p}})

	assert.Equal(t, 0, fin.LTVPercent)
	assert.Equal(t, 100000.0, fin.TotalMortgageBalance)
}

func TestAggregate_UnionsDuplicatesAcrossGroups(t *testing.T) {
	aggregator := NewPackageAggregator()

	shared := testProperty("1 A St, Boise, ID 83702", models.StructureSingleFamily)
	shared.MarketValue = 100000
	only := testProperty("2 B St, Boise, ID 83702", models.StructureSingleFamily)
	only.MarketValue = 50000

	g1 := models.PackageGroup{ID: "g1", Properties: []models.PropertyRecord{shared, only}}
	g2 := models.PackageGroup{ID: "g2", Properties: []models.PropertyRecord{shared}}

	fin := aggregator.Aggregate(g1, g2)

	assert.Equal(t, 150000.0, fin.TotalPortfolioValue)
}

func TestAggregate_NoGroups(t *testing.T) {
	aggregator := NewPackageAggregator()
	fin := aggregator.Aggregate()
	assert.Equal(t, models.AggregateFinancials{}, fin)
}

func TestValidateProperties(t *testing.T) {
	aggregator := NewPackageAggregator()

	valid := testProperty("1 A St, Boise, ID 83702", models.StructureSingleFamily)
	noAddress := testProperty("", models.StructureSingleFamily)
	noType := testProperty("2 B St, Boise, ID 83702", "")
	noValue := testProperty("3 C St, Boise, ID 83702", models.StructureSingleFamily)
	noValue.MarketValue = 0

	invalid := aggregator.ValidateProperties([]models.PropertyRecord{valid, noAddress, noType, noValue})
	assert.Equal(t, 3, invalid)

	assert.Equal(t, 0, aggregator.ValidateProperties([]models.PropertyRecord{valid}))
	assert.Equal(t, 0, aggregator.ValidateProperties(nil))
}
