package processors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

func TestBuild_SpringfieldScenario(t *testing.T) {
	mapper := NewApplicationMapper()

	primary := testProperty("100 Main St, Springfield, IL 62701", models.StructureSingleFamily)
	primary.PurchasePrice = 200000
	primary.RehabCost = 25000
	primary.CreditScore = 720
	primary.MarketRent = "$1,800"
	other := testProperty("450 Oak Ave, Springfield, IL 62704", models.StructureSingleFamily)
	other.PurchasePrice = 150000
	other.CreditScore = 695
	other.MarketRent = "1200"

	app := mapper.Build([]models.PackageGroup{
		{ID: "g1", Properties: []models.PropertyRecord{other, primary}},
	})

	// Lowest leading street number wins the primary slot.
	assert.Equal(t, "100 Main St", app.Address)
	assert.Equal(t, "Springfield", app.City)
	assert.Equal(t, "IL", app.State)
	assert.Equal(t, "62701", app.ZipCode)

	assert.Equal(t, 2, app.NumberOfProperties)
	assert.True(t, app.CrossCollateralized)
	assert.Equal(t, 695, app.DecisionCreditScore)
	assert.Equal(t, 3000.0, app.MarketRent)
	assert.Equal(t, "Single Family", app.PropertyType)
	assert.Equal(t, "Average", app.PropertyCondition)

	// No mortgage balance: purchase-side LTV, (200k+25k+150k)/500k = 75.
	assert.Equal(t, 75, app.DesiredLTV)
}

func TestBuild_OutOfStateExclusion(t *testing.T) {
	mapper := NewApplicationMapper()

	inState := testProperty("100 Main St, Springfield, IL 62701", models.StructureSingleFamily)
	inState.MarketValue = 250000
	outOfState := testProperty("200 Elm St, St Louis, MO 63101", models.StructureSingleFamily)
	outOfState.MarketValue = 400000

	app := mapper.Build([]models.PackageGroup{
		{ID: "g1", Properties: []models.PropertyRecord{inState, outOfState}},
	})

	assert.Equal(t, "IL", app.State)
	assert.Equal(t, 1, app.NumberOfProperties)
	assert.False(t, app.CrossCollateralized)
}

func TestBuild_CreditScoreFallsBackToUnion(t *testing.T) {
	mapper := NewApplicationMapper()

	// Primary state property reports no score; the out-of-state one does.
	inState := testProperty("100 Main St, Springfield, IL 62701", models.StructureSingleFamily)
	outOfState := testProperty("200 Elm St, St Louis, MO 63101", models.StructureSingleFamily)
	outOfState.CreditScore = 680

	app := mapper.Build([]models.PackageGroup{
		{ID: "g1", Properties: []models.PropertyRecord{inState, outOfState}},
	})

	assert.Equal(t, 680, app.DecisionCreditScore)
}

func TestBuild_RefinanceFields(t *testing.T) {
	mapper := NewApplicationMapper()

	p := testProperty("100 Main St, Springfield, IL 62701", models.StructureSingleFamily)
	p.LoanPurpose = models.PurposeCashOutRefi
	p.MarketValue = 500000
	p.MortgageBalance = 300000
	p.PurchaseDate = "2019-06-15"

	app := mapper.Build([]models.PackageGroup{
		{ID: "g1", Properties: []models.PropertyRecord{p}},
	})

	assert.Equal(t, string(models.PurposeCashOutRefi), app.LoanPurpose)
	assert.Equal(t, "Cash-Out", app.RefinanceType)
	assert.True(t, app.HasMortgage)
	assert.Equal(t, 300000.0, app.MortgagePayoff)
	assert.Equal(t, "2019-06-15", app.DatePurchased)
	assert.Equal(t, 60, app.DesiredLTV) // 300k / 500k
}

func TestBuild_PurchaseOmitsRefinanceFields(t *testing.T) {
	mapper := NewApplicationMapper()

	p := testProperty("100 Main St, Springfield, IL 62701", models.StructureSingleFamily)
	p.LoanPurpose = models.PurposePurchase

	app := mapper.Build([]models.PackageGroup{
		{ID: "g1", Properties: []models.PropertyRecord{p}},
	})

	assert.Empty(t, app.RefinanceType)
	assert.Empty(t, app.DatePurchased)
	assert.False(t, app.HasMortgage)
}

func TestBuild_DesiredLTVCappedAt80(t *testing.T) {
	mapper := NewApplicationMapper()

	p := testProperty("100 Main St, Springfield, IL 62701", models.StructureSingleFamily)
	p.MarketValue = 100000
	p.PurchasePrice = 95000

	app := mapper.Build([]models.PackageGroup{
		{ID: "g1", Properties: []models.PropertyRecord{p}},
	})

	assert.Equal(t, 80, app.DesiredLTV)
}

func TestBuild_UnitCountDefaultsToOnePerProperty(t *testing.T) {
	mapper := NewApplicationMapper()

	reported := testProperty("100 Main St, Springfield, IL 62701", models.StructureDuplex)
	reported.UnitCount = 2
	unreported := testProperty("200 Oak Ave, Springfield, IL 62704", models.StructureSingleFamily)

	app := mapper.Build([]models.PackageGroup{
		{ID: "g1", Properties: []models.PropertyRecord{reported, unreported}},
	})

	assert.Equal(t, 3, app.NumberOfUnits)
}

func TestBuild_Idempotent(t *testing.T) {
	mapper := NewApplicationMapper()

	a := testProperty("100 Main St, Springfield, IL 62701", models.StructureSingleFamily)
	a.MarketValue = 300000
	a.CreditScore = 710
	b := testProperty("450 Oak Ave, Springfield, IL 62704", models.StructureTownhome)
	b.MarketValue = 200000

	groups := []models.PackageGroup{{ID: "g1", Properties: []models.PropertyRecord{a, b}}}

	first := mapper.Build(groups)
	second := mapper.Build(groups)
	assert.Equal(t, first, second)
}

func TestBuild_EmptyGroups(t *testing.T) {
	mapper := NewApplicationMapper()
	app := mapper.Build(nil)
	assert.Equal(t, models.LoanApplication{}, app)
}

func TestApplyEnrichment_MergeAndReassert(t *testing.T) {
	mapper := NewApplicationMapper()

	app := models.LoanApplication{
		LoanPurpose:        "Purchase",
		NumberOfProperties: 3,
		DesiredLTV:         75,
		EntityName:         "Original LLC",
	}

	enrichment := map[string]json.RawMessage{
		"entity_name":          json.RawMessage(`"Enriched Holdings LLC"`),
		"number_of_properties": json.RawMessage(`99`),
		"desired_ltv":          json.RawMessage(`10`),
		"annual_taxes":         json.RawMessage(`4800`),
	}

	merged, err := mapper.ApplyEnrichment(app, enrichment)
	assert.NoError(t, err)

	assert.Equal(t, "Enriched Holdings LLC", merged.EntityName)
	assert.Equal(t, 4800.0, merged.AnnualTaxes)

	// Locally computed fields win over enrichment.
	assert.Equal(t, 3, merged.NumberOfProperties)
	assert.Equal(t, 75, merged.DesiredLTV)
}

func TestApplyEnrichment_EmptyPayloadIsNoop(t *testing.T) {
	mapper := NewApplicationMapper()

	app := models.LoanApplication{LoanPurpose: "Purchase", NumberOfProperties: 2}
	merged, err := mapper.ApplyEnrichment(app, nil)
	assert.NoError(t, err)
	assert.Equal(t, app, merged)
}

func TestLeadingStreetNumber(t *testing.T) {
	assert.Equal(t, 100, leadingStreetNumber("100 Main St, Springfield, IL 62701"))
	assert.Equal(t, 7, leadingStreetNumber("  7 Oak Ave"))

	// No leading number sorts last.
	noNumber := leadingStreetNumber("Rural Route 2, Plainville, KS 67663")
	assert.Greater(t, noNumber, 1000000)
}

func TestSplitAddress(t *testing.T) {
	full := splitAddress("100 Main St, Springfield, IL 62701")
	assert.Equal(t, parsedAddress{Street: "100 Main St", City: "Springfield", State: "IL", Zip: "62701"}, full)

	twoPart := splitAddress("100 Main St, IL 62701")
	assert.Equal(t, parsedAddress{Street: "100 Main St", State: "IL", Zip: "62701"}, twoPart)

	noZip := splitAddress("100 Main St, Springfield, IL")
	assert.Equal(t, "IL", noZip.State)
	assert.Empty(t, noZip.Zip)

	bare := splitAddress("100 Main St")
	assert.Equal(t, parsedAddress{Street: "100 Main St"}, bare)
}
