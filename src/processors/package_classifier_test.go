package processors

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

func testProperty(address string, structureType models.StructureType) models.PropertyRecord {
	return models.PropertyRecord{
		ID:            uuid.New().String(),
		Address:       address,
		StructureType: structureType,
		MarketValue:   250000,
	}
}

func groupByName(t *testing.T, groups []models.PackageGroup, name string) models.PackageGroup {
	t.Helper()
	for _, g := range groups {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("no group named %q in %d groups", name, len(groups))
	return models.PackageGroup{}
}

func TestClassify_EmptyPortfolio(t *testing.T) {
	classifier := NewPackageClassifier()
	groups := classifier.Classify(nil)
	assert.Empty(t, groups)
}

func TestClassify_GroupsAreDisjoint(t *testing.T) {
	classifier := NewPackageClassifier()

	rural := testProperty("1 Farm Rd, Plainville, KS 67663", models.StructureSingleFamily)
	rural.Rural = true
	str := testProperty("2 Beach Ave, Destin, FL 32541", models.StructureSingleFamily)
	str.RentalStrategy = "Airbnb"
	highUnit := testProperty("3 Tower Blvd, Austin, TX 78701", models.StructureMultiFamily)
	highUnit.UnitCount = 8
	standard := testProperty("4 Oak St, Dallas, TX 75201", models.StructureSingleFamily)

	groups := classifier.Classify([]models.PropertyRecord{rural, str, highUnit, standard})

	seen := make(map[string]int)
	total := 0
	for _, g := range groups {
		for _, p := range g.Properties {
			seen[p.ID]++
			total++
		}
	}
	assert.Equal(t, 4, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, "property %s appears in more than one group", id)
	}
}

func TestClassify_UnitCountBoundary(t *testing.T) {
	classifier := NewPackageClassifier()

	five := testProperty("10 First St, Tulsa, OK 74103", models.StructureMultiFamily)
	five.UnitCount = 5
	six := testProperty("12 Second St, Tulsa, OK 74103", models.StructureMultiFamily)
	six.UnitCount = 6

	groups := classifier.Classify([]models.PropertyRecord{five, six})

	highUnit := groupByName(t, groups, "High Unit Count Properties (5+ Units)")
	assert.Len(t, highUnit.Properties, 1)
	assert.Equal(t, six.ID, highUnit.Properties[0].ID)

	standard := groupByName(t, groups, "Standard Package")
	assert.Len(t, standard.Properties, 1)
	assert.Equal(t, five.ID, standard.Properties[0].ID)
}

func TestClassify_RulePriority(t *testing.T) {
	classifier := NewPackageClassifier()

	// Matches all three exclusion rules; the first listed wins.
	p := testProperty("5 Everything Ln, Boise, ID 83702", models.StructureMultiFamily)
	p.UnitCount = 10
	p.Rural = true
	p.RentalStrategy = "short-term"

	groups := classifier.Classify([]models.PropertyRecord{p})

	assert.Len(t, groups, 1)
	assert.Equal(t, "High Unit Count Properties (5+ Units)", groups[0].Name)
	assert.Equal(t, "red", groups[0].ColorTag)
}

func TestClassify_RuralBeforeShortTerm(t *testing.T) {
	classifier := NewPackageClassifier()

	p := testProperty("9 County Rd, Fargo, ND 58102", models.StructureSingleFamily)
	p.Rural = true
	p.RentalStrategy = "STR"

	groups := classifier.Classify([]models.PropertyRecord{p})

	assert.Len(t, groups, 1)
	assert.Equal(t, "Rural Properties", groups[0].Name)
}

func TestClassify_ShortTermKeywords(t *testing.T) {
	classifier := NewPackageClassifier()

	for _, strategy := range []string{"Airbnb", "short-term rental", "STR", "airbnb arbitrage"} {
		p := testProperty("7 Vacation Way, Gatlinburg, TN 37738", models.StructureSingleFamily)
		p.RentalStrategy = strategy
		groups := classifier.Classify([]models.PropertyRecord{p})
		assert.Len(t, groups, 1, "strategy %q", strategy)
		assert.Equal(t, "Short-Term Rentals", groups[0].Name, "strategy %q", strategy)
	}

	longTerm := testProperty("8 Annual Ave, Memphis, TN 38103", models.StructureSingleFamily)
	longTerm.RentalStrategy = "long-term lease"
	groups := classifier.Classify([]models.PropertyRecord{longTerm})
	assert.Len(t, groups, 1)
	assert.Equal(t, "Standard Package", groups[0].Name)
}

func TestClassify_CondoWarrantabilitySplit(t *testing.T) {
	classifier := NewPackageClassifier()

	sfr1 := testProperty("20 Elm St, Denver, CO 80202", models.StructureSingleFamily)
	sfr2 := testProperty("22 Elm St, Denver, CO 80202", models.StructureSingleFamily)
	warrantable := testProperty("24 Condo Ct, Denver, CO 80202", models.StructureCondo)
	warrantable.Warrantability = models.WarrantableYes
	nonWarrantable := testProperty("26 Condo Ct, Denver, CO 80202", models.StructureCondo)
	nonWarrantable.Warrantability = models.NonWarrantable

	groups := classifier.Classify([]models.PropertyRecord{sfr1, sfr2, warrantable, nonWarrantable})

	assert.Len(t, groups, 2)

	nw := groupByName(t, groups, "Non-Warrantable Condos Package")
	assert.Len(t, nw.Properties, 1)
	assert.Equal(t, nonWarrantable.ID, nw.Properties[0].ID)
	assert.Equal(t, "orange", nw.ColorTag)

	standard := groupByName(t, groups, "Standard Package")
	assert.Len(t, standard.Properties, 3)
	assert.Equal(t, "green", standard.ColorTag)
}

func TestClassify_UnrecognizedStructureTypeGoesStandard(t *testing.T) {
	classifier := NewPackageClassifier()

	odd := testProperty("30 Mixed Use Pl, Reno, NV 89501", models.StructureType("Mixed-Use"))

	groups := classifier.Classify([]models.PropertyRecord{odd})

	assert.Len(t, groups, 1)
	assert.Equal(t, "Standard Package", groups[0].Name)
}

func TestClassify_PreservesInputOrderWithinGroups(t *testing.T) {
	classifier := NewPackageClassifier()

	a := testProperty("300 Third St, Omaha, NE 68102", models.StructureSingleFamily)
	b := testProperty("100 First St, Omaha, NE 68102", models.StructureSingleFamily)
	c := testProperty("200 Second St, Omaha, NE 68102", models.StructureSingleFamily)

	groups := classifier.Classify([]models.PropertyRecord{a, b, c})

	standard := groupByName(t, groups, "Standard Package")
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{
		standard.Properties[0].ID,
		standard.Properties[1].ID,
		standard.Properties[2].ID,
	})
}
