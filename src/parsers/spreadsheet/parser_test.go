package spreadsheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

func TestParse_TypicalSheet(t *testing.T) {
	csvData := strings.Join([]string{
		"Full Property Address,Property Type,Units,Market Value,Existing Mortgage Balance,Monthly Market Rent,Rural,Rental Strategy,Credit Score",
		`"100 Main St, Springfield, IL 62701",SFR,1,"$250,000","$150,000","$1,800",no,long-term,720`,
		`"200 Oak Ave, Springfield, IL 62704",Condo,,180000,,1200,No,Airbnb,`,
	}, "\n")

	parser := NewParser()
	properties, err := parser.Parse(strings.NewReader(csvData))

	assert.NoError(t, err)
	assert.Len(t, properties, 2)

	first := properties[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "100 Main St, Springfield, IL 62701", first.Address)
	assert.Equal(t, models.StructureSingleFamily, first.StructureType)
	assert.Equal(t, 1, first.UnitCount)
	assert.Equal(t, 250000.0, first.MarketValue)
	assert.Equal(t, 150000.0, first.MortgageBalance)
	assert.Equal(t, "$1,800", first.MarketRent)
	assert.False(t, first.Rural)
	assert.Equal(t, 720, first.CreditScore)
	assert.Equal(t, models.PurposePurchase, first.LoanPurpose)

	second := properties[1]
	assert.Equal(t, models.StructureCondo, second.StructureType)
	assert.Equal(t, 0, second.UnitCount)
	assert.Equal(t, 0.0, second.MortgageBalance)
	assert.True(t, second.IsShortTermRental())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestParse_SkipsEmptyRows(t *testing.T) {
	csvData := strings.Join([]string{
		"Address,Market Value",
		"100 Main St,250000",
		",",
		"200 Oak Ave,180000",
	}, "\n")

	parser := NewParser()
	properties, err := parser.Parse(strings.NewReader(csvData))

	assert.NoError(t, err)
	assert.Len(t, properties, 2)
}

func TestParse_IgnoresUnknownColumns(t *testing.T) {
	csvData := strings.Join([]string{
		"Address,Internal Reference,Market Value",
		"100 Main St,XYZ-1,250000",
	}, "\n")

	parser := NewParser()
	properties, err := parser.Parse(strings.NewReader(csvData))

	assert.NoError(t, err)
	assert.Len(t, properties, 1)
	assert.Equal(t, "100 Main St", properties[0].Address)
	assert.Equal(t, 250000.0, properties[0].MarketValue)
}

func TestParse_NoRecognizedColumns(t *testing.T) {
	parser := NewParser()
	_, err := parser.Parse(strings.NewReader("Foo,Bar\n1,2\n"))
	assert.Error(t, err)
}

func TestParse_EmptyFile(t *testing.T) {
	parser := NewParser()
	_, err := parser.Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseStructureType(t *testing.T) {
	assert.Equal(t, models.StructureSingleFamily, parseStructureType("Single Family"))
	assert.Equal(t, models.StructureSingleFamily, parseStructureType("SFR"))
	assert.Equal(t, models.StructureTownhome, parseStructureType("townhouse"))
	assert.Equal(t, models.StructureCondo, parseStructureType("Condominium"))
	assert.Equal(t, models.StructureMultiFamily, parseStructureType("Multi-Family"))
	assert.Equal(t, models.StructureDuplex, parseStructureType("Duplex"))

	// Unrecognized values pass through for the classifier's standard bucket.
	assert.Equal(t, models.StructureType("Mixed-Use"), parseStructureType("Mixed-Use"))
}

func TestParseWarrantability(t *testing.T) {
	assert.Equal(t, models.WarrantableYes, parseWarrantability("Yes"))
	assert.Equal(t, models.WarrantableNo, parseWarrantability("no"))
	assert.Equal(t, models.NonWarrantable, parseWarrantability("Non-Warrantable"))
	assert.Equal(t, models.Warrantability(""), parseWarrantability("maybe"))
}

func TestParseLoanPurpose_DefaultsToPurchase(t *testing.T) {
	assert.Equal(t, models.PurposePurchase, parseLoanPurpose(""))
	assert.Equal(t, models.PurposeRefinance, parseLoanPurpose("Rate/Term"))
	assert.Equal(t, models.PurposeCashOutRefi, parseLoanPurpose("Cash-Out"))
}
