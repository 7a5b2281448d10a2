package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	assert.Equal(t, 1250.0, ParseMoney("$1,250.00"))
	assert.Equal(t, 1250.0, ParseMoney("1250"))
	assert.Equal(t, 1250.5, ParseMoney(" 1,250.50 "))
	assert.Equal(t, 0.0, ParseMoney(""))
	assert.Equal(t, 0.0, ParseMoney("n/a"))
	assert.Equal(t, 0.0, ParseMoney("-500"))
}

func TestMonthlyRent_FallsBackToLease(t *testing.T) {
	withMarket := PropertyRecord{MarketRent: "$1,800", LeaseAmount: "$1,500"}
	assert.Equal(t, 1800.0, withMarket.MonthlyRent())

	leaseOnly := PropertyRecord{LeaseAmount: "$1,500"}
	assert.Equal(t, 1500.0, leaseOnly.MonthlyRent())

	neither := PropertyRecord{}
	assert.Equal(t, 0.0, neither.MonthlyRent())
}

func TestIsShortTermRental(t *testing.T) {
	assert.True(t, PropertyRecord{RentalStrategy: "Airbnb"}.IsShortTermRental())
	assert.True(t, PropertyRecord{RentalStrategy: "Short-term"}.IsShortTermRental())
	assert.True(t, PropertyRecord{RentalStrategy: "STR portfolio"}.IsShortTermRental())
	assert.False(t, PropertyRecord{RentalStrategy: "long-term lease"}.IsShortTermRental())
	assert.False(t, PropertyRecord{}.IsShortTermRental())
}

func TestIsNonWarrantableCondo(t *testing.T) {
	assert.True(t, PropertyRecord{StructureType: StructureCondo, Warrantability: NonWarrantable}.IsNonWarrantableCondo())
	assert.True(t, PropertyRecord{StructureType: StructureCondo, Warrantability: WarrantableNo}.IsNonWarrantableCondo())
	assert.False(t, PropertyRecord{StructureType: StructureCondo, Warrantability: WarrantableYes}.IsNonWarrantableCondo())
	assert.False(t, PropertyRecord{StructureType: StructureSingleFamily, Warrantability: NonWarrantable}.IsNonWarrantableCondo())
}

func TestStructureTypeDisplayName(t *testing.T) {
	assert.Equal(t, "Single Family", StructureSingleFamily.DisplayName())
	assert.Equal(t, "Townhouse", StructureTownhome.DisplayName())
	assert.Equal(t, "Condominium", StructureCondo.DisplayName())
	assert.Equal(t, "Multifamily", StructureMultiFamily.DisplayName())
	assert.Equal(t, "Duplex", StructureDuplex.DisplayName())
	assert.Equal(t, "Mixed-Use", StructureType("Mixed-Use").DisplayName())
}

func TestSelectionState(t *testing.T) {
	sel := SelectionState{SelectedPackageIDs: []string{"a", "b", "c"}}

	assert.True(t, sel.Contains("b"))
	assert.False(t, sel.Contains("z"))

	pruned := sel.Prune(map[string]bool{"a": true, "c": true})
	assert.Equal(t, []string{"a", "c"}, pruned.SelectedPackageIDs)
	assert.False(t, pruned.Contains("b"))
}
