package models

import (
	"strconv"
	"strings"
	"time"
)

// StructureType is the physical structure classification of a property.
type StructureType string

const (
	StructureSingleFamily StructureType = "SingleFamily"
	StructureTownhome     StructureType = "Townhome"
	StructureCondo        StructureType = "Condo"
	StructureMultiFamily  StructureType = "MultiFamily"
	StructureDuplex       StructureType = "Duplex"
)

// DisplayName maps a structure type to the vocabulary the pricing API expects.
// Duplex has no mapping and passes through unchanged.
func (s StructureType) DisplayName() string {
	switch s {
	case StructureSingleFamily:
		return "Single Family"
	case StructureTownhome:
		return "Townhouse"
	case StructureCondo:
		return "Condominium"
	case StructureMultiFamily:
		return "Multifamily"
	default:
		return string(s)
	}
}

// Warrantability is only meaningful when the structure type is Condo.
type Warrantability string

const (
	WarrantableYes Warrantability = "Yes"
	WarrantableNo  Warrantability = "No"
	NonWarrantable Warrantability = "NonWarrantable"
)

type LoanPurpose string

const (
	PurposePurchase        LoanPurpose = "Purchase"
	PurposeRefinance       LoanPurpose = "Refinance"
	PurposeCashOutRefi     LoanPurpose = "CashOutRefinance"
)

type OccupancyStatus string

const (
	OccupancyLeased        OccupancyStatus = "Leased"
	OccupancyVacant        OccupancyStatus = "Vacant"
	OccupancyOwnerOccupied OccupancyStatus = "OwnerOccupied"
)

// PropertyRecord is one real-estate asset under consideration. Records are
// created from form rows, spreadsheet import, or the extraction webhook, and
// are never mutated by the classification pipeline.
type PropertyRecord struct {
	ID              string          `json:"id"`
	Address         string          `json:"address"`
	County          string          `json:"county"`
	StructureType   StructureType   `json:"structure_type"`
	UnitCount       int             `json:"unit_count,omitempty"` // 0 means not reported
	Warrantability  Warrantability  `json:"warrantability,omitempty"`
	Rural           bool            `json:"rural"`
	CreditScore     int             `json:"credit_score,omitempty"` // 0 means not reported
	LoanPurpose     LoanPurpose     `json:"loan_purpose"`
	PurchaseDate    string          `json:"purchase_date,omitempty"` // YYYY-MM-DD, empty when not reported
	PurchasePrice   float64         `json:"purchase_price"`
	RehabCost       float64         `json:"rehab_cost"`
	MarketValue     float64         `json:"market_value"`
	MortgageBalance float64         `json:"mortgage_balance"`
	MortgageRate    float64         `json:"mortgage_rate"`
	Occupancy       OccupancyStatus `json:"occupancy"`
	MarketRent      string          `json:"market_rent"`  // monetary string, parsed on use
	LeaseAmount     string          `json:"lease_amount"` // monetary string, parsed on use
	AnnualTaxes     float64         `json:"annual_taxes"`
	AnnualHazard    float64         `json:"annual_hazard_insurance"`
	AnnualFlood     float64         `json:"annual_flood_insurance"`
	AnnualHOA       float64         `json:"annual_hoa_fees"`
	RentalStrategy  string          `json:"rental_strategy"`
	EntityName      string          `json:"entity_name"`
	Notes           string          `json:"notes"`
}

// IsShortTermRental reports whether the free-text rental strategy indicates
// short-term-rental intent.
func (p PropertyRecord) IsShortTermRental() bool {
	strategy := strings.ToLower(p.RentalStrategy)
	for _, kw := range []string{"airbnb", "short", "str"} {
		if strings.Contains(strategy, kw) {
			return true
		}
	}
	return false
}

// IsNonWarrantableCondo reports whether the property is a condo that fails
// secondary-market warrantability.
func (p PropertyRecord) IsNonWarrantableCondo() bool {
	return p.StructureType == StructureCondo &&
		(p.Warrantability == NonWarrantable || p.Warrantability == WarrantableNo)
}

// MonthlyRent returns the market rent when present, falling back to the
// in-place lease amount.
func (p PropertyRecord) MonthlyRent() float64 {
	if rent := ParseMoney(p.MarketRent); rent > 0 {
		return rent
	}
	return ParseMoney(p.LeaseAmount)
}

// ParsedPurchaseDate returns the purchase date, or a zero time when absent or
// unparseable.
func (p PropertyRecord) ParsedPurchaseDate() time.Time {
	if p.PurchaseDate == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", p.PurchaseDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseMoney parses a user-entered monetary string ("$1,250.00", "1250") into
// a float64. Negative or unparseable input yields 0.
func ParseMoney(s string) float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
