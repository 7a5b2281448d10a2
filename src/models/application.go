package models

import "encoding/json"

// LoanApplication is the flat, normalized record the external pricing API
// consumes. Field names are fixed by that collaborator's contract.
type LoanApplication struct {
	LoanPurpose          string  `json:"loan_purpose"`
	DecisionCreditScore  int     `json:"decision_credit_score"`
	NumberOfProperties   int     `json:"number_of_properties"`
	CrossCollateralized  bool    `json:"crossed"`
	Address              string  `json:"address"`
	City                 string  `json:"city"`
	State                string  `json:"state"`
	ZipCode              string  `json:"zip_code"`
	County               string  `json:"county"`
	PropertyType         string  `json:"property_type"`
	PropertyCondition    string  `json:"property_condition"`
	NumberOfUnits        int     `json:"number_of_units"`
	MarketRent           float64 `json:"market_rent"`
	AnnualTaxes          float64 `json:"annual_taxes"`
	AnnualInsurance      float64 `json:"annual_insurance"`
	AnnualAssociationFee float64 `json:"annual_association_fees"`
	AnnualFloodInsurance float64 `json:"annual_flood_insurance"`
	PurchasePrice        float64 `json:"purchase_price"`
	RehabCost            float64 `json:"rehab_cost"`
	DesiredLTV           int     `json:"desired_ltv"`
	EntityName           string  `json:"entity_name,omitempty"`

	// Refinance-only fields.
	RefinanceType  string  `json:"refinance_type,omitempty"`
	MortgagePayoff float64 `json:"mortgage_payoff,omitempty"`
	HasMortgage    bool    `json:"has_mortgage,omitempty"`
	DatePurchased  string  `json:"date_purchased,omitempty"`

	// Purchase-only fields.
	HasPurchaseContract       bool   `json:"has_purchase_contract,omitempty"`
	PurchaseContractCloseDate string `json:"purchase_contract_close_date,omitempty"`
}

// NoteBuyerResult is one note buyer's answer: either a quote payload or a
// non-empty flags list explaining why the buyer declined.
type NoteBuyerResult struct {
	Quote json.RawMessage `json:"quote,omitempty"`
	Flags []string        `json:"flags,omitempty"`
}

// PricingResponse is the pricing API's reply to a loan application. The
// top-level flags report application-level disqualifications.
type PricingResponse struct {
	Results map[string]NoteBuyerResult `json:"results"`
	Flags   []string                   `json:"flags,omitempty"`
}
