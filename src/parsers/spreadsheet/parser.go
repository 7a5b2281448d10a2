package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"github.com/google/uuid"
)

// Parser reads the bulk-import spreadsheet format: row 1 is headers,
// every subsequent row is one property. Header names are matched against a
// fixed alias table; unmatched headers are ignored and missing numeric cells
// default to zero.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// columnAliases maps normalized header names onto internal field keys.
var columnAliases = map[string]string{
	"full property address": "address",
	"address":               "address",
	"property address":      "address",
	"county":                "county",
	"county name":           "county",
	"property type":         "structure_type",
	"structure type":        "structure_type",
	"type":                  "structure_type",
	"number of units":       "unit_count",
	"unit count":            "unit_count",
	"units":                 "unit_count",
	"warrantable":           "warrantability",
	"condo warrantability":  "warrantability",
	"rural":                 "rural",
	"is rural":              "rural",
	"credit score":          "credit_score",
	"borrower credit score": "credit_score",
	"fico":                  "credit_score",
	"loan purpose":          "loan_purpose",
	"purpose":               "loan_purpose",
	"purchase date":         "purchase_date",
	"date purchased":        "purchase_date",
	"purchase price":        "purchase_price",
	"rehab cost":            "rehab_cost",
	"rehab already spent":   "rehab_cost",
	"market value":          "market_value",
	"current market value":  "market_value",
	"as-is value":           "market_value",
	"mortgage balance":          "mortgage_balance",
	"existing mortgage balance": "mortgage_balance",
	"mortgage payoff":           "mortgage_balance",
	"mortgage rate":         "mortgage_rate",
	"current mortgage rate": "mortgage_rate",
	"occupancy":             "occupancy",
	"occupancy status":      "occupancy",
	"market rent":           "market_rent",
	"monthly market rent":   "market_rent",
	"lease amount":          "lease_amount",
	"in-place lease":        "lease_amount",
	"current lease":         "lease_amount",
	"annual taxes":          "annual_taxes",
	"property taxes":        "annual_taxes",
	"taxes":                 "annual_taxes",
	"hazard insurance":      "annual_hazard",
	"annual insurance":      "annual_hazard",
	"insurance":             "annual_hazard",
	"flood insurance":        "annual_flood",
	"annual flood insurance": "annual_flood",
	"hoa fees":              "annual_hoa",
	"annual hoa":            "annual_hoa",
	"association fees":      "annual_hoa",
	"rental strategy":       "rental_strategy",
	"rental description":    "rental_strategy",
	"strategy":              "rental_strategy",
	"entity name":           "entity_name",
	"entity":                "entity_name",
	"llc name":              "entity_name",
	"notes":                 "notes",
	"comments":              "notes",
}

func (p *Parser) Parse(file io.Reader) ([]models.PropertyRecord, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet header row: %w", err)
	}

	// Column index -> field key, skipping headers we do not recognize.
	fieldByColumn := make(map[int]string, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if field, ok := columnAliases[normalized]; ok {
			fieldByColumn[i] = field
		}
	}
	if len(fieldByColumn) == 0 {
		return nil, fmt.Errorf("no recognized columns in spreadsheet header")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet rows: %w", err)
	}

	var properties []models.PropertyRecord
	for _, row := range records {
		cells := make(map[string]string, len(fieldByColumn))
		empty := true
		for i, field := range fieldByColumn {
			if i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if value != "" {
				empty = false
			}
			cells[field] = value
		}
		if empty {
			continue
		}
		properties = append(properties, buildProperty(cells))
	}

	return properties, nil
}

func buildProperty(cells map[string]string) models.PropertyRecord {
	return models.PropertyRecord{
		ID:              uuid.New().String(),
		Address:         cells["address"],
		County:          cells["county"],
		StructureType:   parseStructureType(cells["structure_type"]),
		UnitCount:       parseIntCell(cells["unit_count"]),
		Warrantability:  parseWarrantability(cells["warrantability"]),
		Rural:           parseBoolCell(cells["rural"]),
		CreditScore:     parseIntCell(cells["credit_score"]),
		LoanPurpose:     parseLoanPurpose(cells["loan_purpose"]),
		PurchaseDate:    cells["purchase_date"],
		PurchasePrice:   models.ParseMoney(cells["purchase_price"]),
		RehabCost:       models.ParseMoney(cells["rehab_cost"]),
		MarketValue:     models.ParseMoney(cells["market_value"]),
		MortgageBalance: models.ParseMoney(cells["mortgage_balance"]),
		MortgageRate:    parseFloatCell(cells["mortgage_rate"]),
		Occupancy:       parseOccupancy(cells["occupancy"]),
		MarketRent:      cells["market_rent"],
		LeaseAmount:     cells["lease_amount"],
		AnnualTaxes:     models.ParseMoney(cells["annual_taxes"]),
		AnnualHazard:    models.ParseMoney(cells["annual_hazard"]),
		AnnualFlood:     models.ParseMoney(cells["annual_flood"]),
		AnnualHOA:       models.ParseMoney(cells["annual_hoa"]),
		RentalStrategy:  cells["rental_strategy"],
		EntityName:      cells["entity_name"],
		Notes:           cells["notes"],
	}
}

func parseStructureType(s string) models.StructureType {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "singlefamily", "sfr", "single-family":
		return models.StructureSingleFamily
	case "townhome", "townhouse":
		return models.StructureTownhome
	case "condo", "condominium":
		return models.StructureCondo
	case "multifamily", "multi-family":
		return models.StructureMultiFamily
	case "duplex":
		return models.StructureDuplex
	default:
		return models.StructureType(strings.TrimSpace(s))
	}
}

func parseWarrantability(s string) models.Warrantability {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "warrantable", "y":
		return models.WarrantableYes
	case "no", "n":
		return models.WarrantableNo
	case "non-warrantable", "nonwarrantable", "non warrantable":
		return models.NonWarrantable
	default:
		return ""
	}
}

func parseLoanPurpose(s string) models.LoanPurpose {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "purchase":
		return models.PurposePurchase
	case "refinance", "rate/term", "rateterm":
		return models.PurposeRefinance
	case "cashoutrefinance", "cash-out", "cashout":
		return models.PurposeCashOutRefi
	default:
		return models.PurposePurchase
	}
}

func parseOccupancy(s string) models.OccupancyStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leased", "tenant occupied":
		return models.OccupancyLeased
	case "owner occupied", "owneroccupied":
		return models.OccupancyOwnerOccupied
	default:
		return models.OccupancyVacant
	}
}

func parseBoolCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}

func parseIntCell(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloatCell(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
