package processors

import (
	"encoding/json"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

// Classifier defines the interface for partitioning a portfolio of
// properties into loan-eligible package groups.
type Classifier interface {
	Classify(properties []models.PropertyRecord) []models.PackageGroup
}

// Aggregator defines the interface for computing financial rollups over
// package groups, plus the pre-classification data gate.
type Aggregator interface {
	Aggregate(groups ...models.PackageGroup) models.AggregateFinancials
	ValidateProperties(properties []models.PropertyRecord) int
}

// Mapper defines the interface for flattening selected package groups into
// the normalized loan application the pricing API consumes.
type Mapper interface {
	Build(groups []models.PackageGroup) models.LoanApplication
	ApplyEnrichment(app models.LoanApplication, enrichment map[string]json.RawMessage) (models.LoanApplication, error)
}
