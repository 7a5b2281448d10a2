package parsers

import (
	"io"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
)

// Parser defines the interface for turning an uploaded file into property
// records. Implementations live in per-source subpackages.
type Parser interface {
	Parse(file io.Reader) ([]models.PropertyRecord, error)
}
