package parsers

import (
	"fmt"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/parsers/spreadsheet"
)

func GetParser(source string) (Parser, error) {
	switch source {
	case "spreadsheet":
		return spreadsheet.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
