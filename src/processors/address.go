package processors

import (
	"regexp"
	"strconv"
	"strings"
)

// parsedAddress is the street/city/state/zip breakdown of a US-style
// "street, city, ST zip" address. International and non-standard formats are
// not handled; fields that cannot be determined stay blank.
type parsedAddress struct {
	Street string
	City   string
	State  string
	Zip    string
}

var (
	leadingNumberRe = regexp.MustCompile(`^\s*(\d+)`)
	stateZipRe      = regexp.MustCompile(`\b([A-Z]{2})\b\s*(\d{5})?`)
)

// leadingStreetNumber extracts the street number an address begins with.
// Addresses with no leading number sort last, so they report an effectively
// infinite key.
func leadingStreetNumber(address string) int {
	m := leadingNumberRe.FindStringSubmatch(address)
	if m == nil {
		return int(^uint(0) >> 1) // max int
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// splitAddress applies the comma-delimited heuristic: three or more parts
// are street / city / "ST zip", two parts are street / "ST zip" with no
// city, anything else is all street.
func splitAddress(address string) parsedAddress {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var parsed parsedAddress
	switch {
	case len(parts) >= 3:
		parsed.Street = parts[0]
		parsed.City = parts[1]
		parsed.State, parsed.Zip = splitStateZip(parts[2])
	case len(parts) == 2:
		parsed.Street = parts[0]
		parsed.State, parsed.Zip = splitStateZip(parts[1])
	default:
		parsed.Street = strings.TrimSpace(address)
	}
	return parsed
}

func splitStateZip(segment string) (state, zip string) {
	m := stateZipRe.FindStringSubmatch(segment)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}
