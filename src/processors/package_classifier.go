package processors

import (
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/models"
	"github.com/google/uuid"
)

// PackageClassifier partitions a portfolio into package groups by applying
// an ordered list of exclusion rules, then splitting whatever remains by
// condo warrantability. It is a pure function of its input: no validation,
// no mutation, and input order is preserved inside every group.
type PackageClassifier struct{}

func NewPackageClassifier() *PackageClassifier {
	return &PackageClassifier{}
}

// exclusionRule claims properties ahead of the final condo split. Rule order
// is a tie-break policy: a property matching several rules lands in the
// first one listed.
type exclusionRule struct {
	name      string
	rationale string
	colorTag  string
	matches   func(models.PropertyRecord) bool
}

var exclusionRules = []exclusionRule{
	{
		name:      "High Unit Count Properties (5+ Units)",
		rationale: "Properties with more than 5 units cannot be included in package loans.",
		colorTag:  "red",
		matches: func(p models.PropertyRecord) bool {
			// Threshold is strictly greater than 5: a 5-unit property stays out.
			return p.UnitCount > 5
		},
	},
	{
		name:      "Rural Properties",
		rationale: "Rural properties require separate packaging due to note buyer restrictions.",
		colorTag:  "amber",
		matches: func(p models.PropertyRecord) bool {
			return p.Rural
		},
	},
	{
		name:      "Short-Term Rentals",
		rationale: "Short-term rental properties need specialized loan programs.",
		colorTag:  "purple",
		matches: func(p models.PropertyRecord) bool {
			return p.IsShortTermRental()
		},
	},
}

const (
	nonWarrantableGroupName      = "Non-Warrantable Condos Package"
	nonWarrantableGroupRationale = "Non-warrantable condos must be packaged separately unless all properties in the package are non-warrantable condos."
	standardGroupName            = "Standard Package"
	standardGroupRationale       = "Standard investment properties that can be packaged together."
)

// Classify runs the fixed rule set over the input portfolio. Empty input
// yields empty output. Each input property appears in exactly one group.
func (c *PackageClassifier) Classify(properties []models.PropertyRecord) []models.PackageGroup {
	var groups []models.PackageGroup
	used := make(map[string]bool, len(properties))

	for _, rule := range exclusionRules {
		var matched []models.PropertyRecord
		for _, p := range properties {
			if used[p.ID] {
				continue
			}
			if rule.matches(p) {
				matched = append(matched, p)
			}
		}
		if len(matched) == 0 {
			continue
		}
		for _, p := range matched {
			used[p.ID] = true
		}
		groups = append(groups, models.PackageGroup{
			ID:         uuid.New().String(),
			Name:       rule.name,
			Properties: matched,
			Rationale:  rule.rationale,
			ColorTag:   rule.colorTag,
		})
	}

	// The final split is exhaustive over the remainder: non-warrantable
	// condos in one group, everything else (warrantable condos, every other
	// structure type, and unrecognized types) in the standard package.
	var nonWarrantable, standard []models.PropertyRecord
	for _, p := range properties {
		if used[p.ID] {
			continue
		}
		if p.IsNonWarrantableCondo() {
			nonWarrantable = append(nonWarrantable, p)
		} else {
			standard = append(standard, p)
		}
	}

	if len(nonWarrantable) > 0 {
		groups = append(groups, models.PackageGroup{
			ID:         uuid.New().String(),
			Name:       nonWarrantableGroupName,
			Properties: nonWarrantable,
			Rationale:  nonWarrantableGroupRationale,
			ColorTag:   "orange",
		})
	}
	if len(standard) > 0 {
		groups = append(groups, models.PackageGroup{
			ID:         uuid.New().String(),
			Name:       standardGroupName,
			Properties: standard,
			Rationale:  standardGroupRationale,
			ColorTag:   "green",
		})
	}

	return groups
}
