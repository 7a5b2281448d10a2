package models

// PackageGroup is one loan-eligible grouping produced by a classification run.
// Groups from a single run never share properties; a re-analysis replaces all
// groups wholesale.
type PackageGroup struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Properties []PropertyRecord `json:"properties"` // input order preserved
	Rationale  string           `json:"rationale"`
	ColorTag   string           `json:"color_tag"` // cosmetic only
}

// SelectionState is the operator's choice of which package groups to submit
// to pricing. Order-independent; pruned when a group is deleted.
type SelectionState struct {
	SelectedPackageIDs []string `json:"selected_package_ids"`
}

// Contains reports whether the given group id is selected.
func (s SelectionState) Contains(id string) bool {
	for _, sel := range s.SelectedPackageIDs {
		if sel == id {
			return true
		}
	}
	return false
}

// Prune drops selections that no longer reference an existing group.
func (s SelectionState) Prune(existing map[string]bool) SelectionState {
	kept := make([]string, 0, len(s.SelectedPackageIDs))
	for _, id := range s.SelectedPackageIDs {
		if existing[id] {
			kept = append(kept, id)
		}
	}
	return SelectionState{SelectedPackageIDs: kept}
}

// AggregateFinancials is the derived financial rollup for one package group
// or a union of selected groups. Computed on demand, never stored.
type AggregateFinancials struct {
	TotalPortfolioValue  float64 `json:"total_portfolio_value"`
	TotalMortgageBalance float64 `json:"total_mortgage_balance"`
	LTVPercent           int     `json:"ltv_percent"`
	MonthlyCarryingCost  int     `json:"monthly_carrying_cost"`
}
