// Package lod implements level-of-detail sampling: given the set of records
// inside a viewport and the viewport's span, it decides how many points the
// renderer should draw and picks them uniformly at random without
// replacement. Zoomed out, a few thousand points convey galactic structure;
// zoomed in, every system in view is shown.
package lod

import (
	"github.com/edatlas/galaxymap/pkg/config"
	"github.com/edatlas/galaxymap/pkg/errors"
)

// BudgetTable maps viewport spans to point budgets. Tiers are ordered by
// descending span threshold; the first tier whose threshold the span exceeds
// applies. A span below every threshold means full fidelity.
type BudgetTable struct {
	tiers []config.BudgetTier
}

// NewBudgetTable validates tier ordering and builds a lookup table.
func NewBudgetTable(tiers []config.BudgetTier) (*BudgetTable, error) {
	if len(tiers) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "budget table requires at least one tier")
	}
	prev := 0.0
	for i, tier := range tiers {
		if tier.SpanAbove <= 0 || tier.MaxPoints <= 0 {
			return nil, errors.Newf(errors.ErrorTypeConfig, "tier %d has non-positive values", i)
		}
		if i > 0 && tier.SpanAbove >= prev {
			return nil, errors.New(errors.ErrorTypeConfig, "tiers must be ordered by descending span")
		}
		prev = tier.SpanAbove
	}
	return &BudgetTable{tiers: tiers}, nil
}

// BudgetFor returns the point budget for a viewport span. ok is false when
// no tier applies and the caller should render at full fidelity.
func (bt *BudgetTable) BudgetFor(span float64) (budget int, ok bool) {
	for _, tier := range bt.tiers {
		if span > tier.SpanAbove {
			return tier.MaxPoints, true
		}
	}
	return 0, false
}
