package graph

import (
	"sort"
	"strings"

	"fitgraph/backend/internal/constants"
)

// Conflicts reports whether a stored constraint rules out a product of the given fit.
// Only the fit class is consulted.
func Conflicts(constraint, fit string) bool {
	return fit == FitSlim && strings.Contains(constraint, constants.BroadMarker)
}

// Evaluate checks a product against a user's constraints. Any conflicting
// constraint blocks; the first one in name order is reported. A missing
// product passes.
func Evaluate(userID, productID string, product *Product, constraints []string) *Verdict {
	if product == nil {
		return newPassVerdict(userID, productID, "")
	}

	sorted := append([]string(nil), constraints...)
	sort.Strings(sorted)

	for _, c := range sorted {
		if Conflicts(c, product.Fit) {
			return newBlockingVerdict(userID, product, c)
		}
	}
	return newPassVerdict(userID, product.ID, product.Name)
}
