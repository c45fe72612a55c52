package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

var foldCaser = cases.Fold()

// Fold normalises free text for matching: trims surrounding space, folds
// case, and collapses full-width/half-width variants. Thai script is left
// untouched by the case fold, which is what substring matching over mixed
// Thai/Latin records needs.
func Fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return foldCaser.String(width.Fold.String(value))
}

// ContainsFold reports whether needle occurs in haystack after both sides
// are folded. An empty needle matches everything; an empty haystack
// matches nothing but never panics.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	if haystack == "" {
		return false
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}

// ContainsFolded is ContainsFold for inputs the caller already folded,
// avoiding repeated folding when one query term is checked against many
// precomputed haystacks.
func ContainsFolded(foldedHaystack, foldedNeedle string) bool {
	if foldedNeedle == "" {
		return true
	}
	if foldedHaystack == "" {
		return false
	}
	return strings.Contains(foldedHaystack, foldedNeedle)
}
