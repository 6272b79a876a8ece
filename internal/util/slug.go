// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// Slugify converts a display name to a URL-safe slug token.
//
// Normalization rules:
//  1. Trim whitespace and lowercase
//  2. Replace spaces and underscores with dashes
//  3. Remove non-alphanumeric characters (except dashes)
//  4. Collapse multiple dashes
//  5. Trim leading/trailing dashes
//
// Examples:
//
//	"Go to market"  → "go-to-market"
//	"Nearest time"  → "nearest-time"
//	"SHOPPING_list" → "shopping-list"
//	"🎉 Party!"     → "party"
//
// Returns "" when nothing survives normalization; the caller decides
// whether that is a validation error.
func Slugify(input string) string {
	// 1. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 2. Replace word separators (spaces, underscores, slashes) with dashes
	s = wordSeparatorRe.ReplaceAllString(s, "-")

	// 3. Remove non-alphanumeric (except dashes)
	s = nonAlphanumericRe.ReplaceAllString(s, "")

	// 4. Collapse multiple dashes
	s = multipleDashRe.ReplaceAllString(s, "-")

	// 5. Trim leading/trailing dashes
	s = strings.Trim(s, "-")

	return s
}

// OwnedSlug derives a per-user slug from a display name by suffixing the
// owner's username. Two users can both name a category "Today" and get
// "today-alice" and "today-bob" without a global slug registry; the store
// still enforces (owner, slug) uniqueness at persistence time.
//
// Returns "" when the name normalizes to nothing.
func OwnedSlug(name, username string) string {
	base := Slugify(name)
	if base == "" {
		return ""
	}
	return base + "-" + strings.ToLower(username)
}
