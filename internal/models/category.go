package models

import (
	"fmt"
	"sort"
	"strings"
)

// PlaceCategory is one of the fixed nearby-search place types.
type PlaceCategory string

const (
	CategorySupermarket   PlaceCategory = "supermarket"
	CategoryHospital      PlaceCategory = "hospital"
	CategorySubwayStation PlaceCategory = "subway_station"
	CategoryPark          PlaceCategory = "park"
	CategorySchool        PlaceCategory = "school"
	CategoryLibrary       PlaceCategory = "library"
)

// placeColors maps each supported category to its map marker color. This is
// configuration, not a type hierarchy: unknown categories are rejected at the
// boundary instead of dispatching at runtime.
var placeColors = map[PlaceCategory]string{
	CategorySupermarket:   "blue",
	CategoryHospital:      "red",
	CategorySubwayStation: "orange",
	CategoryPark:          "green",
	CategorySchool:        "purple",
	CategoryLibrary:       "brown",
}

// KnownCategory reports whether the category is part of the fixed vocabulary.
func KnownCategory(c PlaceCategory) bool {
	_, ok := placeColors[c]
	return ok
}

// MarkerColor returns the display color for a known category, or "" otherwise.
func MarkerColor(c PlaceCategory) string {
	return placeColors[c]
}

// PlaceCategories returns the vocabulary in stable (sorted) order.
func PlaceCategories() []PlaceCategory {
	out := make([]PlaceCategory, 0, len(placeColors))
	for c := range placeColors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCategories parses a comma-separated category list, lowercasing and
// deduplicating entries. Unknown names are returned separately so callers can
// surface them as warnings rather than failing the request.
func ParseCategories(raw string) (known []PlaceCategory, unknown []string) {
	seen := make(map[PlaceCategory]bool)
	for _, part := range strings.Split(raw, ",") {
		name := PlaceCategory(strings.ToLower(strings.TrimSpace(part)))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if KnownCategory(name) {
			known = append(known, name)
		} else {
			unknown = append(unknown, string(name))
		}
	}
	return known, unknown
}

// ValidateCategoryTable sanity-checks the vocabulary at startup: every
// category must carry a non-empty color.
func ValidateCategoryTable() error {
	for c, color := range placeColors {
		if color == "" {
			return fmt.Errorf("place category %q has no marker color", c)
		}
	}
	return nil
}
