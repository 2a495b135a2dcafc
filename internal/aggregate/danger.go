// Package aggregate derives chart tables and summaries from the historical
// rent/crime dataset. All functions are pure: they filter, group, and reduce
// over an input slice without mutating it, so identical inputs always produce
// identical outputs.
package aggregate

import "github.com/cityscope/api/internal/models"

// WeightedCrime computes the severity-weighted incident count for one
// precinct-month aggregate (felony=3, misdemeanor=2, violation=1).
func WeightedCrime(felony, misdemeanor, violation int) int {
	return models.WeightFelony*felony +
		models.WeightMisdemeanor*misdemeanor +
		models.WeightViolation*violation
}

// DangerRatio computes weighted crime divided by median rent for one
// precinct-month aggregate. The ratio is undefined (nil) when the rent is
// missing, zero, or negative.
func DangerRatio(felony, misdemeanor, violation int, medianRent *float64) *float64 {
	if medianRent == nil || *medianRent <= 0 {
		return nil
	}
	ratio := float64(WeightedCrime(felony, misdemeanor, violation)) / *medianRent
	return &ratio
}
