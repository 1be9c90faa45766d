// Package dedupe flags participant identities that are probably the same
// person entered twice with a misspelled name.
package dedupe

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithCategoryThreshold sets the minimum similarity reported within a category.
func WithCategoryThreshold(t float64) Option {
	return func(c *Checker) {
		if t > 0 && t <= 1 {
			c.categoryThreshold = t
		}
	}
}

// WithRosterThreshold sets the minimum similarity reported across seasons.
func WithRosterThreshold(t float64) Option {
	return func(c *Checker) {
		if t > 0 && t <= 1 {
			c.rosterThreshold = t
		}
	}
}

// WithMaxYearGap sets the largest birth-year difference of a reported pair.
func WithMaxYearGap(years int) Option {
	return func(c *Checker) {
		if years >= 0 {
			c.maxYearGap = years
		}
	}
}

// WithRosterRequiresBirthYears controls whether cross-season pairs with an
// unknown birth year are skipped.
func WithRosterRequiresBirthYears(require bool) Option {
	return func(c *Checker) {
		c.rosterRequiresYears = require
	}
}
