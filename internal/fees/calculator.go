// Package fees implements the monthly preschool fee rules (maxtaxa): a share
// of the family income picked by birth order, reduced for kids with free
// 15-hour weeks and for parents at home, plus the municipal subsidy per kid.
//
// Every date-dependent function takes the reference date explicitly.
package fees

import (
	"math"
	"time"

	"preschoolfees/internal/models"
)

const (
	freeWeekFactor     = 0.7
	parentAtHomeFactor = 0.6
	maximumFeePercent  = 0.03
)

// Calculator computes fees and subsidies. Configuration values are read
// through the Lookup on every call, falling back to built-in constants.
type Calculator struct {
	settings Lookup
}

// NewCalculator creates a calculator reading configuration from settings,
// which may be nil to always use the fallbacks
func NewCalculator(settings Lookup) *Calculator {
	return &Calculator{settings: settings}
}

// MaximumIncome is the income cap the fee is based on
func (c *Calculator) MaximumIncome() int {
	return c.lookupInt(KeyMaximumIncome, FallbackMaximumIncome)
}

// DefaultIncome applies to families that have not reported an income
func (c *Calculator) DefaultIncome() int {
	return c.MaximumIncome()
}

// MaximumFee is the highest fee a single kid can be charged
func (c *Calculator) MaximumFee() float64 {
	return float64(c.MaximumIncome()) * maximumFeePercent
}

func (c *Calculator) SubsidyForYounger() float64 {
	return c.lookupFloat(KeySubsidyForYounger, FallbackSubsidyForYounger)
}

func (c *Calculator) SubsidyForOlder() float64 {
	return c.lookupFloat(KeySubsidyForOlder, FallbackSubsidyForOlder)
}

// RelevantIncome is the family income, or the default, capped at the maximum
func (c *Calculator) RelevantIncome(family *models.Family) int {
	income := c.DefaultIncome()
	if family.Income != nil {
		income = *family.Income
	}
	return min(income, c.MaximumIncome())
}

// BasePercent maps a birth order to its fee tier
func BasePercent(birthOrder int) float64 {
	switch birthOrder {
	case 1:
		return 0.03
	case 2:
		return 0.02
	case 3:
		return 0.01
	default:
		return 0
	}
}

// FeePercent is the share of the relevant income charged for the kid. A kid
// without a rank among its active siblings is charged as the first child.
func (c *Calculator) FeePercent(household *models.Household, kid *models.Kid, on time.Time) float64 {
	rank := 1
	if household != nil {
		if r, ok := household.BirthOrder(kid.ID, on); ok {
			rank = r
		}
	}
	percent := BasePercent(rank)
	if kid.FreeFifteenHourWeek(on) {
		percent *= freeWeekFactor
	}
	return round(percent, 3)
}

// Fee is the kid's monthly fee, rounded to two decimals. Kids that are
// inactive, have no family or have no readable date of birth pay nothing.
func (c *Calculator) Fee(household *models.Household, kid *models.Kid, on time.Time) float64 {
	if household == nil || !kid.HasFamily() || !kid.IsActive(on) {
		return 0
	}
	if _, ok := kid.DateOfBirth(); !ok {
		return 0
	}

	fee := c.FeePercent(household, kid, on) * float64(c.RelevantIncome(&household.Family))
	if household.Family.ParentAtHome {
		if kid.FreeFifteenHourWeek(on) {
			fee = 0
		} else {
			fee *= parentAtHomeFactor
		}
	}
	return round(fee, 2)
}

// TotalFee sums the fees of the household's active kids, rounded to whole kronor
func (c *Calculator) TotalFee(household *models.Household, on time.Time) float64 {
	var total float64
	for _, kid := range household.ActiveKids(on) {
		total += c.Fee(household, &kid, on)
	}
	return round(total, 0)
}

// HasNonzeroFee reports whether the household pays anything on the given date
func (c *Calculator) HasNonzeroFee(household *models.Household, on time.Time) bool {
	return c.TotalFee(household, on) > 0
}

// WithNonzeroFee keeps the households that pay a fee on the given date
func (c *Calculator) WithNonzeroFee(households []models.Household, on time.Time) []models.Household {
	var paying []models.Household
	for i := range households {
		if c.HasNonzeroFee(&households[i], on) {
			paying = append(paying, households[i])
		}
	}
	return paying
}

// IsSubsidyYoung reports whether the kid falls in the younger subsidy band
func IsSubsidyYoung(kid *models.Kid, on time.Time) (young bool, ok bool) {
	age, ok := kid.SubsidyAge(on)
	if !ok {
		return false, false
	}
	return age <= 3, true
}

// Subsidy is the municipal subsidy for the kid. ok is false when the kid's
// age is unknown.
func (c *Calculator) Subsidy(kid *models.Kid, on time.Time) (amount float64, ok bool) {
	young, ok := IsSubsidyYoung(kid, on)
	if !ok {
		return 0, false
	}
	if young {
		return c.SubsidyForYounger(), true
	}
	return c.SubsidyForOlder(), true
}

// SubsidiesTotal sums the subsidy of every kid active on the given date
func (c *Calculator) SubsidiesTotal(kids []models.Kid, on time.Time) float64 {
	var total float64
	for _, kid := range models.ActiveKids(kids, on) {
		if amount, ok := c.Subsidy(&kid, on); ok {
			total += amount
		}
	}
	return total
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
