package models

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// SSNLength is the length of a complete national ID, e.g. 20080101-1234
const SSNLength = 13

const ssnDateLayout = "20060102"

// Kid represents a child enrolled, or waiting to be enrolled, in preschool
type Kid struct {
	ID        int64
	FamilyID  *int64 // nil for kids without a family
	SSN       string
	FullName  string
	StartDate time.Time
	EndDate   time.Time // zero when unknown
	Pending   bool
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Date truncates t to its calendar day, in UTC
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeSSN completes a date-only national ID with a "-0000" suffix
func NormalizeSSN(ssn string) string {
	ssn = strings.TrimSpace(ssn)
	if len(ssn) == 8 {
		return ssn + "-0000"
	}
	return ssn
}

// Prepare normalizes the SSN and fills in missing enrollment dates. It runs
// before every create and update; today is the date the change is made.
func (k *Kid) Prepare(today time.Time) {
	k.SSN = NormalizeSSN(k.SSN)
	if k.StartDate.IsZero() {
		k.StartDate = Date(today)
	}
	if k.EndDate.IsZero() {
		if end, ok := k.DefaultEndDate(); ok {
			k.EndDate = end
		}
	}
}

// HasFamily reports whether the kid belongs to a family
func (k *Kid) HasFamily() bool {
	return k.FamilyID != nil
}

// DateOfBirth parses the date prefix of the SSN. ok is false when it is malformed.
func (k *Kid) DateOfBirth() (dob time.Time, ok bool) {
	if len(k.SSN) < 8 {
		return time.Time{}, false
	}
	dob, err := time.Parse(ssnDateLayout, k.SSN[:8])
	if err != nil {
		return time.Time{}, false
	}
	return dob, true
}

// DefaultEndDate is July 1st of the year the kid turns six
func (k *Kid) DefaultEndDate() (time.Time, bool) {
	dob, ok := k.DateOfBirth()
	if !ok {
		return time.Time{}, false
	}
	return time.Date(dob.Year()+6, time.July, 1, 0, 0, 0, 0, time.UTC), true
}

// Age is the age the kid reaches by the end of the year of the given date
func (k *Kid) Age(on time.Time) (int, bool) {
	dob, ok := k.DateOfBirth()
	if !ok {
		return 0, false
	}
	return on.Year() - dob.Year(), true
}

// AgeOn is the number of whole years the kid has lived on the given date
func (k *Kid) AgeOn(on time.Time) (int, bool) {
	dob, ok := k.DateOfBirth()
	if !ok {
		return 0, false
	}
	years := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		years--
	}
	return years, true
}

// SubsidyBreakDate is the yearly cutoff (July 1st) used to pick the subsidy band
func SubsidyBreakDate(on time.Time) time.Time {
	return time.Date(on.Year(), time.July, 1, 0, 0, 0, 0, time.UTC)
}

// SubsidyAge is the kid's age on the subsidy break date of the given year
func (k *Kid) SubsidyAge(on time.Time) (int, bool) {
	return k.AgeOn(SubsidyBreakDate(on))
}

// IsBig reports whether the kid turns four or more this year
func (k *Kid) IsBig(on time.Time) bool {
	age, ok := k.Age(on)
	return ok && age >= 4
}

// IsActive reports whether the kid is enrolled on the given date
func (k *Kid) IsActive(on time.Time) bool {
	if k.Pending || k.StartDate.IsZero() || k.EndDate.IsZero() {
		return false
	}
	day := Date(on)
	return !day.Before(Date(k.StartDate)) && !day.After(Date(k.EndDate))
}

// FreeFifteenHourWeek reports eligibility for allmän förskola: the kid turns
// three or more this year, the September after its third birthday has come,
// and it is not August.
func (k *Kid) FreeFifteenHourWeek(on time.Time) bool {
	dob, ok := k.DateOfBirth()
	if !ok {
		return false
	}
	age, _ := k.Age(on)
	september := time.Date(dob.Year()+3, time.September, 1, 0, 0, 0, 0, time.UTC)
	day := Date(on)
	return age >= 3 && !day.Before(september) && day.Month() != time.August
}

// Names splits the full name on whitespace
func (k *Kid) Names() []string {
	return strings.Fields(k.FullName)
}

func (k *Kid) Forename() string {
	names := k.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func (k *Kid) Forenames() string { return forenames(k.FullName) }
func (k *Kid) Surname() string   { return surname(k.FullName) }

// Attributes returns the tracked columns of the kid for change history
func (k *Kid) Attributes() map[string]*string {
	attrs := map[string]*string{
		"ssn":        nullable(k.SSN),
		"full_name":  nullable(k.FullName),
		"start_date": nullable(formatDate(k.StartDate)),
		"end_date":   nullable(formatDate(k.EndDate)),
		"pending":    nullable(strconv.FormatBool(k.Pending)),
		"family_id":  nil,
		"comment":    nullable(k.Comment),
	}
	if k.FamilyID != nil {
		attrs["family_id"] = nullable(strconv.FormatInt(*k.FamilyID, 10))
	}
	return attrs
}

// ByAge returns a copy of kids sorted by SSN descending, youngest first
func ByAge(kids []Kid) []Kid {
	sorted := slices.Clone(kids)
	slices.SortStableFunc(sorted, func(a, b Kid) int {
		return strings.Compare(b.SSN, a.SSN)
	})
	return sorted
}

// ActiveKids keeps the kids that are active on the given date, preserving order
func ActiveKids(kids []Kid, on time.Time) []Kid {
	var active []Kid
	for _, kid := range kids {
		if kid.IsActive(on) {
			active = append(active, kid)
		}
	}
	return active
}

// InactiveKids keeps the kids that are not active on the given date
func InactiveKids(kids []Kid, on time.Time) []Kid {
	var inactive []Kid
	for _, kid := range kids {
		if !kid.IsActive(on) {
			inactive = append(inactive, kid)
		}
	}
	return inactive
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
