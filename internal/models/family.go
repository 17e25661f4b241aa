package models

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Family represents the parents (or guardians) responsible for one or more kids
type Family struct {
	ID           int64
	MotherName   string
	FatherName   string
	MotherEmail  string
	FatherEmail  string
	MotherPhone  string
	FatherPhone  string
	Income       *int // nil means the default income applies
	ParentAtHome bool
	IsLead       bool
	Comment      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Household combines a family with all of its kids, active or not
type Household struct {
	Family Family
	Kids   []Kid
}

// Prepare capitalizes the parents' names. It runs before every create and update.
func (f *Family) Prepare() {
	f.MotherName = Titleize(f.MotherName)
	f.FatherName = Titleize(f.FatherName)
}

// Titleize upper-cases the first letter of every word in s
func Titleize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.Swedish).String(s)
}

// Names returns the parents' full names that are set, mother first
func (f *Family) Names() []string {
	return compact(f.MotherName, f.FatherName)
}

// Emails returns the parents' e-mail addresses that are set
func (f *Family) Emails() []string {
	return compact(f.MotherEmail, f.FatherEmail)
}

// Phones returns the parents' phone numbers that are set
func (f *Family) Phones() []string {
	return compact(f.MotherPhone, f.FatherPhone)
}

func (f *Family) MotherForenames() string { return forenames(f.MotherName) }
func (f *Family) FatherForenames() string { return forenames(f.FatherName) }
func (f *Family) MotherSurname() string   { return surname(f.MotherName) }
func (f *Family) FatherSurname() string   { return surname(f.FatherName) }

// Surnames returns the family surname, shortened to one name if both parents share it
func (f *Family) Surnames() string {
	mother, father := f.MotherSurname(), f.FatherSurname()
	if mother == father {
		return mother
	}
	return strings.Join(compact(mother, father), "/")
}

// Name is the short display name of the family
func (f *Family) Name() string {
	return f.Surnames()
}

// FullName lists both parents as a sentence, e.g. "Anna and Johan Larsson"
func (f *Family) FullName() string {
	mother, father := f.MotherSurname(), f.FatherSurname()
	if mother == "" || mother != father {
		return ToSentence(f.Names())
	}
	first := compact(f.MotherForenames(), f.FatherForenames())
	if len(first) == 0 {
		return mother
	}
	return ToSentence(first) + " " + mother
}

// Attributes returns the tracked columns of the family for change history.
// A nil value represents NULL.
func (f *Family) Attributes() map[string]*string {
	attrs := map[string]*string{
		"mother_name":    nullable(f.MotherName),
		"father_name":    nullable(f.FatherName),
		"mother_email":   nullable(f.MotherEmail),
		"father_email":   nullable(f.FatherEmail),
		"mother_phone":   nullable(f.MotherPhone),
		"father_phone":   nullable(f.FatherPhone),
		"income":         nil,
		"parent_at_home": nullable(strconv.FormatBool(f.ParentAtHome)),
		"is_lead":        nullable(strconv.FormatBool(f.IsLead)),
		"comment":        nullable(f.Comment),
	}
	if f.Income != nil {
		attrs["income"] = nullable(strconv.Itoa(*f.Income))
	}
	return attrs
}

// ActiveKids returns the household's active kids on the given date, youngest first
func (h *Household) ActiveKids(on time.Time) []Kid {
	return ActiveKids(ByAge(h.Kids), on)
}

// BirthOrder ranks a kid among its active siblings on the given date, youngest
// first, starting at 1. ranked is false when the kid is not among the active
// kids (for example because it is inactive itself).
func (h *Household) BirthOrder(kidID int64, on time.Time) (rank int, ranked bool) {
	for i, kid := range h.ActiveKids(on) {
		if kid.ID == kidID {
			return i + 1, true
		}
	}
	return 0, false
}

// NameWithKids returns the active kids' forenames followed by the family name
func (h *Household) NameWithKids(on time.Time) string {
	var names []string
	for _, kid := range ActiveKids(h.Kids, on) {
		if forename := kid.Forename(); forename != "" {
			names = append(names, forename)
		}
	}
	return strings.TrimSpace(ToSentence(names) + " " + h.Family.Name())
}

// ToSentence joins words into a natural-language list: "a", "a and b", "a, b, and c"
func ToSentence(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " and " + words[1]
	default:
		return strings.Join(words[:len(words)-1], ", ") + ", and " + words[len(words)-1]
	}
}

func compact(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func forenames(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts[:len(parts)-1], " ")
}

func surname(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
