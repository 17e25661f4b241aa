package models

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

var today = date(2015, time.April, 1)

func TestNormalizeSSN(t *testing.T) {
	tests := []struct {
		name string
		ssn  string
		want string
	}{
		{name: "date only", ssn: "20141231", want: "20141231-0000"},
		{name: "complete", ssn: "20141231-1213", want: "20141231-1213"},
		{name: "surrounding spaces", ssn: " 20141231 ", want: "20141231-0000"},
		{name: "too short is left alone", ssn: "201412", want: "201412"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSSN(tt.ssn); got != tt.want {
				t.Errorf("NormalizeSSN(%q) = %q, want %q", tt.ssn, got, tt.want)
			}
		})
	}
}

func TestKidPrepare(t *testing.T) {
	kid := Kid{SSN: "20090423", FullName: "Fredrik Bränström"}
	kid.Prepare(today)

	if kid.SSN != "20090423-0000" || len(kid.SSN) != SSNLength {
		t.Errorf("SSN = %q, want 20090423-0000", kid.SSN)
	}
	if !kid.StartDate.Equal(today) {
		t.Errorf("StartDate = %v, want %v", kid.StartDate, today)
	}
	if want := date(2015, time.July, 1); !kid.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, want %v", kid.EndDate, want)
	}

	explicit := Kid{SSN: "20090423-0001", StartDate: date(2012, time.July, 1), EndDate: date(2015, time.March, 1)}
	explicit.Prepare(today)
	if !explicit.StartDate.Equal(date(2012, time.July, 1)) || !explicit.EndDate.Equal(date(2015, time.March, 1)) {
		t.Errorf("Prepare() overwrote explicit dates: %v - %v", explicit.StartDate, explicit.EndDate)
	}

	unknown := Kid{SSN: "not-a-date"}
	unknown.Prepare(today)
	if !unknown.EndDate.IsZero() {
		t.Errorf("EndDate = %v, want zero for unknown date of birth", unknown.EndDate)
	}
}

func TestDateOfBirth(t *testing.T) {
	tests := []struct {
		name   string
		ssn    string
		want   time.Time
		wantOK bool
	}{
		{name: "valid", ssn: "20090423-0001", want: date(2009, time.April, 23), wantOK: true},
		{name: "invalid month", ssn: "20091323-0001", wantOK: false},
		{name: "letters", ssn: "2009AB23-0001", wantOK: false},
		{name: "empty", ssn: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kid := Kid{SSN: tt.ssn}
			got, ok := kid.DateOfBirth()
			if ok != tt.wantOK || (ok && !got.Equal(tt.want)) {
				t.Errorf("DateOfBirth() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAges(t *testing.T) {
	oldKid := Kid{SSN: "20090423-0001"}
	littleKid := Kid{SSN: "20120510-0717"}

	if !oldKid.IsBig(today) {
		t.Error("kid born 2009 should be big in 2015")
	}

	ageNow, _ := littleKid.AgeOn(today)
	age, _ := littleKid.Age(today)
	if ageNow != 2 {
		t.Errorf("AgeOn() = %d, want 2", ageNow)
	}
	if age != 3 {
		t.Errorf("Age() = %d, want 3", age)
	}
	if littleKid.IsBig(today) {
		t.Error("kid born 2012 should not be big in 2015")
	}

	birthday := date(2015, time.May, 10)
	if got, _ := littleKid.AgeOn(birthday); got != 3 {
		t.Errorf("AgeOn(birthday) = %d, want 3", got)
	}

	unknown := Kid{SSN: "?"}
	if _, ok := unknown.AgeOn(today); ok {
		t.Error("AgeOn() of unknown date of birth should not be ok")
	}
	if unknown.IsBig(today) {
		t.Error("IsBig() of unknown date of birth should be false")
	}
}

func TestSubsidyAge(t *testing.T) {
	kid := Kid{SSN: "20120801-0000"}
	if got, _ := kid.SubsidyAge(today); got != 2 {
		t.Errorf("SubsidyAge() = %d, want 2", got)
	}
	if got := SubsidyBreakDate(date(2015, time.November, 30)); !got.Equal(date(2015, time.July, 1)) {
		t.Errorf("SubsidyBreakDate() = %v", got)
	}
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		name string
		kid  Kid
		want bool
	}{
		{
			name: "within window",
			kid:  Kid{StartDate: date(2012, time.July, 1), EndDate: date(2015, time.July, 1)},
			want: true,
		},
		{
			name: "first day",
			kid:  Kid{StartDate: today, EndDate: date(2015, time.July, 1)},
			want: true,
		},
		{
			name: "last day",
			kid:  Kid{StartDate: date(2012, time.July, 1), EndDate: today},
			want: true,
		},
		{
			name: "after end date",
			kid:  Kid{StartDate: date(2012, time.July, 1), EndDate: date(2015, time.March, 1)},
			want: false,
		},
		{
			name: "before start date",
			kid:  Kid{StartDate: date(2015, time.April, 3), EndDate: date(2020, time.July, 1)},
			want: false,
		},
		{
			name: "pending",
			kid:  Kid{StartDate: date(2013, time.August, 1), EndDate: date(2018, time.July, 1), Pending: true},
			want: false,
		},
		{
			name: "missing end date",
			kid:  Kid{StartDate: date(2012, time.July, 1)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kid.IsActive(today); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsActiveIgnoresTimeOfDay(t *testing.T) {
	kid := Kid{StartDate: today, EndDate: today}
	if !kid.IsActive(today.Add(10*time.Hour + 5*time.Minute)) {
		t.Error("IsActive() should compare calendar days only")
	}
}

func TestActiveAndInactiveKids(t *testing.T) {
	kids := []Kid{
		{SSN: "20090423-0001", StartDate: date(2012, time.July, 1)},
		{SSN: "20121104-1110", Pending: true},
		{SSN: "20121201-1120", StartDate: date(2013, time.August, 1), Pending: true},
		{SSN: "20130128-1130", StartDate: date(2013, time.December, 1), EndDate: date(2015, time.March, 1)},
	}
	for i := range kids {
		kids[i].Prepare(today)
	}

	if got := len(ActiveKids(kids, today)); got != 1 {
		t.Errorf("len(ActiveKids()) = %d, want 1", got)
	}
	if got := len(InactiveKids(kids, today)); got != 3 {
		t.Errorf("len(InactiveKids()) = %d, want 3", got)
	}
}

func TestFreeFifteenHourWeek(t *testing.T) {
	tests := []struct {
		name string
		ssn  string
		on   time.Time
		want bool
	}{
		{name: "six years old", ssn: "20090423-0001", on: today, want: true},
		{name: "five years old", ssn: "20100123-1213", on: today, want: true},
		{name: "two years old", ssn: "20130304-0000", on: today, want: false},
		{name: "almost three", ssn: "20130101-1213", on: today, want: false},
		{name: "three before september", ssn: "20121231-1213", on: today, want: false},
		{name: "three in september", ssn: "20121231-1213", on: date(2015, time.September, 1), want: true},
		{name: "four next spring", ssn: "20121231-1213", on: date(2016, time.April, 1), want: true},
		{name: "six", ssn: "20121231-1213", on: date(2018, time.April, 1), want: true},
		{name: "never in august", ssn: "20090423-0001", on: date(2015, time.August, 1), want: false},
		{name: "june", ssn: "20090423-0001", on: date(2015, time.June, 1), want: true},
		{name: "unknown date of birth", ssn: "xx", on: today, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kid := Kid{SSN: tt.ssn}
			if got := kid.FreeFifteenHourWeek(tt.on); got != tt.want {
				t.Errorf("FreeFifteenHourWeek(%s) = %v, want %v", tt.on.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestNoFreeWeekInAugust(t *testing.T) {
	kids := []Kid{
		{SSN: "20090423-0001"}, {SSN: "20100123-1213"}, {SSN: "20121231-1213"}, {SSN: "20110615-0000"},
	}
	august := date(2015, time.August, 1)
	for _, kid := range kids {
		if kid.FreeFifteenHourWeek(august) {
			t.Errorf("kid %s has a free week in August", kid.SSN)
		}
	}
	for day := 1; day <= 31; day++ {
		if kids[0].FreeFifteenHourWeek(date(2016, time.August, day)) {
			t.Errorf("free week on August %d", day)
		}
	}
}

func TestBirthOrder(t *testing.T) {
	familyID := int64(1)
	household := Household{
		Kids: []Kid{
			{ID: 1, FamilyID: &familyID, SSN: "20120102-0714", StartDate: date(2012, time.July, 1)},
			{ID: 2, FamilyID: &familyID, SSN: "20131023-0717", StartDate: date(2013, time.July, 1)},
			{ID: 3, FamilyID: &familyID, SSN: "20140923-0716", StartDate: date(2014, time.July, 1)},
		},
	}
	for i := range household.Kids {
		household.Kids[i].Prepare(today)
	}

	byAge := ByAge(household.Kids)
	if byAge[0].ID != 3 || byAge[1].ID != 2 || byAge[2].ID != 1 {
		t.Errorf("ByAge() order = %d,%d,%d, want 3,2,1", byAge[0].ID, byAge[1].ID, byAge[2].ID)
	}
	if household.Kids[0].ID != 1 {
		t.Error("ByAge() modified its input")
	}

	for id, want := range map[int64]int{1: 3, 2: 2, 3: 1} {
		if got, ok := household.BirthOrder(id, today); !ok || got != want {
			t.Errorf("BirthOrder(%d) = %d, %v, want %d", id, got, ok, want)
		}
	}
	if _, ok := household.BirthOrder(99, today); ok {
		t.Error("BirthOrder() of unknown kid should not be ranked")
	}
}

func TestFamilyPrepare(t *testing.T) {
	family := Family{MotherName: "anna larsson", FatherName: "johan  LARSSON"}
	family.Prepare()
	if family.MotherName != "Anna Larsson" {
		t.Errorf("MotherName = %q, want Anna Larsson", family.MotherName)
	}
	if family.FatherName != "Johan Larsson" {
		t.Errorf("FatherName = %q, want Johan Larsson", family.FatherName)
	}
}

func TestTitleize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "åsa öberg", want: "Åsa Öberg"},
		{in: "ANNA LARSSON", want: "Anna Larsson"},
		{in: "ensamma mamman olsson", want: "Ensamma Mamman Olsson"},
	}
	for _, tt := range tests {
		if got := Titleize(tt.in); got != tt.want {
			t.Errorf("Titleize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFamilyNames(t *testing.T) {
	tests := []struct {
		name         string
		family       Family
		wantName     string
		wantFullName string
	}{
		{
			name:         "shared surname",
			family:       Family{MotherName: "Anna Larsson", FatherName: "Johan Larsson"},
			wantName:     "Larsson",
			wantFullName: "Anna and Johan Larsson",
		},
		{
			name:         "different surnames",
			family:       Family{MotherName: "Anna Larsson", FatherName: "Johan Berg"},
			wantName:     "Larsson/Berg",
			wantFullName: "Anna Larsson and Johan Berg",
		},
		{
			name:         "single parent",
			family:       Family{MotherName: "Ensamma Mamman Olsson"},
			wantName:     "Olsson",
			wantFullName: "Ensamma Mamman Olsson",
		},
		{
			name:         "no names",
			family:       Family{},
			wantName:     "",
			wantFullName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.family.Name(); got != tt.wantName {
				t.Errorf("Name() = %q, want %q", got, tt.wantName)
			}
			if got := tt.family.FullName(); got != tt.wantFullName {
				t.Errorf("FullName() = %q, want %q", got, tt.wantFullName)
			}
		})
	}

	f := Family{MotherName: "Ensamma Mamman Olsson", MotherEmail: "a@test.se", FatherPhone: "070-123"}
	if got := f.MotherForenames(); got != "Ensamma Mamman" {
		t.Errorf("MotherForenames() = %q", got)
	}
	if got := f.Emails(); len(got) != 1 || got[0] != "a@test.se" {
		t.Errorf("Emails() = %v", got)
	}
	if got := f.Phones(); len(got) != 1 || got[0] != "070-123" {
		t.Errorf("Phones() = %v", got)
	}
}

func TestNameWithKids(t *testing.T) {
	household := Household{
		Family: Family{MotherName: "Anna Larsson", FatherName: "Johan Larsson"},
		Kids: []Kid{
			{ID: 1, SSN: "20120102-0714", FullName: "Ena Larsson", StartDate: date(2012, time.July, 1)},
			{ID: 2, SSN: "20131023-0717", FullName: "Andra Larsson", StartDate: date(2013, time.July, 1)},
			{ID: 3, SSN: "20140923-0716", FullName: "Tredje Larsson", Pending: true},
		},
	}
	for i := range household.Kids {
		household.Kids[i].Prepare(today)
	}
	if got := household.NameWithKids(today); got != "Ena and Andra Larsson" {
		t.Errorf("NameWithKids() = %q", got)
	}
}

func TestKidNames(t *testing.T) {
	kid := Kid{FullName: "Fredrik Olof Bränström"}
	if kid.Forename() != "Fredrik" || kid.Forenames() != "Fredrik Olof" || kid.Surname() != "Bränström" {
		t.Errorf("got %q / %q / %q", kid.Forename(), kid.Forenames(), kid.Surname())
	}
	empty := Kid{}
	if empty.Forename() != "" || empty.Surname() != "" {
		t.Error("name parts of an empty name should be empty")
	}
}

func TestToSentence(t *testing.T) {
	tests := []struct {
		words []string
		want  string
	}{
		{words: nil, want: ""},
		{words: []string{"Ena"}, want: "Ena"},
		{words: []string{"Ena", "Andra"}, want: "Ena and Andra"},
		{words: []string{"Ena", "Andra", "Tredje"}, want: "Ena, Andra, and Tredje"},
	}
	for _, tt := range tests {
		if got := ToSentence(tt.words); got != tt.want {
			t.Errorf("ToSentence(%v) = %q, want %q", tt.words, got, tt.want)
		}
	}
}

func TestDiff(t *testing.T) {
	income := 50000
	before := Family{MotherName: "Anna Larsson", Income: &income}
	after := before
	newIncome := 30000
	after.Income = &newIncome
	after.Comment = "först"

	changes := Diff(before.Attributes(), after.Attributes())
	if len(changes) != 2 {
		t.Fatalf("len(Diff()) = %d, want 2", len(changes))
	}
	if changes[0].Field != "comment" || changes[0].OldValue != nil || *changes[0].NewValue != "först" {
		t.Errorf("comment change = %+v", changes[0])
	}
	if changes[1].Field != "income" || *changes[1].OldValue != "50000" || *changes[1].NewValue != "30000" {
		t.Errorf("income change = %+v", changes[1])
	}

	if got := Diff(after.Attributes(), after.Attributes()); len(got) != 0 {
		t.Errorf("Diff() of identical attributes = %v", got)
	}
}

func TestGroupVersions(t *testing.T) {
	v := func(s string) *string { return &s }
	changes := []Change{
		{ChangeSetID: "a", Event: EventCreate, Field: "income", NewValue: v("50000"), CreatedAt: date(2015, time.April, 1)},
		{ChangeSetID: "b", Event: EventUpdate, Field: "income", OldValue: v("50000"), NewValue: v("30000"), CreatedAt: date(2015, time.April, 4)},
		{ChangeSetID: "b", Event: EventUpdate, Field: "comment", NewValue: v("x"), CreatedAt: date(2015, time.April, 4)},
	}
	versions := GroupVersions(changes)
	if len(versions) != 2 {
		t.Fatalf("len(GroupVersions()) = %d, want 2", len(versions))
	}
	got := versions[1].Changes["income"]
	if *got[0] != "50000" || *got[1] != "30000" {
		t.Errorf("income = [%s %s]", *got[0], *got[1])
	}
	if len(versions[1].Changes) != 2 {
		t.Errorf("second version has %d changes, want 2", len(versions[1].Changes))
	}
}
