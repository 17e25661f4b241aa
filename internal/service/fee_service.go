package service

import (
	"fmt"
	"time"

	"preschoolfees/internal/fees"
	"preschoolfees/internal/models"
	"preschoolfees/internal/repository"
)

// KidFeeLine is one kid's row on a fee statement
type KidFeeLine struct {
	KidID      int64
	Name       string
	BirthOrder int
	Percent    float64
	FreeWeek   bool
	Fee        float64
}

// FamilyFeeReport is the monthly fee of one family on a reference date
type FamilyFeeReport struct {
	FamilyID       int64
	Name           string
	Emails         []string
	RelevantIncome int
	ParentAtHome   bool
	Kids           []KidFeeLine
	TotalFee       float64
}

// FeeService computes fees and subsidies for stored families
type FeeService struct {
	families *FamilyService
	calc     *fees.Calculator
}

// NewFeeService creates a fee service reading its limits from settings
func NewFeeService(families *FamilyService, settings fees.Lookup) *FeeService {
	return &FeeService{
		families: families,
		calc:     fees.NewCalculator(settings),
	}
}

// Calculator exposes the fee rules with the service's settings
func (s *FeeService) Calculator() *fees.Calculator {
	return s.calc
}

// KidFee is the monthly fee of one kid on the given date; kids without a family pay nothing
func (s *FeeService) KidFee(kidID int64, on time.Time) (float64, error) {
	kid, err := s.families.GetKid(kidID)
	if err != nil {
		return 0, err
	}
	if !kid.HasFamily() {
		return 0, nil
	}
	household, err := s.families.GetHousehold(*kid.FamilyID)
	if err != nil {
		return 0, err
	}
	return s.calc.Fee(household, kid, on), nil
}

// FamilyFee is the rounded monthly total of a family on the given date
func (s *FeeService) FamilyFee(familyID int64, on time.Time) (float64, error) {
	household, err := s.families.GetHousehold(familyID)
	if err != nil {
		return 0, err
	}
	return s.calc.TotalFee(household, on), nil
}

// FamiliesWithNonzeroFee returns the households that pay a fee on the given date
func (s *FeeService) FamiliesWithNonzeroFee(on time.Time) ([]models.Household, error) {
	households, err := s.families.ListHouseholds()
	if err != nil {
		return nil, err
	}
	return s.calc.WithNonzeroFee(households, on), nil
}

// CurrentSubsidiesTotal sums the subsidies of every kid active on the given
// date, across all families.
func (s *FeeService) CurrentSubsidiesTotal(on time.Time) (float64, error) {
	kids, err := s.families.ListKids(repository.KidFilter{})
	if err != nil {
		return 0, err
	}
	return s.calc.SubsidiesTotal(kids, on), nil
}

// Report builds the fee report of a household on the given date
func (s *FeeService) Report(household *models.Household, on time.Time) FamilyFeeReport {
	report := FamilyFeeReport{
		FamilyID:       household.Family.ID,
		Name:           household.Family.FullName(),
		Emails:         household.Family.Emails(),
		RelevantIncome: s.calc.RelevantIncome(&household.Family),
		ParentAtHome:   household.Family.ParentAtHome,
		TotalFee:       s.calc.TotalFee(household, on),
	}
	for _, kid := range household.ActiveKids(on) {
		rank, _ := household.BirthOrder(kid.ID, on)
		report.Kids = append(report.Kids, KidFeeLine{
			KidID:      kid.ID,
			Name:       kid.FullName,
			BirthOrder: rank,
			Percent:    s.calc.FeePercent(household, &kid, on),
			FreeWeek:   kid.FreeFifteenHourWeek(on),
			Fee:        s.calc.Fee(household, &kid, on),
		})
	}
	return report
}

// FamilyReport loads one family and builds its fee report
func (s *FeeService) FamilyReport(familyID int64, on time.Time) (*FamilyFeeReport, error) {
	household, err := s.families.GetHousehold(familyID)
	if err != nil {
		return nil, err
	}
	report := s.Report(household, on)
	return &report, nil
}

// Reports builds the fee report of every family paying a fee on the given date
func (s *FeeService) Reports(on time.Time) ([]FamilyFeeReport, error) {
	households, err := s.FamiliesWithNonzeroFee(on)
	if err != nil {
		return nil, fmt.Errorf("failed to load paying families: %w", err)
	}
	reports := make([]FamilyFeeReport, 0, len(households))
	for i := range households {
		reports = append(reports, s.Report(&households[i], on))
	}
	return reports, nil
}
