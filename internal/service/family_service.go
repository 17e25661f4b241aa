package service

import (
	"errors"
	"fmt"
	"time"

	"preschoolfees/internal/database"
	"preschoolfees/internal/logger"
	"preschoolfees/internal/models"
	"preschoolfees/internal/repository"
	"preschoolfees/internal/validation"
)

var (
	ErrFamilyNotFound = errors.New("family not found")
	ErrKidNotFound    = errors.New("kid not found")
)

// FamilyService handles family and kid records. Every save is validated
// and recorded in the change history in the same transaction.
type FamilyService struct {
	db         *database.DB
	familyRepo *repository.FamilyRepository
	kidRepo    *repository.KidRepository
	versions   *repository.VersionRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(db *database.DB) *FamilyService {
	return &FamilyService{
		db:         db,
		familyRepo: repository.NewFamilyRepository(db),
		kidRepo:    repository.NewKidRepository(db),
		versions:   repository.NewVersionRepository(db),
	}
}

// CreateFamily validates and stores a new family
func (s *FamilyService) CreateFamily(family *models.Family) error {
	family.Prepare()
	if err := validation.ValidateFamily(family); err != nil {
		return err
	}

	err := s.db.InTx(func(tx *database.Tx) error {
		if err := repository.NewFamilyRepository(tx).Create(family); err != nil {
			return err
		}
		changes := models.Diff(nil, family.Attributes())
		_, err := repository.NewVersionRepository(tx).Record(models.ItemFamily, family.ID, models.EventCreate, changes)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}

	logger.Info().Int64("family_id", family.ID).Str("name", family.FullName()).Msg("family created")
	return nil
}

// UpdateFamily validates and saves an existing family
func (s *FamilyService) UpdateFamily(family *models.Family) error {
	family.Prepare()
	if err := validation.ValidateFamily(family); err != nil {
		return err
	}

	err := s.db.InTx(func(tx *database.Tx) error {
		repo := repository.NewFamilyRepository(tx)
		before, err := repo.GetByID(family.ID)
		if err != nil {
			return err
		}
		if before == nil {
			return ErrFamilyNotFound
		}
		if err := repo.Update(family); err != nil {
			return err
		}
		changes := models.Diff(before.Attributes(), family.Attributes())
		_, err = repository.NewVersionRepository(tx).Record(models.ItemFamily, family.ID, models.EventUpdate, changes)
		return err
	})
	if errors.Is(err, ErrFamilyNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}

	logger.Debug().Int64("family_id", family.ID).Msg("family updated")
	return nil
}

// GetFamily retrieves a family by ID
func (s *FamilyService) GetFamily(familyID int64) (*models.Family, error) {
	family, err := s.familyRepo.GetByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// ListFamilies retrieves all families, or only leads or non-leads
func (s *FamilyService) ListFamilies(leads *bool) ([]models.Family, error) {
	var families []models.Family
	var err error
	switch {
	case leads == nil:
		families, err = s.familyRepo.List()
	case *leads:
		families, err = s.familyRepo.ListLeads()
	default:
		families, err = s.familyRepo.ListNonLeads()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	return families, nil
}

// DeleteFamily removes a family; its kids stay on record without a family
func (s *FamilyService) DeleteFamily(familyID int64) error {
	if _, err := s.GetFamily(familyID); err != nil {
		return err
	}
	return s.familyRepo.Delete(familyID)
}

// GetHousehold loads a family together with all of its kids
func (s *FamilyService) GetHousehold(familyID int64) (*models.Household, error) {
	family, err := s.GetFamily(familyID)
	if err != nil {
		return nil, err
	}
	kids, err := s.kidRepo.ListByFamily(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family kids: %w", err)
	}
	return &models.Household{Family: *family, Kids: kids}, nil
}

// ListHouseholds loads every family with its kids
func (s *FamilyService) ListHouseholds() ([]models.Household, error) {
	families, err := s.familyRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	kids, err := s.kidRepo.List(repository.KidFilter{HasFamily: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list kids: %w", err)
	}

	byFamily := make(map[int64][]models.Kid)
	for _, kid := range kids {
		byFamily[*kid.FamilyID] = append(byFamily[*kid.FamilyID], kid)
	}

	households := make([]models.Household, 0, len(families))
	for _, family := range families {
		households = append(households, models.Household{
			Family: family,
			Kids:   models.ByAge(byFamily[family.ID]),
		})
	}
	return households, nil
}

// CreateKid prepares, validates and stores a new kid. today fills in a
// missing start date and anchors the default end date.
func (s *FamilyService) CreateKid(kid *models.Kid, today time.Time) error {
	kid.Prepare(today)
	if err := validation.ValidateKid(kid); err != nil {
		return err
	}

	err := s.db.InTx(func(tx *database.Tx) error {
		repo := repository.NewKidRepository(tx)
		if err := checkSSNAvailable(repo, kid); err != nil {
			return err
		}
		if err := checkFamilyExists(repository.NewFamilyRepository(tx), kid.FamilyID); err != nil {
			return err
		}
		if err := repo.Create(kid); err != nil {
			return err
		}
		changes := models.Diff(nil, kid.Attributes())
		_, err := repository.NewVersionRepository(tx).Record(models.ItemKid, kid.ID, models.EventCreate, changes)
		return err
	})
	if err != nil {
		return wrapKidError("create", err)
	}

	logger.Info().Int64("kid_id", kid.ID).Str("ssn", kid.SSN).Msg("kid created")
	return nil
}

// UpdateKid prepares, validates and saves an existing kid
func (s *FamilyService) UpdateKid(kid *models.Kid, today time.Time) error {
	kid.Prepare(today)
	if err := validation.ValidateKid(kid); err != nil {
		return err
	}

	err := s.db.InTx(func(tx *database.Tx) error {
		repo := repository.NewKidRepository(tx)
		before, err := repo.GetByID(kid.ID)
		if err != nil {
			return err
		}
		if before == nil {
			return ErrKidNotFound
		}
		if err := checkSSNAvailable(repo, kid); err != nil {
			return err
		}
		if err := checkFamilyExists(repository.NewFamilyRepository(tx), kid.FamilyID); err != nil {
			return err
		}
		if err := repo.Update(kid); err != nil {
			return err
		}
		changes := models.Diff(before.Attributes(), kid.Attributes())
		_, err = repository.NewVersionRepository(tx).Record(models.ItemKid, kid.ID, models.EventUpdate, changes)
		return err
	})
	if err != nil {
		return wrapKidError("update", err)
	}

	logger.Debug().Int64("kid_id", kid.ID).Msg("kid updated")
	return nil
}

// SetKidFamily moves a kid to another family, or out of any family when familyID is nil
func (s *FamilyService) SetKidFamily(kidID int64, familyID *int64, today time.Time) (*models.Kid, error) {
	kid, err := s.GetKid(kidID)
	if err != nil {
		return nil, err
	}
	kid.FamilyID = familyID
	if err := s.UpdateKid(kid, today); err != nil {
		return nil, err
	}
	return kid, nil
}

// GetKid retrieves a kid by ID
func (s *FamilyService) GetKid(kidID int64) (*models.Kid, error) {
	kid, err := s.kidRepo.GetByID(kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get kid: %w", err)
	}
	if kid == nil {
		return nil, ErrKidNotFound
	}
	return kid, nil
}

// ListKids retrieves the kids matching the filter
func (s *FamilyService) ListKids(filter repository.KidFilter) ([]models.Kid, error) {
	kids, err := s.kidRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list kids: %w", err)
	}
	return kids, nil
}

// Siblings retrieves the other kids of a kid's family
func (s *FamilyService) Siblings(kidID int64) ([]models.Kid, error) {
	kid, err := s.GetKid(kidID)
	if err != nil {
		return nil, err
	}
	return s.kidRepo.Siblings(kid)
}

// DeleteKid removes a kid
func (s *FamilyService) DeleteKid(kidID int64) error {
	if _, err := s.GetKid(kidID); err != nil {
		return err
	}
	return s.kidRepo.Delete(kidID)
}

// FamilyHistory returns the saved versions of a family, oldest first
func (s *FamilyService) FamilyHistory(familyID int64) ([]models.Version, error) {
	return s.history(models.ItemFamily, familyID)
}

// KidHistory returns the saved versions of a kid, oldest first
func (s *FamilyService) KidHistory(kidID int64) ([]models.Version, error) {
	return s.history(models.ItemKid, kidID)
}

func (s *FamilyService) history(itemType string, id int64) ([]models.Version, error) {
	changes, err := s.versions.History(itemType, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s history: %w", itemType, err)
	}
	return models.GroupVersions(changes), nil
}

func checkSSNAvailable(repo *repository.KidRepository, kid *models.Kid) error {
	existing, err := repo.GetBySSN(kid.SSN)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != kid.ID {
		return validation.Errors{{Field: "ssn", Message: "has already been taken"}}
	}
	return nil
}

func checkFamilyExists(repo *repository.FamilyRepository, familyID *int64) error {
	if familyID == nil {
		return nil
	}
	family, err := repo.GetByID(*familyID)
	if err != nil {
		return err
	}
	if family == nil {
		return ErrFamilyNotFound
	}
	return nil
}

// wrapKidError keeps validation and lookup errors unwrapped for callers
func wrapKidError(action string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) || errors.Is(err, ErrKidNotFound) || errors.Is(err, ErrFamilyNotFound) {
		return err
	}
	return fmt.Errorf("failed to %s kid: %w", action, err)
}
