package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"preschoolfees/internal/database"
	"preschoolfees/internal/models"
)

const familyColumns = `id, mother_name, father_name, mother_email, father_email,
	mother_phone, father_phone, income, parent_at_home, is_lead, comment,
	created_at, updated_at`

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db database.DBTX
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db database.DBTX) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// Create inserts a family and fills in its ID and timestamps
func (r *FamilyRepository) Create(family *models.Family) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO families (mother_name, father_name, mother_email, father_email,
			mother_phone, father_phone, income, parent_at_home, is_lead, comment,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		family.MotherName, family.FatherName, family.MotherEmail, family.FatherEmail,
		family.MotherPhone, family.FatherPhone, nullInt(family.Income),
		family.ParentAtHome, family.IsLead, family.Comment, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}

	family.ID = id
	family.CreatedAt = now
	family.UpdatedAt = now
	return nil
}

// GetByID retrieves a family by ID, returning nil when it does not exist
func (r *FamilyRepository) GetByID(id int64) (*models.Family, error) {
	query := "SELECT " + familyColumns + " FROM families WHERE id = ?"
	family, err := scanFamily(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// List retrieves all families
func (r *FamilyRepository) List() ([]models.Family, error) {
	return r.list(sq.Select(familyColumns).From("families"))
}

// ListLeads retrieves the families marked as leads
func (r *FamilyRepository) ListLeads() ([]models.Family, error) {
	return r.list(sq.Select(familyColumns).From("families").Where(sq.Eq{"is_lead": true}))
}

// ListNonLeads retrieves the families not marked as leads
func (r *FamilyRepository) ListNonLeads() ([]models.Family, error) {
	return r.list(sq.Select(familyColumns).From("families").Where(sq.Eq{"is_lead": false}))
}

func (r *FamilyRepository) list(builder sq.SelectBuilder) ([]models.Family, error) {
	query, args, err := builder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build family query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		family, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, *family)
	}
	return families, rows.Err()
}

// Update saves every column of the family
func (r *FamilyRepository) Update(family *models.Family) error {
	now := time.Now().UTC()
	query := `
		UPDATE families SET mother_name = ?, father_name = ?, mother_email = ?,
			father_email = ?, mother_phone = ?, father_phone = ?, income = ?,
			parent_at_home = ?, is_lead = ?, comment = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		family.MotherName, family.FatherName, family.MotherEmail, family.FatherEmail,
		family.MotherPhone, family.FatherPhone, nullInt(family.Income),
		family.ParentAtHome, family.IsLead, family.Comment, now, family.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	family.UpdatedAt = now
	return nil
}

// Delete removes a family; its kids keep their rows without a family
func (r *FamilyRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM families WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFamily(row rowScanner) (*models.Family, error) {
	var family models.Family
	var income sql.NullInt64
	err := row.Scan(
		&family.ID,
		&family.MotherName,
		&family.FatherName,
		&family.MotherEmail,
		&family.FatherEmail,
		&family.MotherPhone,
		&family.FatherPhone,
		&income,
		&family.ParentAtHome,
		&family.IsLead,
		&family.Comment,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if income.Valid {
		v := int(income.Int64)
		family.Income = &v
	}
	return &family, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
