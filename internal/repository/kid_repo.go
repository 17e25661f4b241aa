package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"preschoolfees/internal/database"
	"preschoolfees/internal/models"
)

const kidColumns = `id, family_id, ssn, full_name, start_date, end_date, pending,
	comment, created_at, updated_at`

// KidFilter narrows a kid listing. Zero values do not filter.
type KidFilter struct {
	FamilyID  *int64
	Orphan    bool   // only kids without a family
	HasFamily bool   // only kids with a family
	Name      string // case-insensitive substring of the full name
}

// KidRepository handles database operations for kids
type KidRepository struct {
	db database.DBTX
}

// NewKidRepository creates a new kid repository
func NewKidRepository(db database.DBTX) *KidRepository {
	return &KidRepository{db: db}
}

// Create inserts a kid and fills in its ID and timestamps
func (r *KidRepository) Create(kid *models.Kid) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO kids (family_id, ssn, full_name, start_date, end_date, pending,
			comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		nullID(kid.FamilyID), kid.SSN, kid.FullName, nullDate(kid.StartDate),
		nullDate(kid.EndDate), kid.Pending, kid.Comment, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create kid: %w", err)
	}

	kid.ID = id
	kid.CreatedAt = now
	kid.UpdatedAt = now
	return nil
}

// GetByID retrieves a kid by ID, returning nil when it does not exist
func (r *KidRepository) GetByID(id int64) (*models.Kid, error) {
	return r.getOne("SELECT "+kidColumns+" FROM kids WHERE id = ?", id)
}

// GetBySSN retrieves a kid by social security number, returning nil when it does not exist
func (r *KidRepository) GetBySSN(ssn string) (*models.Kid, error) {
	return r.getOne("SELECT "+kidColumns+" FROM kids WHERE ssn = ?", ssn)
}

func (r *KidRepository) getOne(query string, arg interface{}) (*models.Kid, error) {
	kid, err := scanKid(r.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kid: %w", err)
	}
	return kid, nil
}

// ListByFamily retrieves a family's kids, youngest first
func (r *KidRepository) ListByFamily(familyID int64) ([]models.Kid, error) {
	return r.List(KidFilter{FamilyID: &familyID})
}

// List retrieves the kids matching the filter. Kids of one family come back
// youngest first; otherwise kids are ordered by name.
func (r *KidRepository) List(filter KidFilter) ([]models.Kid, error) {
	builder := sq.Select(kidColumns).From("kids")

	if filter.FamilyID != nil {
		builder = builder.Where(sq.Eq{"family_id": *filter.FamilyID}).OrderBy("ssn DESC")
	} else {
		builder = builder.OrderBy("full_name ASC", "ssn DESC")
	}
	if filter.Orphan {
		builder = builder.Where(sq.Eq{"family_id": nil})
	}
	if filter.HasFamily {
		builder = builder.Where(sq.NotEq{"family_id": nil})
	}
	if filter.Name != "" {
		like := r.db.GetDialect().CaseInsensitiveLike()
		builder = builder.Where(sq.Expr("full_name "+like+" ?", "%"+filter.Name+"%"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build kid query: %w", err)
	}
	return r.query(query, args...)
}

// Siblings retrieves the other kids of the kid's family, youngest first
func (r *KidRepository) Siblings(kid *models.Kid) ([]models.Kid, error) {
	if !kid.HasFamily() {
		return nil, nil
	}
	query, args, err := sq.Select(kidColumns).From("kids").
		Where(sq.Eq{"family_id": *kid.FamilyID}).
		Where(sq.NotEq{"id": kid.ID}).
		OrderBy("ssn DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sibling query: %w", err)
	}
	return r.query(query, args...)
}

func (r *KidRepository) query(query string, args ...interface{}) ([]models.Kid, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kids: %w", err)
	}
	defer rows.Close()

	var kids []models.Kid
	for rows.Next() {
		kid, err := scanKid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kid: %w", err)
		}
		kids = append(kids, *kid)
	}
	return kids, rows.Err()
}

// Update saves every column of the kid
func (r *KidRepository) Update(kid *models.Kid) error {
	now := time.Now().UTC()
	query := `
		UPDATE kids SET family_id = ?, ssn = ?, full_name = ?, start_date = ?,
			end_date = ?, pending = ?, comment = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		nullID(kid.FamilyID), kid.SSN, kid.FullName, nullDate(kid.StartDate),
		nullDate(kid.EndDate), kid.Pending, kid.Comment, now, kid.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update kid: %w", err)
	}
	kid.UpdatedAt = now
	return nil
}

// Delete removes a kid
func (r *KidRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM kids WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete kid: %w", err)
	}
	return nil
}

func scanKid(row rowScanner) (*models.Kid, error) {
	var kid models.Kid
	var familyID sql.NullInt64
	var startDate, endDate sql.NullTime
	err := row.Scan(
		&kid.ID,
		&familyID,
		&kid.SSN,
		&kid.FullName,
		&startDate,
		&endDate,
		&kid.Pending,
		&kid.Comment,
		&kid.CreatedAt,
		&kid.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if familyID.Valid {
		id := familyID.Int64
		kid.FamilyID = &id
	}
	if startDate.Valid {
		kid.StartDate = models.Date(startDate.Time)
	}
	if endDate.Valid {
		kid.EndDate = models.Date(endDate.Time)
	}
	return &kid, nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// nullDate stores a calendar day, or NULL for the zero time
func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: models.Date(t), Valid: true}
}
