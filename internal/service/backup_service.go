package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"preschoolfees/internal/database"
	"preschoolfees/internal/logger"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string          `json:"version"`
	ExportedAt   time.Time       `json:"exported_at"`
	DatabaseType string          `json:"database_type"`
	Families     []FamilyBackup  `json:"families"`
	Kids         []KidBackup     `json:"kids"`
	Snippets     []SnippetBackup `json:"snippets"`
	Versions     []VersionBackup `json:"versions"`
}

// FamilyBackup represents a family record for backup
type FamilyBackup struct {
	ID           int64     `json:"id"`
	MotherName   string    `json:"mother_name"`
	FatherName   string    `json:"father_name"`
	MotherEmail  string    `json:"mother_email"`
	FatherEmail  string    `json:"father_email"`
	MotherPhone  string    `json:"mother_phone"`
	FatherPhone  string    `json:"father_phone"`
	Income       *int64    `json:"income"`
	ParentAtHome bool      `json:"parent_at_home"`
	IsLead       bool      `json:"is_lead"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KidBackup represents a kid record for backup. Dates are YYYY-MM-DD.
type KidBackup struct {
	ID        int64     `json:"id"`
	FamilyID  *int64    `json:"family_id"`
	SSN       string    `json:"ssn"`
	FullName  string    `json:"full_name"`
	StartDate *string   `json:"start_date"`
	EndDate   *string   `json:"end_date"`
	Pending   bool      `json:"pending"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnippetBackup represents a configuration snippet for backup
type SnippetBackup struct {
	Identifier string `json:"identifier"`
	Content    string `json:"content"`
}

// VersionBackup represents one change history row for backup
type VersionBackup struct {
	ChangeSetID string    `json:"change_set_id"`
	ItemType    string    `json:"item_type"`
	ItemID      int64     `json:"item_id"`
	Event       string    `json:"event"`
	Field       string    `json:"field"`
	OldValue    *string   `json:"old_value"`
	NewValue    *string   `json:"new_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	logger.Info().Str("path", outputPath).Msg("database exported")
	return nil
}

// ExportToWriter writes a JSON backup of the database to w
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.MigrationsSubdir(),
	}

	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportKids(backup); err != nil {
		return fmt.Errorf("failed to export kids: %w", err)
	}
	if err := s.exportSnippets(backup); err != nil {
		return fmt.Errorf("failed to export snippets: %w", err)
	}
	if err := s.exportVersions(backup); err != nil {
		return fmt.Errorf("failed to export versions: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	logger.Info().
		Int("families", len(backup.Families)).
		Int("kids", len(backup.Kids)).
		Int("snippets", len(backup.Snippets)).
		Int("versions", len(backup.Versions)).
		Msg("export complete")
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup in one transaction
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	logger.Info().Str("version", backup.Version).Time("exported_at", backup.ExportedAt).Msg("importing backup")

	err := s.db.InTx(func(tx *database.Tx) error {
		if err := importFamilies(tx, backup.Families); err != nil {
			return fmt.Errorf("failed to import families: %w", err)
		}
		if err := importKids(tx, backup.Kids); err != nil {
			return fmt.Errorf("failed to import kids: %w", err)
		}
		if err := importSnippets(tx, backup.Snippets); err != nil {
			return fmt.Errorf("failed to import snippets: %w", err)
		}
		if err := importVersions(tx, backup.Versions); err != nil {
			return fmt.Errorf("failed to import versions: %w", err)
		}
		for _, table := range []string{"families", "kids", "versions"} {
			if query := tx.GetDialect().ResetSequenceQuery(table); query != "" {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to reset %s sequence: %w", table, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Msg("database import completed")
	return nil
}

// Clear deletes every family, kid, snippet and history row
func (s *BackupService) Clear() error {
	return s.db.InTx(func(tx *database.Tx) error {
		for _, table := range []string{"versions", "kids", "families", "snippets"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			logger.Debug().Str("table", table).Msg("cleared table")
		}
		return nil
	})
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	query := `SELECT id, mother_name, father_name, mother_email, father_email, mother_phone,
		father_phone, income, parent_at_home, is_lead, comment, created_at, updated_at
		FROM families ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		var income sql.NullInt64
		if err := rows.Scan(&f.ID, &f.MotherName, &f.FatherName, &f.MotherEmail, &f.FatherEmail,
			&f.MotherPhone, &f.FatherPhone, &income, &f.ParentAtHome, &f.IsLead, &f.Comment,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return err
		}
		if income.Valid {
			f.Income = &income.Int64
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportKids(backup *BackupData) error {
	query := `SELECT id, family_id, ssn, full_name, start_date, end_date, pending, comment,
		created_at, updated_at FROM kids ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k KidBackup
		var familyID sql.NullInt64
		var startDate, endDate sql.NullTime
		if err := rows.Scan(&k.ID, &familyID, &k.SSN, &k.FullName, &startDate, &endDate,
			&k.Pending, &k.Comment, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return err
		}
		if familyID.Valid {
			k.FamilyID = &familyID.Int64
		}
		k.StartDate = dateString(startDate)
		k.EndDate = dateString(endDate)
		backup.Kids = append(backup.Kids, k)
	}
	return rows.Err()
}

func (s *BackupService) exportSnippets(backup *BackupData) error {
	rows, err := s.db.Query("SELECT identifier, content FROM snippets ORDER BY identifier")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sn SnippetBackup
		if err := rows.Scan(&sn.Identifier, &sn.Content); err != nil {
			return err
		}
		backup.Snippets = append(backup.Snippets, sn)
	}
	return rows.Err()
}

func (s *BackupService) exportVersions(backup *BackupData) error {
	query := `SELECT change_set_id, item_type, item_id, event, field, old_value, new_value,
		created_at FROM versions ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VersionBackup
		if err := rows.Scan(&v.ChangeSetID, &v.ItemType, &v.ItemID, &v.Event, &v.Field,
			&v.OldValue, &v.NewValue, &v.CreatedAt); err != nil {
			return err
		}
		backup.Versions = append(backup.Versions, v)
	}
	return rows.Err()
}

func importFamilies(tx *database.Tx, families []FamilyBackup) error {
	logger.Info().Int("count", len(families)).Msg("importing families")
	query := `INSERT INTO families (id, mother_name, father_name, mother_email, father_email,
		mother_phone, father_phone, income, parent_at_home, is_lead, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, f := range families {
		_, err := tx.Exec(query, f.ID, f.MotherName, f.FatherName, f.MotherEmail, f.FatherEmail,
			f.MotherPhone, f.FatherPhone, f.Income, f.ParentAtHome, f.IsLead, f.Comment,
			f.CreatedAt, f.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.ID, err)
		}
	}
	return nil
}

func importKids(tx *database.Tx, kids []KidBackup) error {
	logger.Info().Int("count", len(kids)).Msg("importing kids")
	query := `INSERT INTO kids (id, family_id, ssn, full_name, start_date, end_date, pending,
		comment, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, k := range kids {
		startDate, err := parseDate(k.StartDate)
		if err != nil {
			return fmt.Errorf("kid %d start_date: %w", k.ID, err)
		}
		endDate, err := parseDate(k.EndDate)
		if err != nil {
			return fmt.Errorf("kid %d end_date: %w", k.ID, err)
		}
		_, err = tx.Exec(query, k.ID, k.FamilyID, k.SSN, k.FullName, startDate, endDate,
			k.Pending, k.Comment, k.CreatedAt, k.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import kid %d: %w", k.ID, err)
		}
	}
	return nil
}

func importSnippets(tx *database.Tx, snippets []SnippetBackup) error {
	for _, sn := range snippets {
		if _, err := tx.Exec(tx.GetDialect().UpsertSnippetQuery(), sn.Identifier, sn.Content); err != nil {
			return fmt.Errorf("failed to import snippet %s: %w", sn.Identifier, err)
		}
	}
	return nil
}

func importVersions(tx *database.Tx, versions []VersionBackup) error {
	query := `INSERT INTO versions (change_set_id, item_type, item_id, event, field, old_value,
		new_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, v := range versions {
		_, err := tx.Exec(query, v.ChangeSetID, v.ItemType, v.ItemID, v.Event, v.Field,
			v.OldValue, v.NewValue, v.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import %s %d history: %w", v.ItemType, v.ItemID, err)
		}
	}
	return nil
}

func dateString(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(time.DateOnly)
	return &s
}

func parseDate(s *string) (sql.NullTime, error) {
	if s == nil || *s == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}
