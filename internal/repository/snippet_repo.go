package repository

import (
	"database/sql"
	"fmt"

	"preschoolfees/internal/database"
	"preschoolfees/internal/logger"
)

// Snippet is a named piece of admin-editable text
type Snippet struct {
	Identifier string
	Content    string
}

// SnippetRepository stores the configuration snippets read by the fee rules
type SnippetRepository struct {
	db database.DBTX
}

func NewSnippetRepository(db database.DBTX) *SnippetRepository {
	return &SnippetRepository{db: db}
}

// GetSnippet retrieves a snippet's content by identifier
func (r *SnippetRepository) GetSnippet(identifier string) (string, error) {
	var content string
	err := r.db.QueryRow("SELECT content FROM snippets WHERE identifier = ?", identifier).Scan(&content)
	return content, err
}

// SetSnippet updates or inserts a snippet
func (r *SnippetRepository) SetSnippet(identifier, content string) error {
	_, err := r.db.Exec(r.db.GetDialect().UpsertSnippetQuery(), identifier, content)
	if err != nil {
		return fmt.Errorf("failed to set snippet %s: %w", identifier, err)
	}
	return nil
}

// Lookup returns a snippet's content; any error reads as absent
func (r *SnippetRepository) Lookup(identifier string) (string, bool) {
	content, err := r.GetSnippet(identifier)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Warn().Err(err).Str("snippet", identifier).Msg("snippet lookup failed")
		}
		return "", false
	}
	return content, true
}

// List retrieves every snippet ordered by identifier
func (r *SnippetRepository) List() ([]Snippet, error) {
	rows, err := r.db.Query("SELECT identifier, content FROM snippets ORDER BY identifier")
	if err != nil {
		return nil, fmt.Errorf("failed to query snippets: %w", err)
	}
	defer rows.Close()

	var snippets []Snippet
	for rows.Next() {
		var s Snippet
		if err := rows.Scan(&s.Identifier, &s.Content); err != nil {
			return nil, fmt.Errorf("failed to scan snippet: %w", err)
		}
		snippets = append(snippets, s)
	}
	return snippets, rows.Err()
}
