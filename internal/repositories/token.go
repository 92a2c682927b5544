package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

var _ models.Repository[*models.DeveloperToken] = (*TokenRepository)(nil)

// TokenRepository implements [models.Repository] for the developer token ledger.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `id, sequence, team_id, key_id, origin, value, issued_at, expires_at, created_at, updated_at, deleted_at`

// Create inserts a new token with generated ID and sequence
func (r *TokenRepository) Create(token *models.DeveloperToken) error {
	if err := token.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "developer_tokens")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	token.SetID(shared.GenerateID())
	token.SetSequence(sequence)

	query := `
		INSERT INTO developer_tokens (id, sequence, team_id, key_id, origin, value, issued_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, token.ID(), sequence, token.TeamID(), token.KeyID(), token.OriginString(), token.Value(),
		token.IssuedAt(), token.ExpiresAt(), token.CreatedAt(), token.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	return nil
}

// Get retrieves a token by ID, excluding revoked tokens
func (r *TokenRepository) Get(id string) (*models.DeveloperToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM developer_tokens WHERE id = ? AND deleted_at IS NULL`

	token, err := scanToken(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTokenNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}
	return token, nil
}

// GetBySequence retrieves a token by its ledger number, as shown by `amx token list`
func (r *TokenRepository) GetBySequence(sequence int) (*models.DeveloperToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM developer_tokens WHERE sequence = ? AND deleted_at IS NULL`

	token, err := scanToken(r.db.QueryRow(query, sequence))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: #%d", shared.ErrTokenNotFound, sequence)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}
	return token, nil
}

// Update rewrites the origin list of a token. The signed value and its timestamps never change.
func (r *TokenRepository) Update(token *models.DeveloperToken) error {
	if err := token.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	token.SetUpdatedAt(now)

	query := `
		UPDATE developer_tokens
		SET origin = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, token.OriginString(), now, token.ID())
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	return requireRow(result, token.ID())
}

// Delete revokes (soft-deletes) a token by ID
func (r *TokenRepository) Delete(id string) error {
	query := `
		UPDATE developer_tokens
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return requireRow(result, id)
}

// List retrieves tokens matching the given criteria, excluding revoked tokens.
//
// Supported criteria: "team_id" and "key_id" (string), "active_at" ([time.Time], only tokens not yet expired).
func (r *TokenRepository) List(criteria map[string]any) ([]*models.DeveloperToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM developer_tokens WHERE deleted_at IS NULL`
	args := []any{}

	if teamID, ok := criteria["team_id"].(string); ok && teamID != "" {
		query += " AND team_id = ?"
		args = append(args, teamID)
	}
	if keyID, ok := criteria["key_id"].(string); ok && keyID != "" {
		query += " AND key_id = ?"
		args = append(args, keyID)
	}
	if at, ok := criteria["active_at"].(time.Time); ok {
		query += " AND expires_at > ?"
		args = append(args, at.UTC())
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*models.DeveloperToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tokens, nil
}

// ListActive returns tokens that have not expired at now, oldest first.
func (r *TokenRepository) ListActive(now time.Time) ([]*models.DeveloperToken, error) {
	return r.List(map[string]any{"active_at": now})
}

// Latest returns the most recently issued token that is still valid at now for the given identity.
func (r *TokenRepository) Latest(teamID, keyID string, now time.Time) (*models.DeveloperToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM developer_tokens
		WHERE team_id = ? AND key_id = ? AND expires_at > ? AND deleted_at IS NULL
		ORDER BY sequence DESC LIMIT 1`

	token, err := scanToken(r.db.QueryRow(query, teamID, keyID, now.UTC()))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no active token for %s/%s", shared.ErrTokenNotFound, teamID, keyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}
	return token, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(s scanner) (*models.DeveloperToken, error) {
	var (
		id, teamID, keyID, origin, value string
		sequence                         int
		issuedAt, expiresAt              time.Time
		createdAt, updatedAt             time.Time
		deletedAt                        sql.NullTime
	)

	err := s.Scan(&id, &sequence, &teamID, &keyID, &origin, &value, &issuedAt, &expiresAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	token := models.NewDeveloperToken(sequence, teamID, keyID, value, issuedAt, expiresAt, models.ParseOrigin(origin))
	token.SetID(id)
	token.SetCreatedAt(createdAt)
	token.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		token.SetDeletedAt(&deletedAt.Time)
	}
	return token, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already revoked: %s", shared.ErrTokenNotFound, id)
	}
	return nil
}
