package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// LookupLogRepository persists [models.LookupRecord] entries. Records are append-only.
type LookupLogRepository struct {
	db *sql.DB
}

// NewLookupLogRepository creates a new [LookupLogRepository] with the given database connection
func NewLookupLogRepository(db *sql.DB) *LookupLogRepository {
	return &LookupLogRepository{db: db}
}

// Create inserts a record with a generated ID
func (r *LookupLogRepository) Create(rec *models.LookupRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	rec.SetID(shared.GenerateID())

	query := `
		INSERT INTO lookup_log (id, resource_type, resource_id, storefront, success, error_kind, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, rec.ID(), rec.ResourceType, rec.ResourceID, rec.Storefront, rec.Success,
		rec.ErrorKind, rec.ErrorMessage, rec.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert lookup record: %w", err)
	}
	return nil
}

// List retrieves records newest first.
//
// Supported criteria: "resource_type" and "resource_id" (string), "success" (bool), "limit" (int).
func (r *LookupLogRepository) List(criteria map[string]any) ([]*models.LookupRecord, error) {
	query := `
		SELECT id, resource_type, resource_id, storefront, success, error_kind, error_message, created_at
		FROM lookup_log
		WHERE 1 = 1
	`
	args := []any{}

	if rt, ok := criteria["resource_type"].(string); ok && rt != "" {
		query += " AND resource_type = ?"
		args = append(args, rt)
	}
	if id, ok := criteria["resource_id"].(string); ok && id != "" {
		query += " AND resource_id = ?"
		args = append(args, id)
	}
	if success, ok := criteria["success"].(bool); ok {
		query += " AND success = ?"
		args = append(args, success)
	}

	query += " ORDER BY created_at DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup log: %w", err)
	}
	defer rows.Close()

	var records []*models.LookupRecord
	for rows.Next() {
		var (
			rec       models.LookupRecord
			id        string
			createdAt time.Time
		)
		err := rows.Scan(&id, &rec.ResourceType, &rec.ResourceID, &rec.Storefront, &rec.Success, &rec.ErrorKind,
			&rec.ErrorMessage, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lookup record: %w", err)
		}
		rec.SetID(id)
		rec.SetCreatedAt(createdAt)
		rec.SetUpdatedAt(createdAt)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// Counts returns the number of successful and failed lookups recorded.
func (r *LookupLogRepository) Counts() (succeeded, failed int, err error) {
	query := `SELECT COALESCE(SUM(success), 0), COALESCE(SUM(1 - success), 0) FROM lookup_log`
	if err := r.db.QueryRow(query).Scan(&succeeded, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return succeeded, failed, nil
}

// LookupRecorder adapts [LookupLogRepository] to tasks.Recorder so batch lookups are logged as they finish.
type LookupRecorder struct {
	repo *LookupLogRepository
}

// NewLookupRecorder creates a new [LookupRecorder] with the given repository
func NewLookupRecorder(repo *LookupLogRepository) *LookupRecorder {
	return &LookupRecorder{repo: repo}
}

// RecordLookup stores the outcome of one lookup. A nil lookupErr records a success.
func (a *LookupRecorder) RecordLookup(resourceType, resourceID, storefront string, lookupErr error) error {
	rec := models.NewLookupRecord(resourceType, resourceID, storefront)
	rec.Success = lookupErr == nil
	if lookupErr != nil {
		rec.ErrorKind = shared.KindOf(lookupErr).String()
		rec.ErrorMessage = lookupErr.Error()
	}

	if err := a.repo.Create(rec); err != nil {
		return fmt.Errorf("failed to record lookup: %w", err)
	}
	return nil
}
