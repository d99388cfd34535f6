// Package store persists hiring check results in PostgreSQL. It is
// optional: batch runs work without a database and simply skip
// persistence.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gravity-outreach/hiring-detector/internal/types"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the results table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS hiring_checks (
			id UUID PRIMARY KEY,
			company_name TEXT NOT NULL,
			website TEXT,
			is_hiring BOOLEAN NOT NULL,
			career_page_url TEXT,
			job_roles TEXT[] NOT NULL DEFAULT '{}',
			job_count INT NOT NULL DEFAULT 0,
			hiring_summary TEXT,
			detection_method TEXT NOT NULL,
			checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS hiring_checks_company_idx
			ON hiring_checks (company_name, checked_at DESC)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CheckRecord is a persisted hiring check.
type CheckRecord struct {
	ID              uuid.UUID `json:"id"`
	CompanyName     string    `json:"company_name"`
	Website         string    `json:"website,omitempty"`
	IsHiring        bool      `json:"is_hiring"`
	CareerPageURL   string    `json:"career_page_url,omitempty"`
	JobRoles        []string  `json:"job_roles"`
	JobCount        int       `json:"job_count"`
	HiringSummary   string    `json:"hiring_summary"`
	DetectionMethod string    `json:"detection_method"`
	CheckedAt       time.Time `json:"checked_at"`
}

// SaveResult inserts a completed check. It satisfies the batch runner's
// result sink.
func (s *Store) SaveResult(ctx context.Context, company types.Company, result *types.HiringResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO hiring_checks
			(id, company_name, website, is_hiring, career_page_url,
			 job_roles, job_count, hiring_summary, detection_method)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), company.Name, company.Website,
		result.IsHiring, result.CareerPageURL,
		result.JobRoles, result.JobCount,
		result.HiringSummary, result.DetectionMethod,
	)
	if err != nil {
		return fmt.Errorf("failed to save check for %s: %w", company.Name, err)
	}
	return nil
}

// GetLatest retrieves the most recent check for a company, or nil when
// the company has never been checked.
func (s *Store) GetLatest(ctx context.Context, companyName string) (*CheckRecord, error) {
	var record CheckRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_name, COALESCE(website, ''), is_hiring,
			COALESCE(career_page_url, ''), job_roles, job_count,
			COALESCE(hiring_summary, ''), detection_method, checked_at
		 FROM hiring_checks
		 WHERE company_name = $1
		 ORDER BY checked_at DESC LIMIT 1`,
		companyName,
	).Scan(&record.ID, &record.CompanyName, &record.Website, &record.IsHiring,
		&record.CareerPageURL, &record.JobRoles, &record.JobCount,
		&record.HiringSummary, &record.DetectionMethod, &record.CheckedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest check: %w", err)
	}
	return &record, nil
}

// CheckFilters holds optional filters for listing checks.
type CheckFilters struct {
	Company    string
	Method     string
	OnlyHiring bool
	Limit      int
}

// ListChecks retrieves recent checks with optional filters.
func (s *Store) ListChecks(ctx context.Context, filters CheckFilters) ([]CheckRecord, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, company_name, COALESCE(website, ''), is_hiring,
			COALESCE(career_page_url, ''), job_roles, job_count,
			COALESCE(hiring_summary, ''), detection_method, checked_at
		FROM hiring_checks WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Company != "" {
		query += fmt.Sprintf(" AND company_name ILIKE $%d", argNum)
		args = append(args, "%"+filters.Company+"%")
		argNum++
	}
	if filters.Method != "" {
		query += fmt.Sprintf(" AND detection_method = $%d", argNum)
		args = append(args, filters.Method)
		argNum++
	}
	if filters.OnlyHiring {
		query += " AND is_hiring"
	}

	query += fmt.Sprintf(" ORDER BY checked_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var record CheckRecord
		if err := rows.Scan(&record.ID, &record.CompanyName, &record.Website,
			&record.IsHiring, &record.CareerPageURL, &record.JobRoles,
			&record.JobCount, &record.HiringSummary, &record.DetectionMethod,
			&record.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteChecks removes all checks for a company, returning how many
// rows were deleted.
func (s *Store) DeleteChecks(ctx context.Context, companyName string) (int64, error) {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM hiring_checks WHERE company_name = $1`, companyName)
	if err != nil {
		return 0, fmt.Errorf("failed to delete checks: %w", err)
	}
	return result.RowsAffected(), nil
}
