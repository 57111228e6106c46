package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/khrees2412/jobseeker/internal/jobquery"
	"github.com/khrees2412/jobseeker/pkg/models"
	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate is returned when a unique constraint rejects a write
var ErrDuplicate = errors.New("duplicate record")

// Store is the record store for users and job applications. Every
// method is a single statement or a single transaction scoped to one
// user, so each call is atomic on its own.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an open database
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

const applicationColumns = `id, user_id, company, position, status, date_applied, url, notes,
	salary, location, job_type, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.JobApplication, error) {
	app := &models.JobApplication{}
	var status, jobType string
	err := row.Scan(&app.ID, &app.UserID, &app.Company, &app.Position, &status,
		&app.DateApplied, &app.URL, &app.Notes, &app.Salary, &app.Location,
		&jobType, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	app.Status = models.Status(status)
	app.JobType = models.JobType(jobType)
	return app, nil
}

// Job application operations

// CreateJobApplication inserts app, setting CreatedAt and UpdatedAt
func (s *Store) CreateJobApplication(ctx context.Context, app *models.JobApplication) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	query := `INSERT INTO job_applications (` + applicationColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, app.ID, app.UserID, app.Company, app.Position,
		string(app.Status), formatTime(app.DateApplied), app.URL, app.Notes, app.Salary,
		app.Location, string(app.JobType), formatTime(app.CreatedAt), formatTime(app.UpdatedAt))
	return err
}

// GetJobApplication returns the application with id, or nil if none exists
func (s *Store) GetJobApplication(ctx context.Context, id string) (*models.JobApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE id=?`
	app, err := scanApplication(s.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return app, err
}

// UpdateJobApplication writes every mutable field of app and touches
// UpdatedAt. The owner column is never rewritten.
func (s *Store) UpdateJobApplication(ctx context.Context, app *models.JobApplication) error {
	app.UpdatedAt = time.Now().UTC()

	query := `UPDATE job_applications SET company=?, position=?, status=?, date_applied=?,
			  url=?, notes=?, salary=?, location=?, job_type=?, updated_at=?
			  WHERE id=? AND user_id=?`
	res, err := s.DB.ExecContext(ctx, query, app.Company, app.Position, string(app.Status),
		formatTime(app.DateApplied), app.URL, app.Notes, app.Salary, app.Location,
		string(app.JobType), formatTime(app.UpdatedAt), app.ID, app.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteJobApplication hard-deletes the application with id
func (s *Store) DeleteJobApplication(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM job_applications WHERE id=?`, id)
	return err
}

// ListJobApplications runs q and returns one page of results
func (s *Store) ListJobApplications(ctx context.Context, q jobquery.Query) ([]*models.JobApplication, error) {
	where, args := whereClause(q)
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE ` + where +
		` ORDER BY ` + orderClause(q.Sort) + ` LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Skip)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []*models.JobApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// CountJobApplications counts every record matching q's filters,
// ignoring pagination.
func (s *Store) CountJobApplications(ctx context.Context, q jobquery.Query) (int, error) {
	where, args := whereClause(q)
	var total int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_applications WHERE `+where, args...).Scan(&total)
	return total, err
}

// CountApplications counts all records owned by ownerID
func (s *Store) CountApplications(ctx context.Context, ownerID string) (int, error) {
	var total int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_applications WHERE user_id=?`, ownerID).Scan(&total)
	return total, err
}

// CountByStatus groups ownerID's records by raw status value
func (s *Store) CountByStatus(ctx context.Context, ownerID string) (map[string]int, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM job_applications WHERE user_id=? GROUP BY status`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountAppliedBetween counts ownerID's records with from <= date_applied <= to
func (s *Store) CountAppliedBetween(ctx context.Context, ownerID string, from, to time.Time) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_applications WHERE user_id=? AND date_applied >= ? AND date_applied <= ?`,
		ownerID, formatTime(from), formatTime(to)).Scan(&n)
	return n, err
}

func whereClause(q jobquery.Query) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{q.OwnerID}

	if q.StatusFilter != "" {
		conds = append(conds, "status = ?")
		args = append(args, q.StatusFilter)
	}
	if q.SearchFilter != "" {
		conds = append(conds, "(instr(fold(company), fold(?)) > 0 OR instr(fold(position), fold(?)) > 0)")
		args = append(args, q.SearchFilter, q.SearchFilter)
	}

	return strings.Join(conds, " AND "), args
}

func orderClause(sort jobquery.Sort) string {
	var column string
	switch sort.Field {
	case jobquery.SortCompany:
		column = "company"
	case jobquery.SortStatus:
		column = "status"
	default:
		column = "date_applied"
	}

	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	// id breaks ties so repeated queries return the same order
	return column + " " + direction + ", id ASC"
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
