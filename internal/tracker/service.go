// Package tracker is the job application service. It validates input,
// enforces single-owner access and delegates persistence to a Store.
package tracker

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/internal/jobquery"
	"github.com/khrees2412/jobseeker/internal/metrics"
	"github.com/khrees2412/jobseeker/internal/stats"
	"github.com/khrees2412/jobseeker/internal/validation"
	"github.com/khrees2412/jobseeker/pkg/models"
	"go.uber.org/zap"
)

// Store is the persistence the service needs
type Store interface {
	stats.Source
	CreateJobApplication(ctx context.Context, app *models.JobApplication) error
	GetJobApplication(ctx context.Context, id string) (*models.JobApplication, error)
	UpdateJobApplication(ctx context.Context, app *models.JobApplication) error
	DeleteJobApplication(ctx context.Context, id string) error
	ListJobApplications(ctx context.Context, q jobquery.Query) ([]*models.JobApplication, error)
	CountJobApplications(ctx context.Context, q jobquery.Query) (int, error)
}

// XPAwarder grants creation XP. It must not block and reports nothing:
// a failed award never fails the creation.
type XPAwarder interface {
	AwardApplicationXP(ctx context.Context, userID string)
}

// CreateInput holds the fields of a new application. Company and
// Position are required; everything else has a default.
type CreateInput struct {
	Company     string         `json:"company" validate:"min=1"`
	Position    string         `json:"position" validate:"min=1"`
	Status      models.Status  `json:"status" validate:"omitempty,jobstatus"`
	DateApplied *time.Time     `json:"dateApplied"`
	URL         string         `json:"url"`
	Notes       string         `json:"notes"`
	Salary      string         `json:"salary"`
	Location    string         `json:"location"`
	JobType     models.JobType `json:"jobType" validate:"omitempty,jobtype"`
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Company     *string         `json:"company" validate:"omitnil,min=1"`
	Position    *string         `json:"position" validate:"omitnil,min=1"`
	Status      *models.Status  `json:"status" validate:"omitnil,jobstatus"`
	DateApplied *time.Time      `json:"dateApplied"`
	URL         *string         `json:"url"`
	Notes       *string         `json:"notes"`
	Salary      *string         `json:"salary"`
	Location    *string         `json:"location"`
	JobType     *models.JobType `json:"jobType" validate:"omitnil,jobtype"`
}

// ListResult is one page of a list query
type ListResult struct {
	Records []*models.JobApplication `json:"data"`
	Count   int                      `json:"count"`
	Total   int                      `json:"total"`
	Page    int                      `json:"page"`
	Pages   int                      `json:"pages"`
}

// Service implements the job application operations
type Service struct {
	store   Store
	xp      XPAwarder
	stats   *stats.Aggregator
	logger  *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewService creates a Service. m may be nil.
func NewService(store Store, xp XPAwarder, logger *zap.Logger, m *metrics.Collector) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		xp:      xp,
		stats:   stats.NewAggregator(store),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for defaults, daysAgo and stats
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.stats = s.stats.WithClock(now)
	return s
}

// Create validates in and stores a new application owned by ownerID,
// then hands the XP award off without waiting for it.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.JobApplication, error) {
	validation.Trim(&in.Company, &in.Position, &in.URL, &in.Notes, &in.Salary, &in.Location)
	in.Status = models.Status(strings.TrimSpace(string(in.Status)))
	in.JobType = models.JobType(strings.TrimSpace(string(in.JobType)))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	app := &models.JobApplication{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Company:     in.Company,
		Position:    in.Position,
		Status:      in.Status,
		DateApplied: now,
		URL:         in.URL,
		Notes:       in.Notes,
		Salary:      in.Salary,
		Location:    in.Location,
		JobType:     in.JobType,
	}
	if app.Status == "" {
		app.Status = models.StatusApplied
	}
	if app.JobType == "" {
		app.JobType = models.JobTypeFullTime
	}
	if in.DateApplied != nil && !in.DateApplied.IsZero() {
		app.DateApplied = *in.DateApplied
	}

	if err := s.store.CreateJobApplication(ctx, app); err != nil {
		return nil, s.internal("failed to create job application", err, zap.String("user_id", ownerID))
	}

	s.metrics.ApplicationCreated()
	if s.xp != nil {
		s.xp.AwardApplicationXP(ctx, ownerID)
	}

	app.StampDaysAgo(now)
	return app, nil
}

// List returns one page of ownerID's applications. Parameters are parsed
// leniently by jobquery.
func (s *Service) List(ctx context.Context, ownerID string, p jobquery.Params) (*ListResult, error) {
	q := jobquery.Build(ownerID, p)

	records, err := s.store.ListJobApplications(ctx, q)
	if err != nil {
		return nil, s.internal("failed to list job applications", err, zap.String("user_id", ownerID))
	}
	total, err := s.store.CountJobApplications(ctx, q)
	if err != nil {
		return nil, s.internal("failed to count job applications", err, zap.String("user_id", ownerID))
	}

	now := s.now()
	for _, r := range records {
		r.StampDaysAgo(now)
	}

	return &ListResult{
		Records: records,
		Count:   len(records),
		Total:   total,
		Page:    q.Page,
		Pages:   jobquery.Pages(total, q.Limit),
	}, nil
}

// Get returns the application with id if ownerID owns it
func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.JobApplication, error) {
	app, err := s.load(ctx, ownerID, id, "access")
	if err != nil {
		return nil, err
	}
	app.StampDaysAgo(s.now())
	return app, nil
}

// Update applies the non-nil fields of in to ownerID's application id.
// Input is validated before the record is read.
func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*models.JobApplication, error) {
	validation.Trim(in.Company, in.Position, in.URL, in.Notes, in.Salary, in.Location)
	if in.Status != nil {
		*in.Status = models.Status(strings.TrimSpace(string(*in.Status)))
	}
	if in.JobType != nil {
		*in.JobType = models.JobType(strings.TrimSpace(string(*in.JobType)))
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	app, err := s.load(ctx, ownerID, id, "update")
	if err != nil {
		return nil, err
	}

	in.apply(app)

	if err := s.store.UpdateJobApplication(ctx, app); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// deleted between read and write
			return nil, apperr.NotFound("Job application not found")
		}
		return nil, s.internal("failed to update job application", err, zap.String("id", id))
	}

	app.StampDaysAgo(s.now())
	return app, nil
}

// Delete hard-deletes ownerID's application id
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.load(ctx, ownerID, id, "delete"); err != nil {
		return err
	}
	if err := s.store.DeleteJobApplication(ctx, id); err != nil {
		return s.internal("failed to delete job application", err, zap.String("id", id))
	}
	return nil
}

// Stats recomputes ownerID's statistics from the store
func (s *Service) Stats(ctx context.Context, ownerID string) (stats.Stats, error) {
	st, err := s.stats.Compute(ctx, ownerID)
	if err != nil {
		return stats.Stats{}, s.internal("failed to compute job stats", err, zap.String("user_id", ownerID))
	}
	return st, nil
}

func (s *Service) load(ctx context.Context, ownerID, id, action string) (*models.JobApplication, error) {
	app, err := s.store.GetJobApplication(ctx, id)
	if err != nil {
		return nil, s.internal("failed to load job application", err, zap.String("id", id))
	}
	if access := CheckOwnership(app, ownerID); access != Allowed {
		return nil, accessError(access, action)
	}
	return app, nil
}

func (s *Service) internal(msg string, err error, fields ...zap.Field) error {
	s.logger.Error(msg, append(fields, zap.Error(err))...)
	return apperr.Internal(msg, err)
}

func (in UpdateInput) apply(app *models.JobApplication) {
	if in.Company != nil {
		app.Company = *in.Company
	}
	if in.Position != nil {
		app.Position = *in.Position
	}
	if in.Status != nil {
		app.Status = *in.Status
	}
	if in.DateApplied != nil {
		app.DateApplied = *in.DateApplied
	}
	if in.URL != nil {
		app.URL = *in.URL
	}
	if in.Notes != nil {
		app.Notes = *in.Notes
	}
	if in.Salary != nil {
		app.Salary = *in.Salary
	}
	if in.Location != nil {
		app.Location = *in.Location
	}
	if in.JobType != nil {
		app.JobType = *in.JobType
	}
}
