package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/internal/database"
	"github.com/khrees2412/jobseeker/internal/jobquery"
	"github.com/khrees2412/jobseeker/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingAwarder struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingAwarder) AwardApplicationXP(ctx context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingAwarder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...)
}

type fixture struct {
	svc   *Service
	store *database.Store
	xp    *recordingAwarder
	owner string
	other string
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	f := &fixture{
		store: store,
		xp:    &recordingAwarder{},
		now:   time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	f.owner = createUser(t, store, "owner@example.com")
	f.other = createUser(t, store, "other@example.com")
	f.svc = NewService(store, f.xp, zap.NewNop(), nil).WithClock(func() time.Time { return f.now })
	return f
}

func createUser(t *testing.T, store *database.Store, email string) string {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Name: "User", Email: email, PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u.ID
}

func ptr[T any](v T) *T { return &v }

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)

	app, err := f.svc.Create(context.Background(), f.owner, CreateInput{Company: "  Acme ", Position: "Engineer"})
	require.NoError(t, err)

	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, models.StatusApplied, app.Status)
	assert.Equal(t, models.JobTypeFullTime, app.JobType)
	assert.True(t, app.DateApplied.Equal(f.now))
	assert.Equal(t, f.owner, app.UserID)
	assert.Equal(t, 0, app.DaysAgo)
	assert.Equal(t, []string{f.owner}, f.xp.calls())
}

func TestCreateKeepsSuppliedFields(t *testing.T) {
	f := newFixture(t)
	applied := f.now.Add(-72 * time.Hour)

	app, err := f.svc.Create(context.Background(), f.owner, CreateInput{
		Company:     "Acme",
		Position:    "Engineer",
		Status:      models.StatusInterview,
		DateApplied: &applied,
		JobType:     models.JobTypeContract,
		Salary:      "$100k",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInterview, app.Status)
	assert.Equal(t, models.JobTypeContract, app.JobType)
	assert.Equal(t, 3, app.DaysAgo)
	assert.Equal(t, "$100k", app.Salary)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"missing company", CreateInput{Position: "Engineer"}, "company"},
		{"blank position", CreateInput{Company: "Acme", Position: "   "}, "position"},
		{"bad status", CreateInput{Company: "Acme", Position: "Engineer", Status: "Ghosted"}, "status"},
		{"bad job type", CreateInput{Company: "Acme", Position: "Engineer", JobType: "Gig"}, "jobType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(context.Background(), f.owner, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))

			fields := apperr.FieldsOf(err)
			require.NotEmpty(t, fields)
			assert.Equal(t, tt.field, fields[0].Field)

			total, _ := f.store.CountApplications(context.Background(), f.owner)
			assert.Zero(t, total, "nothing may be written on validation failure")
			assert.Empty(t, f.xp.calls())
		})
	}
}

func TestOwnershipGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.svc.Create(ctx, f.owner, CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	t.Run("get by non-owner is forbidden", func(t *testing.T) {
		got, err := f.svc.Get(ctx, f.other, app.ID)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))
		assert.Equal(t, "Not authorized to access this job application", apperr.MessageOf(err))
	})

	t.Run("update by non-owner is forbidden", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.other, app.ID, UpdateInput{Status: ptr(models.StatusOffer)})
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		stored, _ := f.store.GetJobApplication(ctx, app.ID)
		assert.Equal(t, models.StatusApplied, stored.Status)
	})

	t.Run("delete by non-owner is forbidden", func(t *testing.T) {
		err := f.svc.Delete(ctx, f.other, app.ID)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		stored, _ := f.store.GetJobApplication(ctx, app.ID)
		assert.NotNil(t, stored)
	})

	t.Run("missing record is not found", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.owner, uuid.NewString())
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		err = f.svc.Delete(ctx, f.other, uuid.NewString())
		assert.True(t, errors.Is(err, apperr.ErrNotFound), "existence is checked before ownership")
	})

	t.Run("owner can read", func(t *testing.T) {
		got, err := f.svc.Get(ctx, f.owner, app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
	})
}

func TestCheckOwnership(t *testing.T) {
	rec := &models.JobApplication{ID: "a", UserID: "u1"}

	assert.Equal(t, Allowed, CheckOwnership(rec, "u1"))
	assert.Equal(t, Forbidden, CheckOwnership(rec, "u2"))
	assert.Equal(t, NotFound, CheckOwnership(nil, "u1"))
	assert.Equal(t, "forbidden", Forbidden.String())
}

func TestUpdatePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.svc.Create(ctx, f.owner, CreateInput{Company: "Acme", Position: "Engineer", Notes: "referral"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.owner, app.ID, UpdateInput{Status: ptr(models.StatusInReview), Location: ptr(" Berlin ")})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInReview, updated.Status)
	assert.Equal(t, "Berlin", updated.Location)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, "referral", updated.Notes)

	stored, _ := f.store.GetJobApplication(ctx, app.ID)
	assert.Equal(t, models.StatusInReview, stored.Status)
	assert.Equal(t, f.owner, stored.UserID)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.svc.Create(ctx, f.owner, CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.owner, app.ID, UpdateInput{Company: ptr("  ")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.svc.Update(ctx, f.owner, app.ID, UpdateInput{Status: ptr(models.Status("Hired"))})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	stored, _ := f.store.GetJobApplication(ctx, app.ID)
	assert.Equal(t, "Acme", stored.Company)
	assert.Equal(t, models.StatusApplied, stored.Status)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.svc.Create(ctx, f.owner, CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.owner, app.ID))

	_, err = f.svc.Get(ctx, f.owner, app.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListPagesAndStampsDaysAgo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 125; i++ {
		applied := f.now.Add(-time.Duration(i) * time.Hour)
		_, err := f.svc.Create(ctx, f.owner, CreateInput{Company: "Acme", Position: "Engineer", DateApplied: &applied})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, f.other, CreateInput{Company: "Elsewhere", Position: "Engineer"})
	require.NoError(t, err)

	res, err := f.svc.List(ctx, f.owner, jobquery.Params{Page: "2", Limit: "50"})
	require.NoError(t, err)

	assert.Equal(t, 125, res.Total)
	assert.Equal(t, 50, res.Count)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 3, res.Pages)
	// record index 50 is 50 hours old
	assert.Equal(t, 2, res.Records[0].DaysAgo)

	again, err := f.svc.List(ctx, f.owner, jobquery.Params{Page: "2", Limit: "50"})
	require.NoError(t, err)
	for i := range res.Records {
		assert.Equal(t, res.Records[i].ID, again.Records[i].ID)
	}
}

func TestListLenientParams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.owner, CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	res, err := f.svc.List(ctx, f.owner, jobquery.Params{Page: "abc", Limit: "-3", Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Pages)
}

func TestStatsEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.Stats(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 0, before.Total)

	_, err = f.svc.Create(ctx, f.owner, CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	after, err := f.svc.Stats(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Total)
	assert.Equal(t, 1, after.Applied)
	assert.Equal(t, 0, after.ResponseRate)
	assert.Equal(t, 1, after.WeeklyApplications)
}

func TestStatsWeeklyWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	eight := f.now.Add(-8 * 24 * time.Hour)
	six := f.now.Add(-6 * 24 * time.Hour)
	_, err := f.svc.Create(ctx, f.owner, CreateInput{Company: "Old", Position: "Engineer", DateApplied: &eight})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.owner, CreateInput{Company: "New", Position: "Engineer", DateApplied: &six, Status: models.StatusRejected})
	require.NoError(t, err)

	st, err := f.svc.Stats(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.WeeklyApplications)
	assert.Equal(t, 50, st.ResponseRate)
}

func TestStoreFailureIsInternal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zap.ErrorLevel)
	svc := NewService(database.NewStore(db), &recordingAwarder{}, zap.New(core), nil)

	mock.ExpectQuery("SELECT (.+) FROM job_applications WHERE id=").
		WillReturnError(errors.New("dial tcp: connection refused"))

	_, err = svc.Get(context.Background(), "u1", "a1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInternal))
	assert.Equal(t, "Server error", apperr.MessageOf(err))
	assert.NotContains(t, apperr.MessageOf(err), "connection refused")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to load job application", logs.All()[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStoreFailureSkipsXP(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	xp := &recordingAwarder{}
	svc := NewService(database.NewStore(db), xp, zap.NewNop(), nil)

	mock.ExpectExec("INSERT INTO job_applications").WillReturnError(errors.New("disk I/O error"))

	_, err = svc.Create(context.Background(), "u1", CreateInput{Company: "Acme", Position: "Engineer"})
	assert.True(t, errors.Is(err, apperr.ErrInternal))
	assert.Empty(t, xp.calls())
	assert.NoError(t, mock.ExpectationsWereMet())
}
