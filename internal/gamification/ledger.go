// Package gamification awards XP and tracks the upskill state of a user:
// the once-per-day challenge, completed courses and accessed resources.
package gamification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/internal/metrics"
	"github.com/khrees2412/jobseeker/pkg/models"
	"go.uber.org/zap"
)

// ApplicationXP is awarded for every created job application
const ApplicationXP = 10

const defaultAwardTimeout = 10 * time.Second

// Store is the persistence the ledger needs
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	AddXP(ctx context.Context, userID string, amount int) error
	CompleteChallenge(ctx context.Context, userID string, c models.ChallengeCompletion, dayStart, dayEnd time.Time) (int, bool, error)
	AddCourse(ctx context.Context, userID string, c models.CourseCompletion) (int, error)
	IncrementResources(ctx context.Context, userID string) (int, error)
	SetCareerInterests(ctx context.Context, userID string, interests []string) error
}

// Ledger owns every write to a user's XP and upskill state
type Ledger struct {
	store        Store
	logger       *zap.Logger
	metrics      *metrics.Collector
	loc          *time.Location
	now          func() time.Time
	awardTimeout time.Duration

	wg sync.WaitGroup
}

// Option configures a Ledger
type Option func(*Ledger)

// WithLocation sets the zone whose midnight separates challenge days
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithMetrics attaches a metrics collector
func WithMetrics(m *metrics.Collector) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithAwardTimeout bounds a single background XP award
func WithAwardTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.awardTimeout = d
		}
	}
}

// NewLedger creates a Ledger. Challenge days default to UTC.
func NewLedger(store Store, logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		store:        store,
		logger:       logger,
		loc:          time.UTC,
		now:          time.Now,
		awardTimeout: defaultAwardTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AwardApplicationXP grants ApplicationXP to userID in the background.
// The award outlives ctx's cancellation but not its values. A failure is
// logged and counted, never retried and never returned.
func (l *Ledger) AwardApplicationXP(ctx context.Context, userID string) {
	ctx = context.WithoutCancel(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, l.awardTimeout)
		defer cancel()

		if err := l.store.AddXP(ctx, userID, ApplicationXP); err != nil {
			l.metrics.XPAwardFailed()
			l.logger.Warn("failed to award application xp",
				zap.String("user_id", userID),
				zap.Int("amount", ApplicationXP),
				zap.Error(err),
			)
			return
		}
		l.logger.Debug("awarded application xp", zap.String("user_id", userID), zap.Int("amount", ApplicationXP))
	}()
}

// Wait blocks until every in-flight award has finished
func (l *Ledger) Wait() {
	l.wg.Wait()
}

// ChallengeResult is returned by a successful CompleteChallenge
type ChallengeResult struct {
	ChallengeID     string    `json:"challengeId"`
	CompletedAt     time.Time `json:"completedAt"`
	TotalChallenges int       `json:"totalChallenges"`
}

// CompleteChallenge records today's challenge for userID. A second call
// on the same calendar day returns a Conflict error.
func (l *Ledger) CompleteChallenge(ctx context.Context, userID string) (*ChallengeResult, error) {
	user, err := l.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := l.now().In(l.loc)
	if user.LastChallengeDate != nil && SameDay(*user.LastChallengeDate, now, l.loc) {
		return nil, apperr.Conflict("Challenge already completed today")
	}

	dayStart := StartOfDay(now, l.loc)
	c := models.ChallengeCompletion{
		ChallengeID: fmt.Sprintf("challenge_%d", now.UnixMilli()),
		CompletedAt: now,
	}

	total, recorded, err := l.store.CompleteChallenge(ctx, userID, c, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, l.internal("failed to complete challenge", err, userID)
	}
	if !recorded {
		// a concurrent call won the day
		return nil, apperr.Conflict("Challenge already completed today")
	}

	l.metrics.ChallengeCompleted()
	l.logger.Info("challenge completed", zap.String("user_id", userID), zap.Int("total", total))

	return &ChallengeResult{ChallengeID: c.ChallengeID, CompletedAt: now, TotalChallenges: total}, nil
}

// CompletedToday reports whether user's last challenge falls on today
func (l *Ledger) CompletedToday(user *models.User) bool {
	if user.LastChallengeDate == nil {
		return false
	}
	return SameDay(*user.LastChallengeDate, l.now(), l.loc)
}

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

func (l *Ledger) user(ctx context.Context, userID string) (*models.User, error) {
	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return nil, l.internal("failed to load user", err, userID)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (l *Ledger) internal(msg string, err error, userID string) error {
	l.logger.Error(msg, zap.String("user_id", userID), zap.Error(err))
	return apperr.Internal(msg, err)
}
