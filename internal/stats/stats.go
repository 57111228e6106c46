// Package stats derives per-user application statistics. Figures are
// recomputed from the store on every call; nothing is cached.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/khrees2412/jobseeker/pkg/models"
)

// WeeklyWindow is how far back weeklyApplications looks
const WeeklyWindow = 7 * 24 * time.Hour

// Stats is the derived statistics object for one owner
type Stats struct {
	Total              int `json:"total"`
	Applied            int `json:"applied"`
	InReview           int `json:"inReview"`
	Interview          int `json:"interview"`
	Offer              int `json:"offer"`
	Rejected           int `json:"rejected"`
	ResponseRate       int `json:"responseRate"`
	WeeklyApplications int `json:"weeklyApplications"`
}

// Source is the read side of the record store the aggregator needs
type Source interface {
	CountByStatus(ctx context.Context, ownerID string) (map[string]int, error)
	CountAppliedBetween(ctx context.Context, ownerID string, from, to time.Time) (int, error)
}

// Aggregator computes Stats from a Source
type Aggregator struct {
	source Source
	now    func() time.Time
}

// NewAggregator creates an aggregator reading from source
func NewAggregator(source Source) *Aggregator {
	return &Aggregator{source: source, now: time.Now}
}

// WithClock replaces the aggregator's clock
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Compute returns the statistics for ownerID as of now. Total is summed
// from the same grouped read as the status counts, so the two always agree.
func (a *Aggregator) Compute(ctx context.Context, ownerID string) (Stats, error) {
	counts, err := a.source.CountByStatus(ctx, ownerID)
	if err != nil {
		return Stats{}, fmt.Errorf("count by status: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	now := a.now()
	weekly, err := a.source.CountAppliedBetween(ctx, ownerID, now.Add(-WeeklyWindow), now)
	if err != nil {
		return Stats{}, fmt.Errorf("count weekly applications: %w", err)
	}

	return Summarize(total, counts, weekly), nil
}

// Summarize folds raw status counts into Stats. Status values outside the
// fixed set are ignored.
func Summarize(total int, counts map[string]int, weekly int) Stats {
	s := Stats{Total: total, WeeklyApplications: weekly}
	for status, n := range counts {
		if c := s.counter(models.Status(status)); c != nil {
			*c += n
		}
	}
	s.ResponseRate = ResponseRate(total, s.InReview+s.Interview+s.Offer+s.Rejected)
	return s
}

// ResponseRate is the rounded percentage of responded applications, 0 when
// there are none.
func ResponseRate(total, responded int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(responded) * 100 / float64(total)))
}

func (s *Stats) counter(status models.Status) *int {
	switch status {
	case models.StatusApplied:
		return &s.Applied
	case models.StatusInReview:
		return &s.InReview
	case models.StatusInterview:
		return &s.Interview
	case models.StatusOffer:
		return &s.Offer
	case models.StatusRejected:
		return &s.Rejected
	}
	return nil
}
