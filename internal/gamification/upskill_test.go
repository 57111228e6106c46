package gamification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProgressAndDailyChallenge(t *testing.T) {
	store, userID := newStore(t)
	// a Monday
	clk := &clock{t: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)}
	ledger := NewLedger(store, zap.NewNop(), WithClock(clk.now))
	ctx := context.Background()

	daily, err := ledger.DailyChallenge(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Practice Coding", daily.Challenge.Title)
	assert.False(t, daily.Completed)

	_, err = ledger.CompleteChallenge(ctx, userID)
	require.NoError(t, err)

	daily, err = ledger.DailyChallenge(ctx, userID)
	require.NoError(t, err)
	assert.True(t, daily.Completed)

	progress, err := ledger.Progress(ctx, userID)
	require.NoError(t, err)
	assert.True(t, progress.DailyChallengeCompleted)
	assert.Equal(t, 1, progress.ChallengesCompleted)
	assert.Equal(t, 1, progress.UpskillProgress.TotalChallenges)
	assert.Equal(t, []string{}, progress.Interests)

	clk.t = clk.t.AddDate(0, 0, 1)
	progress, err = ledger.Progress(ctx, userID)
	require.NoError(t, err)
	assert.False(t, progress.DailyChallengeCompleted)
}

func TestChallengeForCoversTheWeek(t *testing.T) {
	assert.Equal(t, "Watch a Tutorial", ChallengeFor(time.Sunday).Title)
	assert.Equal(t, "Career Research", ChallengeFor(time.Saturday).Title)
}

func TestCompleteCourse(t *testing.T) {
	store, userID := newStore(t)
	ledger := NewLedger(store, zap.NewNop())
	ctx := context.Background()

	res, err := ledger.CompleteCourse(ctx, userID, CourseInput{CourseName: " Go Concurrency "})
	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency", res.CourseName)
	assert.Equal(t, 1, res.TotalCourses)

	res, err = ledger.CompleteCourse(ctx, userID, CourseInput{CourseName: "SQL", Platform: "Coursera"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCourses)

	user, _ := store.GetUser(ctx, userID)
	require.Len(t, user.CoursesCompleted, 2)
	assert.Equal(t, DefaultPlatform, user.CoursesCompleted[0].Platform)
	assert.Equal(t, "Coursera", user.CoursesCompleted[1].Platform)

	_, err = ledger.CompleteCourse(ctx, userID, CourseInput{CourseName: "  "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = ledger.CompleteCourse(ctx, "nobody", CourseInput{CourseName: "Go"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestTrackResource(t *testing.T) {
	store, userID := newStore(t)
	ledger := NewLedger(store, zap.NewNop())
	ctx := context.Background()

	n, err := ledger.TrackResource(ctx, userID, ResourceInput{ResourceType: "video"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ledger.TrackResource(ctx, userID, ResourceInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ledger.TrackResource(ctx, "nobody", ResourceInput{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateCareerInterests(t *testing.T) {
	store, userID := newStore(t)
	ledger := NewLedger(store, zap.NewNop())
	ctx := context.Background()

	_, err := ledger.UpdateCareerInterests(ctx, userID, nil)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	got, err := ledger.UpdateCareerInterests(ctx, userID, []string{" backend ", "", "cloud"})
	require.NoError(t, err)
	assert.Equal(t, []string{"backend", "cloud"}, got)

	progress, err := ledger.Progress(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"backend", "cloud"}, progress.Interests)

	_, err = ledger.UpdateCareerInterests(ctx, "nobody", []string{"x"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestLearningHistoryNewestFirst(t *testing.T) {
	store, userID := newStore(t)
	clk := &clock{t: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)}
	ledger := NewLedger(store, zap.NewNop(), WithClock(clk.now))
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := ledger.CompleteCourse(ctx, userID, CourseInput{CourseName: name})
		require.NoError(t, err)
		_, err = ledger.CompleteChallenge(ctx, userID)
		require.NoError(t, err)
		clk.t = clk.t.AddDate(0, 0, 1)
	}

	history, err := ledger.LearningHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history.Courses, 3)
	require.Len(t, history.Challenges, 3)
	assert.Equal(t, "third", history.Courses[0].CourseName)
	assert.Equal(t, "first", history.Courses[2].CourseName)
	assert.True(t, history.Challenges[0].CompletedAt.After(history.Challenges[1].CompletedAt))
}
