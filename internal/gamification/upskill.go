package gamification

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/internal/validation"
	"github.com/khrees2412/jobseeker/pkg/models"
	"go.uber.org/zap"
)

// DefaultPlatform is used when a course completion names no platform
const DefaultPlatform = "YouTube"

// Challenge is one entry of the weekly challenge catalog
type Challenge struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// catalog is indexed by time.Weekday, Sunday first
var catalog = [7]Challenge{
	{Title: "Watch a Tutorial", Description: "Watch a 10-minute coding tutorial on YouTube", Type: "video"},
	{Title: "Practice Coding", Description: "Complete one coding exercise on any platform", Type: "practice"},
	{Title: "Learn Something New", Description: "Read an article about a new technology or framework", Type: "reading"},
	{Title: "Resume Update", Description: "Add a new skill or update your resume", Type: "career"},
	{Title: "LinkedIn Activity", Description: "Connect with 3 professionals in your field", Type: "networking"},
	{Title: "Skill Practice", Description: "Spend 15 minutes practicing a technical skill", Type: "practice"},
	{Title: "Career Research", Description: "Research a company you want to work for", Type: "research"},
}

// Progress summarises a user's upskill state
type Progress struct {
	CoursesCompleted        int                    `json:"coursesCompleted"`
	ChallengesCompleted     int                    `json:"challengesCompleted"`
	Interests               []string               `json:"interests"`
	DailyChallengeCompleted bool                   `json:"dailyChallengeCompleted"`
	UpskillProgress         models.UpskillProgress `json:"upskillProgress"`
}

// DailyChallenge is today's catalog entry and whether it is done
type DailyChallenge struct {
	Challenge Challenge `json:"challenge"`
	Completed bool      `json:"completed"`
}

// History lists completions newest first
type History struct {
	Courses    []models.CourseCompletion    `json:"courses"`
	Challenges []models.ChallengeCompletion `json:"challenges"`
}

// CourseInput describes a finished course
type CourseInput struct {
	CourseName string `json:"courseName" validate:"min=1,max=200"`
	Platform   string `json:"platform" validate:"max=100"`
}

// CourseResult is returned by CompleteCourse
type CourseResult struct {
	CourseName   string `json:"courseName"`
	TotalCourses int    `json:"totalCourses"`
}

// ResourceInput describes an accessed learning resource. Both fields are
// informational only.
type ResourceInput struct {
	ResourceType string `json:"resourceType"`
	ResourceName string `json:"resourceName"`
}

// Progress returns userID's upskill summary
func (l *Ledger) Progress(ctx context.Context, userID string) (*Progress, error) {
	user, err := l.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	interests := user.CareerInterests
	if interests == nil {
		interests = []string{}
	}
	return &Progress{
		CoursesCompleted:        len(user.CoursesCompleted),
		ChallengesCompleted:     len(user.ChallengesCompleted),
		Interests:               interests,
		DailyChallengeCompleted: l.CompletedToday(user),
		UpskillProgress:         user.UpskillProgress,
	}, nil
}

// DailyChallenge returns today's challenge for userID
func (l *Ledger) DailyChallenge(ctx context.Context, userID string) (*DailyChallenge, error) {
	user, err := l.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DailyChallenge{
		Challenge: ChallengeFor(l.now().In(l.loc).Weekday()),
		Completed: l.CompletedToday(user),
	}, nil
}

// ChallengeFor returns the catalog entry for day
func ChallengeFor(day time.Weekday) Challenge {
	return catalog[int(day)%len(catalog)]
}

// CompleteCourse appends a course completion for userID
func (l *Ledger) CompleteCourse(ctx context.Context, userID string, in CourseInput) (*CourseResult, error) {
	validation.Trim(&in.CourseName, &in.Platform)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Platform == "" {
		in.Platform = DefaultPlatform
	}

	if _, err := l.user(ctx, userID); err != nil {
		return nil, err
	}

	total, err := l.store.AddCourse(ctx, userID, models.CourseCompletion{
		CourseName:  in.CourseName,
		Platform:    in.Platform,
		CompletedAt: l.now(),
	})
	if err != nil {
		return nil, l.internal("failed to complete course", err, userID)
	}
	return &CourseResult{CourseName: in.CourseName, TotalCourses: total}, nil
}

// TrackResource counts one accessed resource and returns the new total
func (l *Ledger) TrackResource(ctx context.Context, userID string, in ResourceInput) (int, error) {
	n, err := l.store.IncrementResources(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("User not found")
	}
	if err != nil {
		return 0, l.internal("failed to track resource", err, userID)
	}
	l.logger.Debug("resource tracked",
		zap.String("user_id", userID),
		zap.String("resource_type", in.ResourceType),
		zap.String("resource_name", in.ResourceName),
	)
	return n, nil
}

// UpdateCareerInterests replaces userID's interests. A nil slice means
// the caller sent no array and is rejected; blank entries are dropped.
func (l *Ledger) UpdateCareerInterests(ctx context.Context, userID string, interests []string) ([]string, error) {
	if interests == nil {
		return nil, apperr.Validation("Valid interests array required",
			apperr.FieldError{Field: "interests", Message: "Valid interests array required"})
	}

	cleaned := make([]string, 0, len(interests))
	for _, i := range interests {
		if i = strings.TrimSpace(i); i != "" {
			cleaned = append(cleaned, i)
		}
	}

	err := l.store.SetCareerInterests(ctx, userID, cleaned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, l.internal("failed to update career interests", err, userID)
	}
	return cleaned, nil
}

// LearningHistory returns userID's completions sorted newest first
func (l *Ledger) LearningHistory(ctx context.Context, userID string) (*History, error) {
	user, err := l.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses := append([]models.CourseCompletion{}, user.CoursesCompleted...)
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].CompletedAt.After(courses[j].CompletedAt)
	})
	challenges := append([]models.ChallengeCompletion{}, user.ChallengesCompleted...)
	sort.SliceStable(challenges, func(i, j int) bool {
		return challenges[i].CompletedAt.After(challenges[j].CompletedAt)
	})

	return &History{Courses: courses, Challenges: challenges}, nil
}
