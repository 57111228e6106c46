package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the stage a job application has reached
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInReview  Status = "In Review"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// Statuses lists every status in pipeline order
var Statuses = []Status{StatusApplied, StatusInReview, StatusInterview, StatusOffer, StatusRejected}

// Valid reports whether s is one of the fixed statuses
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusInReview, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// ParseStatus matches s against the fixed statuses ignoring case and
// surrounding whitespace, so CLI input like "in review" resolves.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// JobType is the kind of employment a posting offers
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
	JobTypeRemote     JobType = "Remote"
)

// JobTypes lists every job type
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}

// Valid reports whether t is one of the fixed job types
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote:
		return true
	}
	return false
}

// ParseJobType matches s against the fixed job types ignoring case
func ParseJobType(s string) (JobType, error) {
	s = strings.TrimSpace(s)
	for _, jt := range JobTypes {
		if strings.EqualFold(string(jt), s) {
			return jt, nil
		}
	}
	return "", fmt.Errorf("invalid job type %q", s)
}

// JobApplication is a single application owned by one user
type JobApplication struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Status      Status    `json:"status"`
	DateApplied time.Time `json:"dateApplied"`
	URL         string    `json:"url"`
	Notes       string    `json:"notes"`
	Salary      string    `json:"salary"`
	Location    string    `json:"location"`
	JobType     JobType   `json:"jobType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// DaysAgo is derived on read and never stored
	DaysAgo int `json:"daysAgo"`
}

// StampDaysAgo sets DaysAgo to the whole number of days between
// DateApplied and now.
func (j *JobApplication) StampDaysAgo(now time.Time) {
	diff := now.Sub(j.DateApplied)
	if diff < 0 {
		diff = -diff
	}
	j.DaysAgo = int(diff / (24 * time.Hour))
}

// CourseCompletion records a finished course
type CourseCompletion struct {
	CourseName  string    `json:"courseName"`
	Platform    string    `json:"platform"`
	CompletedAt time.Time `json:"completedAt"`
	XPEarned    int       `json:"xpEarned"`
}

// ChallengeCompletion records a finished daily challenge
type ChallengeCompletion struct {
	ChallengeID string    `json:"challengeId"`
	CompletedAt time.Time `json:"completedAt"`
	XPEarned    int       `json:"xpEarned"`
}

// UpskillProgress holds the running upskill totals
type UpskillProgress struct {
	TotalCourses      int `json:"totalCourses"`
	TotalChallenges   int `json:"totalChallenges"`
	ResourcesAccessed int `json:"resourcesAccessed"`
}

// User represents an account and its gamification state
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PasswordHash    string `json:"-"`
	Role            string `json:"role"`
	Location        string `json:"location"`
	Phone           string `json:"phone"`
	ProfileComplete int    `json:"profileComplete"`
	SkillsCount     int    `json:"skillsCount"`
	YearsExperience int    `json:"yearsExperience"`

	XP            int `json:"xp"`
	TotalXPEarned int `json:"totalXPEarned"`

	CoursesCompleted    []CourseCompletion    `json:"coursesCompleted"`
	ChallengesCompleted []ChallengeCompletion `json:"challengesCompleted"`
	LastChallengeDate   *time.Time            `json:"lastChallengeDate"`
	CareerInterests     []string              `json:"careerInterests"`
	UpskillProgress     UpskillProgress       `json:"upskillProgress"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
