package tracker

import (
	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/pkg/models"
)

// Access is the outcome of an ownership check
type Access int

const (
	Allowed Access = iota
	Forbidden
	NotFound
)

func (a Access) String() string {
	switch a {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	}
	return "unknown"
}

// CheckOwnership decides whether ownerID may act on rec. A nil rec is
// NotFound; existence is checked before ownership.
func CheckOwnership(rec *models.JobApplication, ownerID string) Access {
	if rec == nil {
		return NotFound
	}
	if rec.UserID != ownerID {
		return Forbidden
	}
	return Allowed
}

// accessError turns a denied check into the matching apperr for action
// ("access", "update" or "delete").
func accessError(a Access, action string) error {
	switch a {
	case NotFound:
		return apperr.NotFound("Job application not found")
	case Forbidden:
		return apperr.Forbidden("Not authorized to " + action + " this job application")
	}
	return nil
}
