package api

import (
	"net/http"

	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/internal/gamification"
)

type interestsRequest struct {
	Interests []string `json:"interests"`
}

func (rt *Router) upskillProgress(w http.ResponseWriter, r *http.Request) {
	p, err := rt.ledger.Progress(r.Context(), userID(r))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// updateUpskillProgress only changes career interests. Totals sent by
// the client are ignored since they are derived from the completion lists.
func (rt *Router) updateUpskillProgress(w http.ResponseWriter, r *http.Request) {
	var req interestsRequest
	if err := decode(r, &req); err != nil {
		rt.respondError(w, r, err)
		return
	}

	if req.Interests != nil {
		if _, err := rt.ledger.UpdateCareerInterests(r.Context(), userID(r), req.Interests); err != nil {
			rt.respondError(w, r, err)
			return
		}
	}

	p, err := rt.ledger.Progress(r.Context(), userID(r))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message":         "Progress updated successfully",
		"upskillProgress": p.UpskillProgress,
	})
}

func (rt *Router) completeCourse(w http.ResponseWriter, r *http.Request) {
	var in gamification.CourseInput
	if err := decode(r, &in); err != nil {
		rt.respondError(w, r, err)
		return
	}

	res, err := rt.ledger.CompleteCourse(r.Context(), userID(r), in)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message":      "Course completed successfully",
		"courseName":   res.CourseName,
		"totalCourses": res.TotalCourses,
	})
}

func (rt *Router) dailyChallenge(w http.ResponseWriter, r *http.Request) {
	dc, err := rt.ledger.DailyChallenge(r.Context(), userID(r))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dc)
}

func (rt *Router) completeChallenge(w http.ResponseWriter, r *http.Request) {
	res, err := rt.ledger.CompleteChallenge(r.Context(), userID(r))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message":         "Challenge completed successfully",
		"totalChallenges": res.TotalChallenges,
	})
}

func (rt *Router) trackResource(w http.ResponseWriter, r *http.Request) {
	var in gamification.ResourceInput
	if err := decode(r, &in); err != nil {
		rt.respondError(w, r, err)
		return
	}

	total, err := rt.ledger.TrackResource(r.Context(), userID(r), in)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message":        "Resource access tracked",
		"totalResources": total,
	})
}

func (rt *Router) careerInterests(w http.ResponseWriter, r *http.Request) {
	var req interestsRequest
	if err := decode(r, &req); err != nil {
		rt.respondError(w, r, apperr.Validation("Valid interests array required"))
		return
	}

	interests, err := rt.ledger.UpdateCareerInterests(r.Context(), userID(r), req.Interests)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message":   "Career interests updated successfully",
		"interests": interests,
	})
}

func (rt *Router) learningHistory(w http.ResponseWriter, r *http.Request) {
	h, err := rt.ledger.LearningHistory(r.Context(), userID(r))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}
