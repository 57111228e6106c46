package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/khrees2412/jobseeker/internal/jobquery"
	"github.com/khrees2412/jobseeker/internal/tracker"
)

// createJobRequest accepts bare dates for dateApplied
type createJobRequest struct {
	tracker.CreateInput
	DateApplied *flexibleTime `json:"dateApplied"`
}

type updateJobRequest struct {
	tracker.UpdateInput
	DateApplied *flexibleTime `json:"dateApplied"`
}

func (rt *Router) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decode(r, &req); err != nil {
		rt.respondError(w, r, err)
		return
	}
	in := req.CreateInput
	in.DateApplied = req.DateApplied.ptr()

	record, err := rt.tracker.Create(r.Context(), userID(r), in)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Job application created successfully",
		"data":    record,
	})
}

func (rt *Router) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := rt.tracker.List(r.Context(), userID(r), jobquery.Params{
		Status: q.Get("status"),
		Search: q.Get("search"),
		SortBy: q.Get("sortBy"),
		Page:   q.Get("page"),
		Limit:  q.Get("limit"),
	})
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"count":   result.Count,
		"total":   result.Total,
		"page":    result.Page,
		"pages":   result.Pages,
		"data":    result.Records,
	})
}

func (rt *Router) getJob(w http.ResponseWriter, r *http.Request) {
	record, err := rt.tracker.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": record})
}

func (rt *Router) updateJob(w http.ResponseWriter, r *http.Request) {
	var req updateJobRequest
	if err := decode(r, &req); err != nil {
		rt.respondError(w, r, err)
		return
	}
	in := req.UpdateInput
	in.DateApplied = req.DateApplied.ptr()

	record, err := rt.tracker.Update(r.Context(), userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Job application updated successfully",
		"data":    record,
	})
}

func (rt *Router) deleteJob(w http.ResponseWriter, r *http.Request) {
	if err := rt.tracker.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		rt.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Job application deleted successfully",
		"data":    struct{}{},
	})
}

func (rt *Router) jobStats(w http.ResponseWriter, r *http.Request) {
	s, err := rt.tracker.Stats(r.Context(), userID(r))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": s})
}
