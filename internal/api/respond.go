package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/internal/auth"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusOf maps an error kind to its HTTP status
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a failure envelope. Internal causes are
// logged here and never reach the client.
func (rt *Router) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)

	body := envelope{"success": false, "message": apperr.MessageOf(err)}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["errors"] = fields
	}

	if status == http.StatusInternalServerError {
		fields := []zap.Field{zap.Error(err), zap.String("path", r.URL.Path)}
		if id, ok := auth.UserID(r.Context()); ok {
			fields = append(fields, zap.String("user_id", id))
		}
		rt.logger.Error("request failed", fields...)
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var de *dateError
	if errors.As(err, &de) {
		return apperr.Validation("Please provide a valid date", apperr.FieldError{
			Field:   "dateApplied",
			Message: "Please provide a valid date",
		})
	}
	return apperr.Validation("Invalid request body")
}

type dateError struct{ value string }

func (e *dateError) Error() string { return "invalid date " + e.value }

// flexibleTime accepts RFC 3339 timestamps as well as bare dates
type flexibleTime struct {
	time.Time
}

func (t *flexibleTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &dateError{value: string(b)}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return &dateError{value: s}
}

func (t *flexibleTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// userID returns the id set by authenticate
func userID(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return id
}
