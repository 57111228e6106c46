package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/khrees2412/jobseeker/internal/app"
	"github.com/khrees2412/jobseeker/internal/auth"
	"github.com/khrees2412/jobseeker/internal/config"
	"github.com/khrees2412/jobseeker/internal/database"
	"github.com/khrees2412/jobseeker/internal/metrics"
	"github.com/khrees2412/jobseeker/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	app     *app.App
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	a, err := app.New(&config.Config{
		DatabasePath: filepath.Join(t.TempDir(), "api.db"),
		Server:       config.ServerConfig{RequestTimeout: 5 * time.Second},
		Auth:         config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Log:          config.LogConfig{Level: "error"},
		Challenge:    config.ChallengeConfig{Timezone: "UTC"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	return &testServer{app: a, handler: NewRouter(a).Setup()}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return do(t, s.handler, method, path, token, body)
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

// signUp registers a user and returns its token
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Test User",
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return body["token"].(string)
}

func (s *testServer) createJob(t *testing.T, token string, fields map[string]any) map[string]any {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/api/jobs", token, fields)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return body["data"].(map[string]any)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])

	rec, body = s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	token := s.signUp(t, "Ada@Example.com")

	rec, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Again", "email": "ada@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists with this email", body["message"])

	rec, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := body["message"]

	rec, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "nobody@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPassword, body["message"])

	rec, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ada@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["token"])

	rec, body = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "PasswordHash")

	rec, body = s.do(t, http.MethodPut, "/api/auth/profile", token, map[string]any{
		"location": "Lagos", "phone": "555-0100",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 70, body["user"].(map[string]any)["profileComplete"])
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodGet, "/api/jobs", tt.header, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}

	other, err := auth.NewTokens("another-secret", time.Hour)
	require.NoError(t, err)
	forged, err := other.Issue("someone")
	require.NoError(t, err)

	rec, _ := s.do(t, http.MethodGet, "/api/user/daily-challenge", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "jobs@example.com")

	job := s.createJob(t, token, map[string]any{
		"company":     "  Acme  ",
		"position":    "Backend Engineer",
		"dateApplied": "2024-05-01",
	})
	assert.Equal(t, "Acme", job["company"])
	assert.Equal(t, "Applied", job["status"])
	assert.Equal(t, "Full-time", job["jobType"])
	id := job["id"].(string)

	s.app.Ledger.Wait()
	_, body := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.EqualValues(t, 10, body["user"].(map[string]any)["xp"])

	rec, body := s.do(t, http.MethodGet, "/api/jobs?search=acme&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 1, body["pages"])

	rec, body = s.do(t, http.MethodPut, "/api/jobs/"+id, token, map[string]any{"status": "Interview"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Interview", body["data"].(map[string]any)["status"])
	assert.Equal(t, "Backend Engineer", body["data"].(map[string]any)["position"])

	rec, body = s.do(t, http.MethodGet, "/api/jobs/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["data"].(map[string]any)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 1, stats["interview"])
	assert.EqualValues(t, 100, stats["responseRate"])

	rec, body = s.do(t, http.MethodDelete, "/api/jobs/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{}, body["data"])

	rec, body = s.do(t, http.MethodGet, "/api/jobs/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job application not found", body["message"])
}

func TestJobOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp(t, "owner@example.com")
	intruder := s.signUp(t, "intruder@example.com")

	id := s.createJob(t, owner, map[string]any{"company": "Acme", "position": "SRE"})["id"].(string)

	tests := []struct {
		method  string
		body    any
		message string
	}{
		{http.MethodGet, nil, "Not authorized to access this job application"},
		{http.MethodPut, map[string]any{"notes": "mine now"}, "Not authorized to update this job application"},
		{http.MethodDelete, nil, "Not authorized to delete this job application"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec, body := s.do(t, tt.method, "/api/jobs/"+id, intruder, tt.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, tt.message, body["message"])
		})
	}

	_, body := s.do(t, http.MethodGet, "/api/jobs", intruder, nil)
	assert.EqualValues(t, 0, body["total"])

	rec, _ := s.do(t, http.MethodGet, "/api/jobs/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidationResponses(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "valid@example.com")

	tests := []struct {
		name   string
		body   any
		fields []string
	}{
		{"missing company and position", map[string]any{}, []string{"company", "position"}},
		{"blank company", map[string]any{"company": "   ", "position": "Dev"}, []string{"company"}},
		{"bad status", map[string]any{"company": "A", "position": "B", "status": "Ghosted"}, []string{"status"}},
		{"bad date", map[string]any{"company": "A", "position": "B", "dateApplied": "yesterday"}, []string{"dateApplied"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPost, "/api/jobs", token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, false, body["success"])

			var got []string
			for _, e := range body["errors"].([]any) {
				got = append(got, e.(map[string]any)["field"].(string))
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}

	rec, body := s.do(t, http.MethodPost, "/api/jobs", token, `{"company":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("disk I/O error at /var/lib/jobseeker.db"))

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.Issue("user-1")
	require.NoError(t, err)

	store := database.NewStore(db)
	a := &app.App{
		Logger:  zap.NewNop(),
		Metrics: metrics.New(),
		Tracker: tracker.NewService(store, nil, zap.NewNop(), nil),
		Auth:    auth.NewService(store, tokens, database.ErrDuplicate, zap.NewNop()),
	}
	h := NewRouter(a).Setup()

	rec, body := do(t, h, http.MethodGet, "/api/jobs", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", body["message"])
	assert.NotContains(t, rec.Body.String(), "disk")
}

func TestUpskillEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "learner@example.com")

	rec, body := s.do(t, http.MethodGet, "/api/user/daily-challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["challenge"].(map[string]any)["title"])
	assert.Equal(t, false, body["completed"])

	rec, body = s.do(t, http.MethodPost, "/api/user/complete-challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["totalChallenges"])

	rec, body = s.do(t, http.MethodPost, "/api/user/complete-challenge", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Challenge already completed today", body["message"])

	rec, body = s.do(t, http.MethodPost, "/api/user/complete-course", token, map[string]any{"courseName": "Go Basics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go Basics", body["courseName"])
	assert.EqualValues(t, 1, body["totalCourses"])

	rec, _ = s.do(t, http.MethodPost, "/api/user/complete-course", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/api/user/track-resource", token, map[string]any{"resourceType": "video"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["totalResources"])

	rec, body = s.do(t, http.MethodPut, "/api/user/career-interests", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Valid interests array required", body["message"])

	rec, body = s.do(t, http.MethodPut, "/api/user/career-interests", token, map[string]any{"interests": []string{"Go", " "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Go"}, body["interests"])

	rec, body = s.do(t, http.MethodPut, "/api/user/upskill-progress", token, map[string]any{
		"coursesCompleted": 99,
		"interests":        []string{"Go", "Cloud"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["upskillProgress"].(map[string]any)["totalCourses"])

	rec, body = s.do(t, http.MethodGet, "/api/user/upskill-progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["coursesCompleted"])
	assert.EqualValues(t, 1, body["challengesCompleted"])
	assert.Equal(t, true, body["dailyChallengeCompleted"])
	assert.Equal(t, []any{"Go", "Cloud"}, body["interests"])

	rec, body = s.do(t, http.MethodGet, "/api/user/learning-history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["courses"], 1)
	assert.Len(t, body["challenges"], 1)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "metrics@example.com")
	s.createJob(t, token, map[string]any{"company": "Acme", "position": "Dev"})
	s.do(t, http.MethodGet, "/api/jobs/unknown-id", token, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, "jobseeker_applications_created_total 1")
	assert.Contains(t, out, `route="/api/jobs/{id}"`)
	assert.Contains(t, out, `status="404"`)
}
