package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/khrees2412/jobseeker/internal/auth"
	"github.com/khrees2412/jobseeker/internal/config"
	"github.com/khrees2412/jobseeker/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath: filepath.Join(t.TempDir(), "app.db"),
		Auth:         config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour},
		Log:          config.LogConfig{Level: "error"},
		Challenge:    config.ChallengeConfig{Timezone: "UTC"},
	}
}

func TestNewWiresServices(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	session, err := a.Auth.Register(ctx, auth.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = a.Tracker.Create(ctx, session.User.ID, tracker.CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)
	a.Ledger.Wait()

	user, err := a.Store.GetUser(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, user.XP)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = ""
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Challenge.Timezone = "Nowhere/Special"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Log.Level = "loud"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)

	a := &App{}
	got, err := FromContext(SetAppInContext(context.Background(), a))
	require.NoError(t, err)
	assert.Same(t, a, got)
}
