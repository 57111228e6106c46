package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/khrees2412/jobseeker/internal/auth"
	"github.com/khrees2412/jobseeker/internal/config"
	"github.com/khrees2412/jobseeker/internal/database"
	"github.com/khrees2412/jobseeker/internal/gamification"
	"github.com/khrees2412/jobseeker/internal/importer"
	"github.com/khrees2412/jobseeker/internal/metrics"
	"github.com/khrees2412/jobseeker/internal/tracker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App is the dependency container shared by the CLI and the HTTP server
type App struct {
	DB         *sql.DB
	Store      *database.Store
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Collector
	HTTPClient *http.Client

	Tracker  *tracker.Service
	Ledger   *gamification.Ledger
	Auth     *auth.Service
	Importer *importer.Importer
}

// NewApp loads the configuration file and builds the App from it
func NewApp(ctx context.Context) (*App, error) {
	// Initialize config
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	return New(config.AppConfig)
}

// New builds the App from cfg
func New(cfg *config.Config) (*App, error) {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	// Open database with proper pragmas
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Create HTTP client with timeout
	importTimeout := cfg.Import.Timeout
	if importTimeout <= 0 {
		importTimeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout: importTimeout,
	}

	store := database.NewStore(db)
	m := metrics.New()
	ledger := gamification.NewLedger(store, logger.Named("gamification"),
		gamification.WithLocation(loc),
		gamification.WithMetrics(m),
	)

	var importOpts []importer.Option
	if cfg.Import.UseBrowser {
		importOpts = append(importOpts, importer.WithRenderer(&importer.ChromeRenderer{
			Timeout: importTimeout,
			Logger:  logger.Named("chrome"),
		}))
	}

	return &App{
		DB:         db,
		Store:      store,
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		HTTPClient: httpClient,
		Tracker:    tracker.NewService(store, ledger, logger.Named("tracker"), m),
		Ledger:     ledger,
		Auth:       auth.NewService(store, tokens, database.ErrDuplicate, logger.Named("auth")),
		Importer:   importer.New(httpClient, logger.Named("importer"), importOpts...),
	}, nil
}

// NewLogger builds the zap logger described by cfg. Output goes to stderr
// so CLI output on stdout stays clean.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
		}
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

// Close waits for in-flight XP awards, then releases all resources
func (a *App) Close() error {
	if a.Ledger != nil {
		a.Ledger.Wait()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
