package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

// DriverName is the go-sqlite3 driver with the store's SQL functions
// registered on every connection.
const DriverName = "sqlite3_jobseeker"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// fold is a Unicode case fold; the built-in lower() only folds ASCII
			return conn.RegisterFunc("fold", foldCase, true)
		},
	})
}

func foldCase(s string) string {
	return cases.Fold().String(s)
}

// timeLayout is fixed-width so stored timestamps order lexically
const timeLayout = "2006-01-02 15:04:05.000000000-07:00"

// formatTime normalises t to UTC in timeLayout
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Open creates the parent directory if needed, opens the SQLite database at
// path with the pragmas the store relies on, and runs migrations.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// RunMigrations creates all necessary tables
func RunMigrations(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'Frontend Developer',
		location TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		profile_complete INTEGER NOT NULL DEFAULT 50,
		skills_count INTEGER NOT NULL DEFAULT 0,
		years_experience INTEGER NOT NULL DEFAULT 0,
		xp INTEGER NOT NULL DEFAULT 0,
		total_xp_earned INTEGER NOT NULL DEFAULT 0,
		last_challenge_date DATETIME,
		career_interests TEXT NOT NULL DEFAULT '[]',
		total_courses INTEGER NOT NULL DEFAULT 0,
		total_challenges INTEGER NOT NULL DEFAULT 0,
		resources_accessed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS job_applications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		company TEXT NOT NULL,
		position TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Applied',
		date_applied DATETIME NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		salary TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		job_type TEXT NOT NULL DEFAULT 'Full-time',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CHECK(status IN ('Applied', 'In Review', 'Interview', 'Offer', 'Rejected')),
		CHECK(job_type IN ('Full-time', 'Part-time', 'Contract', 'Internship', 'Remote'))
	);

	CREATE TABLE IF NOT EXISTS course_completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		course_name TEXT NOT NULL,
		platform TEXT NOT NULL DEFAULT 'YouTube',
		completed_at DATETIME NOT NULL,
		xp_earned INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS challenge_completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		challenge_id TEXT NOT NULL,
		completed_at DATETIME NOT NULL,
		xp_earned INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_job_applications_user_date ON job_applications(user_id, date_applied DESC);
	CREATE INDEX IF NOT EXISTS idx_job_applications_user_status ON job_applications(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_course_completions_user ON course_completions(user_id);
	CREATE INDEX IF NOT EXISTS idx_challenge_completions_user ON challenge_completions(user_id);
	`

	_, err := db.Exec(schema)
	return err
}
