package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/khrees2412/jobseeker/pkg/models"
)

const userColumns = `id, name, email, password_hash, role, location, phone, profile_complete,
	skills_count, years_experience, xp, total_xp_earned, last_challenge_date, career_interests,
	total_courses, total_challenges, resources_accessed, created_at, updated_at`

// User operations

// CreateUser inserts user. A taken email returns ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	interests, err := json.Marshal(nonNil(user.CareerInterests))
	if err != nil {
		return err
	}

	query := `INSERT INTO users (id, name, email, password_hash, role, location, phone,
			  profile_complete, skills_count, years_experience, career_interests, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.DB.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash,
		user.Role, user.Location, user.Phone, user.ProfileComplete, user.SkillsCount,
		user.YearsExperience, string(interests), formatTime(now), formatTime(now))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetUser loads the user with id and its completion lists, or nil if
// no such user exists.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadCompletions(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail looks a user up by email, case-insensitively
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=?`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// UpdateProfile writes the profile fields of user
func (s *Store) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET name=?, role=?, location=?, phone=?, skills_count=?,
			  years_experience=?, profile_complete=?, updated_at=? WHERE id=?`
	return s.execOne(ctx, query, user.Name, user.Role, user.Location, user.Phone,
		user.SkillsCount, user.YearsExperience, user.ProfileComplete, formatTime(user.UpdatedAt), user.ID)
}

// AddXP increments both the current and lifetime XP counters of userID.
// A missing user returns sql.ErrNoRows.
func (s *Store) AddXP(ctx context.Context, userID string, amount int) error {
	query := `UPDATE users SET xp = xp + ?, total_xp_earned = total_xp_earned + ?, updated_at=? WHERE id=?`
	return s.execOne(ctx, query, amount, amount, formatTime(time.Now()), userID)
}

// CompleteChallenge appends c to userID's challenge list and moves
// last_challenge_date to c.CompletedAt, unless the stored date already
// falls inside [dayStart, dayEnd). It reports whether the completion was
// recorded and the length of the challenge list afterwards.
func (s *Store) CompleteChallenge(ctx context.Context, userID string, c models.ChallengeCompletion, dayStart, dayEnd time.Time) (int, bool, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE users SET last_challenge_date=?, updated_at=?
		WHERE id=? AND (last_challenge_date IS NULL OR last_challenge_date < ? OR last_challenge_date >= ?)`,
		formatTime(c.CompletedAt), formatTime(c.CompletedAt), userID, formatTime(dayStart), formatTime(dayEnd))
	if err != nil {
		return 0, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO challenge_completions (user_id, challenge_id, completed_at, xp_earned) VALUES (?, ?, ?, ?)`,
		userID, c.ChallengeID, formatTime(c.CompletedAt), c.XPEarned); err != nil {
		return 0, false, err
	}

	total, err := syncTotal(ctx, tx, userID, "challenge_completions", "total_challenges")
	if err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	committed = true
	return total, true, nil
}

// AddCourse appends c to userID's course list and returns the new list length
func (s *Store) AddCourse(ctx context.Context, userID string, c models.CourseCompletion) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO course_completions (user_id, course_name, platform, completed_at, xp_earned) VALUES (?, ?, ?, ?, ?)`,
		userID, c.CourseName, c.Platform, formatTime(c.CompletedAt), c.XPEarned); err != nil {
		return 0, err
	}

	total, err := syncTotal(ctx, tx, userID, "course_completions", "total_courses")
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return total, nil
}

// IncrementResources bumps resources_accessed and returns the new value
func (s *Store) IncrementResources(ctx context.Context, userID string) (int, error) {
	if err := s.execOne(ctx, `UPDATE users SET resources_accessed = resources_accessed + 1, updated_at=? WHERE id=?`,
		formatTime(time.Now()), userID); err != nil {
		return 0, err
	}
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT resources_accessed FROM users WHERE id=?`, userID).Scan(&n)
	return n, err
}

// SetCareerInterests replaces userID's career interests
func (s *Store) SetCareerInterests(ctx context.Context, userID string, interests []string) error {
	b, err := json.Marshal(nonNil(interests))
	if err != nil {
		return err
	}
	return s.execOne(ctx, `UPDATE users SET career_interests=?, updated_at=? WHERE id=?`,
		string(b), formatTime(time.Now()), userID)
}

// syncTotal recomputes a running total column from its completion table
func syncTotal(ctx context.Context, tx *sql.Tx, userID, table, column string) (int, error) {
	var total int
	if err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id=?`, table), userID).Scan(&total); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE users SET %s=? WHERE id=?`, column), total, userID); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var lastChallenge sql.NullTime
	var interests string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.Location, &user.Phone, &user.ProfileComplete, &user.SkillsCount,
		&user.YearsExperience, &user.XP, &user.TotalXPEarned, &lastChallenge, &interests,
		&user.UpskillProgress.TotalCourses, &user.UpskillProgress.TotalChallenges,
		&user.UpskillProgress.ResourcesAccessed, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastChallenge.Valid {
		t := lastChallenge.Time
		user.LastChallengeDate = &t
	}
	if err := json.Unmarshal([]byte(interests), &user.CareerInterests); err != nil {
		return nil, fmt.Errorf("decode career interests: %w", err)
	}
	return user, nil
}

func (s *Store) loadCompletions(ctx context.Context, user *models.User) error {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT course_name, platform, completed_at, xp_earned FROM course_completions WHERE user_id=? ORDER BY id`, user.ID)
	if err != nil {
		return err
	}
	user.CoursesCompleted = []models.CourseCompletion{}
	for rows.Next() {
		var c models.CourseCompletion
		if err := rows.Scan(&c.CourseName, &c.Platform, &c.CompletedAt, &c.XPEarned); err != nil {
			rows.Close()
			return err
		}
		user.CoursesCompleted = append(user.CoursesCompleted, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.DB.QueryContext(ctx,
		`SELECT challenge_id, completed_at, xp_earned FROM challenge_completions WHERE user_id=? ORDER BY id`, user.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	user.ChallengesCompleted = []models.ChallengeCompletion{}
	for rows.Next() {
		var c models.ChallengeCompletion
		if err := rows.Scan(&c.ChallengeID, &c.CompletedAt, &c.XPEarned); err != nil {
			return err
		}
		user.ChallengesCompleted = append(user.ChallengesCompleted, c)
	}
	return rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
