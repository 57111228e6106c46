// Package auth registers and authenticates users and issues their
// session tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/internal/validation"
	"github.com/khrees2412/jobseeker/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultRole is given to users who register without one
const DefaultRole = "Frontend Developer"

const invalidCredentials = "Invalid email or password"

// Store is the user persistence the service needs
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// RegisterInput is a new account
type RegisterInput struct {
	Name     string `json:"name" validate:"min=1,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

// LoginInput is a credentials pair
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is a partial profile update
type ProfileInput struct {
	Name            *string `json:"name" validate:"omitnil,min=1,max=50"`
	Role            *string `json:"role"`
	Location        *string `json:"location"`
	Phone           *string `json:"phone"`
	SkillsCount     *int    `json:"skillsCount" validate:"omitnil,min=0"`
	YearsExperience *int    `json:"yearsExperience" validate:"omitnil,min=0"`
}

// Session is a user with a freshly issued token
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service implements the account operations
type Service struct {
	store     Store
	tokens    *Tokens
	duplicate error
	logger    *zap.Logger
	cost      int
}

// NewService creates a Service. duplicate is the error store returns
// when an email is already registered.
func NewService(store Store, tokens *Tokens, duplicate error, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		tokens:    tokens,
		duplicate: duplicate,
		logger:    logger,
		cost:      bcrypt.DefaultCost,
	}
}

// Tokens returns the token issuer
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Register creates an account and signs it in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	validation.Trim(&in.Name, &in.Email, &in.Role, &in.Location)
	in.Email = strings.ToLower(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = DefaultRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, s.internal("failed to hash password", err)
	}

	user := &models.User{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    string(hash),
		Role:            in.Role,
		Location:        in.Location,
		ProfileComplete: 50,
		CareerInterests: []string{},
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if s.duplicate != nil && errors.Is(err, s.duplicate) {
			return nil, apperr.Conflict("User already exists with this email")
		}
		return nil, s.internal("failed to create user", err)
	}

	return s.session(user)
}

// Login checks credentials. An unknown email and a wrong password fail
// the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	validation.Trim(&in.Email)
	in.Email = strings.ToLower(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperr.Unauthorized(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	return s.session(user)
}

// Me returns the profile of userID
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, s.internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of in to userID's profile
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	validation.Trim(in.Name, in.Role, in.Location, in.Phone)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.SkillsCount != nil {
		user.SkillsCount = *in.SkillsCount
	}
	if in.YearsExperience != nil {
		user.YearsExperience = *in.YearsExperience
	}
	user.ProfileComplete = profileCompleteness(user)

	if err := s.store.UpdateProfile(ctx, user); err != nil {
		return nil, s.internal("failed to update profile", err)
	}
	return user, nil
}

// profileCompleteness starts at 50 for a registered account and adds
// ten points per filled optional field.
func profileCompleteness(u *models.User) int {
	score := 50
	for _, filled := range []bool{u.Location != "", u.Phone != "", u.SkillsCount > 0, u.YearsExperience > 0} {
		if filled {
			score += 10
		}
	}
	return score
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.internal("failed to issue token", err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *Service) internal(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return apperr.Internal(msg, err)
}
