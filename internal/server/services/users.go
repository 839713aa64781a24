package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/validate"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	hashParams  auth.Argon2Params
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "users"),
		hashParams:  auth.DefaultArgon2Params(),
	}
}

// Login checks the credentials and returns the matching user.
//
// Unknown email and wrong password both return an *auth.Error; unknown
// email still pays for one hash comparison.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnCompare(password)
			return nil, &auth.Error{Kind: auth.KindNotFound}
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
	}
	if !ok {
		return nil, &auth.Error{Kind: auth.KindInvalidPassword}
	}

	return user, nil
}

// Register creates a user with an argon2id password hash.
func (s *UserService) Register(ctx context.Context, email, password string, isAdmin bool) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless a user with that
// email already exists. Existing accounts are never modified.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Debug(ctx, "admin account present", "email", email)
		return nil
	case !errors.Is(err, common.ErrorNotFound):
		return err
	}

	user, err := s.Register(ctx, email, password, true)
	if errors.Is(err, common.ErrorAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "admin account created", "email", user.Email, "user_id", user.ID)
	return nil
}
