package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,24}$`)

// UserStore owns user accounts.
type UserStore struct {
	repo   *db.UserRepository
	logger *zap.Logger
}

// NewUserStore creates a new user store
func NewUserStore(repo *db.Repository, logger *zap.Logger) *UserStore {
	return &UserStore{
		repo:   db.NewUserRepository(repo),
		logger: logger,
	}
}

// Create registers a user. Usernames are lowercase alphanumerics, dashes
// and underscores, and must be unique.
func (us *UserStore) Create(ctx context.Context, username, displayName string) (*models.User, error) {
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: invalid username %q", ErrInvalidArgument, username)
	}

	existing, err := us.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", ErrInvalidArgument, username)
	}

	user := &models.User{
		Username:  username,
		CreatedAt: nowUTC(),
	}
	if displayName != "" {
		user.DisplayName = sql.NullString{String: displayName, Valid: true}
	}
	if err := us.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	us.logger.Debug("Created user",
		zap.Int64("user_id", user.ID),
		zap.String("username", username))

	return user, nil
}

// Get returns the user by ID, or ErrTargetNotFound.
func (us *UserStore) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := us.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTargetNotFound
	}
	return user, nil
}

// GetByUsername returns the user by username, or ErrTargetNotFound.
func (us *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := us.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTargetNotFound
	}
	return user, nil
}
