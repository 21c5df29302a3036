package store

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

// CommunityStore owns communities and their moderator roster.
type CommunityStore struct {
	db     *db.DB
	repo   *db.CommunityRepository
	logger *zap.Logger
}

// NewCommunityStore creates a new community store
func NewCommunityStore(database *db.DB, repo *db.Repository, logger *zap.Logger) *CommunityStore {
	return &CommunityStore{
		db:     database,
		repo:   db.NewCommunityRepository(repo),
		logger: logger,
	}
}

// Create registers a community with the creator as owner and first member.
func (cs *CommunityStore) Create(ctx context.Context, creatorID int64, slug, name, about string) (*models.Community, error) {
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: invalid slug %q", ErrInvalidArgument, slug)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	existing, err := cs.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: slug %q is taken", ErrInvalidArgument, slug)
	}

	var created *models.Community
	err = runInTx(ctx, cs.db, cs.logger, func(tx *gorm.DB) error {
		now := nowUTC()
		community := &models.Community{
			Slug:         slug,
			Name:         name,
			About:        about,
			CreatedAt:    now,
			MemberCount:  1,
			LastActivity: now,
		}
		if err := tx.WithContext(ctx).Create(community).Error; err != nil {
			return err
		}

		owner := &models.Moderator{
			CommunityID: community.ID,
			UserID:      creatorID,
			Role:        models.RoleOwner,
			CreatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(owner).Error; err != nil {
			return err
		}

		membership := &models.Membership{
			CommunityID: community.ID,
			UserID:      creatorID,
			CreatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(membership).Error; err != nil {
			return err
		}

		created = community
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.logger.Debug("Created community",
		zap.Int64("community_id", created.ID),
		zap.String("slug", slug))

	return created, nil
}

// Get returns the community by ID, or ErrTargetNotFound.
func (cs *CommunityStore) Get(ctx context.Context, communityID int64) (*models.Community, error) {
	community, err := cs.repo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, ErrTargetNotFound
	}
	return community, nil
}

// GetBySlug returns the community by slug, or ErrTargetNotFound.
func (cs *CommunityStore) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	community, err := cs.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, ErrTargetNotFound
	}
	return community, nil
}

// List returns communities ordered by member count.
func (cs *CommunityStore) List(ctx context.Context, limit int) ([]*models.Community, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return cs.repo.List(ctx, limit)
}

// GetRole returns the user's moderator role in the community, or 0.
func (cs *CommunityStore) GetRole(ctx context.Context, userID, communityID int64) (int16, error) {
	var mod models.Moderator
	err := cs.db.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&mod).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return mod.Role, nil
}

// canModerate reports whether the role is high enough for moderation
// actions like pinning and locking.
func canModerate(role int16) bool {
	return role >= models.RoleMod
}
