package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
	"github.com/thicketlabs/thicket/internal/ranking"
)

// Ranked listing sort orders.
const (
	SortHot = "hot"
	SortTop = "top"
)

// PostPage is one page of a ranked listing plus the cursor for the next.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// PostStore owns post lifecycle and ranked listings. Moderation actions are
// checked against the community's moderator roster.
type PostStore struct {
	db          *db.DB
	posts       *db.PostRepository
	communities *CommunityStore
	notifier    *Notifier
	logger      *zap.Logger
}

// NewPostStore creates a new post store
func NewPostStore(database *db.DB, repo *db.Repository, logger *zap.Logger) *PostStore {
	return &PostStore{
		db:          database,
		posts:       db.NewPostRepository(repo),
		communities: NewCommunityStore(database, repo, logger),
		notifier:    NewNotifier(logger),
		logger:      logger,
	}
}

// Create inserts a post and bumps the community and author counters in the
// same transaction. The initial hot score is zero, which places a brand-new
// post above every older zero-score post once those decay.
func (ps *PostStore) Create(ctx context.Context, authorID, communityID int64, title, body, postType string) (*models.Post, error) {
	if postType == "" {
		postType = models.PostTypeText
	}
	switch postType {
	case models.PostTypeText, models.PostTypeLink, models.PostTypeImage, models.PostTypeVideo:
	default:
		return nil, fmt.Errorf("%w: unknown post type %q", ErrInvalidArgument, postType)
	}

	var created *models.Post
	err := runInTx(ctx, ps.db, ps.logger, func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.WithContext(ctx).First(&community, communityID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotFound
			}
			return err
		}

		now := nowUTC()
		post := &models.Post{
			CommunityID: communityID,
			AuthorID:    authorID,
			Title:       title,
			Body:        body,
			Type:        postType,
			CreatedAt:   now,
			UpdatedAt:   now,
			HotScore:    ranking.HotScore(0, 0, now, now),
		}
		if err := tx.WithContext(ctx).Create(post).Error; err != nil {
			return err
		}

		if err := tx.WithContext(ctx).
			Model(&models.Community{}).
			Where("id = ?", communityID).
			Updates(map[string]interface{}{
				"post_count":    gorm.Expr("post_count + 1"),
				"last_activity": now,
			}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", authorID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error; err != nil {
			return err
		}

		created = post
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.logger.Debug("Created post",
		zap.Int64("post_id", created.ID),
		zap.Int64("community_id", communityID))

	return created, nil
}

// Get returns the post, or ErrTargetNotFound when missing or soft-deleted.
func (ps *PostStore) Get(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := ps.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, ErrTargetNotFound
	}
	return post, nil
}

// SoftDelete marks the post deleted and reverses the creation-time counter
// bumps. Transition-only; deleting twice changes nothing.
func (ps *PostStore) SoftDelete(ctx context.Context, postID int64) error {
	return runInTx(ctx, ps.db, ps.logger, func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, postID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotFound
			}
			return err
		}
		if post.IsDeleted {
			return nil
		}

		if err := tx.WithContext(ctx).
			Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Model(&models.Community{}).
			Where("id = ?", post.CommunityID).
			UpdateColumn("post_count", gorm.Expr("GREATEST(0, post_count - 1)")).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", post.AuthorID).
			UpdateColumn("post_count", gorm.Expr("GREATEST(0, post_count - 1)")).Error
	})
}

// SetPinned pins or unpins the post and notifies its author. The caller
// must hold a moderator role in the post's community.
func (ps *PostStore) SetPinned(ctx context.Context, modID, postID int64, pinned bool) error {
	typeID := models.NotifyTypePinPost
	if !pinned {
		typeID = models.NotifyTypeUnpinPost
	}
	return ps.setFlag(ctx, modID, postID, "is_pinned", pinned, typeID)
}

// SetLocked locks or unlocks the post and notifies its author. Locked posts
// reject new comments but still accept votes.
func (ps *PostStore) SetLocked(ctx context.Context, modID, postID int64, locked bool) error {
	typeID := models.NotifyTypeLockPost
	if !locked {
		typeID = models.NotifyTypeUnlockPost
	}
	return ps.setFlag(ctx, modID, postID, "is_locked", locked, typeID)
}

func (ps *PostStore) setFlag(ctx context.Context, modID, postID int64, column string, value bool, typeID int16) error {
	current, err := ps.Get(ctx, postID)
	if err != nil {
		return err
	}
	role, err := ps.communities.GetRole(ctx, modID, current.CommunityID)
	if err != nil {
		return err
	}
	if !canModerate(role) {
		return ErrNotModerator
	}

	return runInTx(ctx, ps.db, ps.logger, func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, postID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotFound
			}
			return err
		}
		if post.IsDeleted {
			return ErrTargetNotFound
		}

		if err := tx.WithContext(ctx).
			Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn(column, value).Error; err != nil {
			return err
		}

		if post.AuthorID != modID {
			if err := ps.notifier.Write(ctx, tx, typeID, modID, post.AuthorID, &post.CommunityID, &postID, nil, nil); err != nil {
				ps.logger.Warn("Failed to write moderation notification", zap.Error(err))
			}
		}
		return nil
	})
}

// ListRanked returns one page of non-deleted posts ordered by sortBy,
// optionally scoped to a community. Pagination is keyset on the sort value
// plus ID, so pages stay stable while scores shift underneath.
func (ps *PostStore) ListRanked(ctx context.Context, communityID *int64, sortBy, cursor string, limit int) (*PostPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var orderCol string
	switch sortBy {
	case SortHot, "":
		sortBy = SortHot
		orderCol = "hot_score"
	case SortTop:
		orderCol = "score"
	case SortNew:
		orderCol = "created_at"
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidArgument, sortBy)
	}

	q := ps.db.DB.WithContext(ctx).
		Where("is_deleted = false").
		Order(orderCol + " DESC, id DESC").
		Limit(limit + 1)
	if communityID != nil {
		q = q.Where("community_id = ?", *communityID)
	}
	if cursor != "" {
		value, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		if sortBy == SortNew {
			after, perr := strconv.ParseInt(value, 10, 64)
			if perr != nil {
				return nil, fmt.Errorf("%w: bad cursor: %v", ErrInvalidArgument, perr)
			}
			ts := time.Unix(0, after).UTC()
			q = q.Where("(created_at, id) < (?, ?)", ts, id)
		} else {
			q = q.Where("("+orderCol+", id) < (?, ?)", value, id)
		}
	}

	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}

	page := &PostPage{Posts: posts}
	if len(posts) > limit {
		page.Posts = posts[:limit]
		last := page.Posts[limit-1]
		var value string
		switch sortBy {
		case SortHot:
			value = strconv.FormatFloat(last.HotScore, 'g', -1, 64)
		case SortTop:
			value = strconv.FormatInt(last.Score, 10)
		case SortNew:
			value = strconv.FormatInt(last.CreatedAt.UnixNano(), 10)
		}
		page.NextCursor = encodeCursor(value, last.ID)
	}
	return page, nil
}

// encodeCursor packs the keyset position into an opaque token.
func encodeCursor(value string, id int64) string {
	raw := value + "|" + strconv.FormatInt(id, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (string, int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad cursor: %v", ErrInvalidArgument, err)
	}
	value, idStr, ok := strings.Cut(string(raw), "|")
	if !ok {
		return "", 0, fmt.Errorf("%w: bad cursor", ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad cursor: %v", ErrInvalidArgument, err)
	}
	return value, id, nil
}
