package store

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
)

// Thread sort orders.
const (
	SortBest = "best"
	SortNew  = "new"
)

// ThreadNode is one comment plus its ordered replies. ChildCount counts
// direct replies across the whole post, not just the fetched window, so
// callers can expand lazily when Children is truncated.
type ThreadNode struct {
	Comment    *models.Comment `json:"comment"`
	ChildCount int             `json:"child_count"`
	Children   []*ThreadNode   `json:"children,omitempty"`
}

// CommentStore owns the threaded comment tree. Every comment carries a
// materialized path root-to-self, so any subtree is one prefix query away.
type CommentStore struct {
	db       *db.DB
	comments *db.CommentRepository
	notifier *Notifier
	logger   *zap.Logger
}

// NewCommentStore creates a new comment store
func NewCommentStore(database *db.DB, repo *db.Repository, logger *zap.Logger) *CommentStore {
	return &CommentStore{
		db:       database,
		comments: db.NewCommentRepository(repo),
		notifier: NewNotifier(logger),
		logger:   logger,
	}
}

// Create inserts a comment under the post, or under parentID when set.
// Depth and path derive from the parent as read inside the transaction.
// Deleted comments stay in the tree as placeholders, so a reply written
// just before its parent is deleted keeps its anchor.
func (cs *CommentStore) Create(ctx context.Context, authorID, postID int64, parentID *int64, content string) (*models.Comment, error) {
	var created *models.Comment
	err := runInTx(ctx, cs.db, cs.logger, func(tx *gorm.DB) error {
		var err error
		created, err = cs.createInTx(ctx, tx, authorID, postID, parentID, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (cs *CommentStore) createInTx(ctx context.Context, tx *gorm.DB, authorID, postID int64, parentID *int64, content string) (*models.Comment, error) {
	var post models.Post
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	if post.IsDeleted {
		return nil, ErrTargetNotFound
	}
	if post.IsLocked {
		return nil, ErrPostLocked
	}

	var parent *models.Comment
	depth := int16(0)
	if parentID != nil {
		var p models.Comment
		if err := tx.WithContext(ctx).First(&p, *parentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrTargetNotFound
			}
			return nil, err
		}
		if p.PostID != postID {
			return nil, ErrParentPostMismatch
		}
		if p.IsDeleted {
			return nil, ErrParentDeleted
		}
		if p.Depth >= models.MaxCommentDepth {
			return nil, ErrMaxDepthExceeded
		}
		parent = &p
		depth = p.Depth + 1
	}

	now := nowUTC()
	comment := &models.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		Depth:     depth,
		CreatedAt: now,
	}
	if parent != nil {
		comment.ParentID = sql.NullInt64{Int64: parent.ID, Valid: true}
	}
	if err := tx.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}

	// The path needs the generated ID, so it is written in a second
	// statement within the same transaction.
	comment.Path = childPath(parent, comment.ID)
	if err := tx.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		UpdateColumn("path", comment.Path).Error; err != nil {
		return nil, err
	}

	if err := tx.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", post.CommunityID).
		UpdateColumn("last_activity", now).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", authorID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
		return nil, err
	}

	if err := cs.notifyReply(ctx, tx, comment, &post, parent); err != nil {
		cs.logger.Warn("Failed to write reply notification", zap.Error(err))
	}

	cs.logger.Debug("Created comment",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("post_id", postID),
		zap.Int16("depth", depth))

	return comment, nil
}

// notifyReply notifies the parent comment author, or the post author for
// top-level comments. Self-replies write nothing.
func (cs *CommentStore) notifyReply(ctx context.Context, tx *gorm.DB, comment *models.Comment, post *models.Post, parent *models.Comment) error {
	typeID := models.NotifyTypeReply
	dstID := post.AuthorID
	if parent != nil {
		typeID = models.NotifyTypeReplyComment
		dstID = parent.AuthorID
	}
	if dstID == comment.AuthorID {
		return nil
	}
	return cs.notifier.Write(ctx, tx, typeID, comment.AuthorID, dstID, nil, &post.ID, &comment.ID, nil)
}

// SoftDelete marks the comment deleted without detaching its replies; the
// subtree below stays readable. Decrements happen only on the transition,
// repeating the call is a no-op.
func (cs *CommentStore) SoftDelete(ctx context.Context, commentID int64) error {
	return runInTx(ctx, cs.db, cs.logger, func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&comment, commentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotFound
			}
			return err
		}
		if comment.IsDeleted {
			return nil
		}

		if err := tx.WithContext(ctx).
			Model(&models.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("GREATEST(0, comment_count - 1)")).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", comment.AuthorID).
			UpdateColumn("comment_count", gorm.Expr("GREATEST(0, comment_count - 1)")).Error
	})
}

// GetThread returns the post's full comment tree with siblings ordered by
// sortBy at every level. Deleted comments are kept as placeholders so their
// replies stay attached.
func (cs *CommentStore) GetThread(ctx context.Context, postID int64, sortBy string, limit int) ([]*ThreadNode, error) {
	if sortBy != SortBest && sortBy != SortNew {
		sortBy = SortBest
	}
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	var post models.Post
	if err := cs.db.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	if post.IsDeleted {
		return nil, ErrTargetNotFound
	}

	var comments []*models.Comment
	if err := cs.db.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("path").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	counts, err := cs.directChildCounts(ctx, postID)
	if err != nil {
		return nil, err
	}

	return buildThread(comments, sortBy, counts), nil
}

// GetSubtree returns the comment and everything below it, ordered like a
// thread. The root is included even when deleted.
func (cs *CommentStore) GetSubtree(ctx context.Context, commentID int64, sortBy string, limit int) ([]*ThreadNode, error) {
	if sortBy != SortBest && sortBy != SortNew {
		sortBy = SortBest
	}
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	root, err := cs.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, ErrTargetNotFound
	}

	var comments []*models.Comment
	if err := cs.db.DB.WithContext(ctx).
		Where("post_id = ? AND (path = ? OR path LIKE ?)", root.PostID, root.Path, root.Path+"/%").
		Order("path").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	counts, err := cs.directChildCounts(ctx, root.PostID)
	if err != nil {
		return nil, err
	}

	return buildThread(comments, sortBy, counts), nil
}

// directChildCounts tallies replies per parent over the whole post in one
// grouped query, so counts stay accurate when the fetch window truncates a
// branch.
func (cs *CommentStore) directChildCounts(ctx context.Context, postID int64) (map[int64]int64, error) {
	var rows []struct {
		ParentID int64
		N        int64
	}
	if err := cs.db.DB.WithContext(ctx).
		Model(&models.Comment{}).
		Select("parent_id, COUNT(*) AS n").
		Where("post_id = ? AND parent_id IS NOT NULL", postID).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.ParentID] = row.N
	}
	return counts, nil
}

// buildThread assembles flat rows into a forest and sorts siblings. Rows
// whose parent fell outside the fetch window are promoted to roots so the
// result never silently drops a comment. When childCounts is nil the counts
// fall back to the fetched children.
func buildThread(comments []*models.Comment, sortBy string, childCounts map[int64]int64) []*ThreadNode {
	nodes := make(map[int64]*ThreadNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &ThreadNode{Comment: c}
	}

	var roots []*ThreadNode
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID.Valid {
			if parent, ok := nodes[c.ParentID.Int64]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	for id, node := range nodes {
		if childCounts != nil {
			node.ChildCount = int(childCounts[id])
		} else {
			node.ChildCount = len(node.Children)
		}
	}

	var sortSiblings func(siblings []*ThreadNode)
	sortSiblings = func(siblings []*ThreadNode) {
		sort.SliceStable(siblings, func(i, j int) bool {
			a, b := siblings[i].Comment, siblings[j].Comment
			if sortBy == SortNew {
				if !a.CreatedAt.Equal(b.CreatedAt) {
					return a.CreatedAt.After(b.CreatedAt)
				}
				return a.ID > b.ID
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.Path < b.Path
		})
		for _, s := range siblings {
			sortSiblings(s.Children)
		}
	}
	sortSiblings(roots)

	return roots
}

// childPath appends id to the parent's path, or starts a new root path.
func childPath(parent *models.Comment, id int64) string {
	if parent == nil {
		return strconv.FormatInt(id, 10)
	}
	return parent.Path + "/" + strconv.FormatInt(id, 10)
}

// pathDepth derives a comment's depth from its materialized path.
func pathDepth(path string) int16 {
	if path == "" {
		return 0
	}
	return int16(strings.Count(path, "/"))
}
