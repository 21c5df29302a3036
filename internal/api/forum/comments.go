package forum

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thicketlabs/thicket/internal/cache"
	"github.com/thicketlabs/thicket/internal/store"
)

// threadCacheTTL bounds how stale a served thread can be.
const threadCacheTTL = 30 * time.Second

// CommentsAPI provides comment and thread API methods
type CommentsAPI struct {
	comments *store.CommentStore
	cache    *cache.Cache
}

// NewCommentsAPI creates a new comments API
func NewCommentsAPI(comments *store.CommentStore, redisCache *cache.Cache) *CommentsAPI {
	return &CommentsAPI{
		comments: comments,
		cache:    redisCache,
	}
}

type createCommentParams struct {
	AuthorID int64  `json:"author_id"`
	PostID   int64  `json:"post_id"`
	ParentID *int64 `json:"parent_id"`
	Content  string `json:"content"`
}

// Create handles comments.create
func (c *CommentsAPI) Create(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p createCommentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.AuthorID <= 0 || p.PostID <= 0 {
		return nil, fmt.Errorf("%w: author_id and post_id are required", store.ErrInvalidArgument)
	}
	if p.Content == "" {
		return nil, fmt.Errorf("%w: content is required", store.ErrInvalidArgument)
	}

	return c.comments.Create(ctx.Request.Context(), p.AuthorID, p.PostID, p.ParentID, p.Content)
}

// Delete handles comments.delete
func (c *CommentsAPI) Delete(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		CommentID int64 `json:"comment_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.CommentID <= 0 {
		return nil, fmt.Errorf("%w: comment_id is required", store.ErrInvalidArgument)
	}

	if err := c.comments.SoftDelete(ctx.Request.Context(), p.CommentID); err != nil {
		return nil, err
	}
	return gin.H{"deleted": true}, nil
}

type threadParams struct {
	PostID int64  `json:"post_id"`
	Sort   string `json:"sort"`
	Limit  int    `json:"limit"`
}

// GetThread handles threads.get
func (c *CommentsAPI) GetThread(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p threadParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.PostID <= 0 {
		return nil, fmt.Errorf("%w: post_id is required", store.ErrInvalidArgument)
	}

	cacheKey := cache.HashKey(
		"threads_get",
		strconv.FormatInt(p.PostID, 10),
		p.Sort,
		strconv.Itoa(p.Limit),
	)
	if c.cache != nil {
		var cached []*store.ThreadNode
		if err := c.cache.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	thread, err := c.comments.GetThread(ctx.Request.Context(), p.PostID, p.Sort, p.Limit)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.SetJSON(cacheKey, thread, threadCacheTTL)
	}
	return thread, nil
}

// GetSubtree handles threads.get_subtree
func (c *CommentsAPI) GetSubtree(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		CommentID int64  `json:"comment_id"`
		Sort      string `json:"sort"`
		Limit     int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.CommentID <= 0 {
		return nil, fmt.Errorf("%w: comment_id is required", store.ErrInvalidArgument)
	}

	return c.comments.GetSubtree(ctx.Request.Context(), p.CommentID, p.Sort, p.Limit)
}
