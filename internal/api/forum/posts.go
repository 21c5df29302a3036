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

// PostsAPI provides post API methods
type PostsAPI struct {
	posts      *store.PostStore
	aggregates *store.AggregateMaintainer
	cache      *cache.Cache
}

// NewPostsAPI creates a new posts API
func NewPostsAPI(posts *store.PostStore, aggregates *store.AggregateMaintainer, redisCache *cache.Cache) *PostsAPI {
	return &PostsAPI{
		posts:      posts,
		aggregates: aggregates,
		cache:      redisCache,
	}
}

type createPostParams struct {
	AuthorID    int64  `json:"author_id"`
	CommunityID int64  `json:"community_id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Type        string `json:"type"`
}

// Create handles posts.create
func (p *PostsAPI) Create(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var req createPostParams
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if req.AuthorID <= 0 || req.CommunityID <= 0 {
		return nil, fmt.Errorf("%w: author_id and community_id are required", store.ErrInvalidArgument)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", store.ErrInvalidArgument)
	}

	return p.posts.Create(ctx.Request.Context(), req.AuthorID, req.CommunityID, req.Title, req.Body, req.Type)
}

// Get handles posts.get
func (p *PostsAPI) Get(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var req struct {
		PostID int64 `json:"post_id"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if req.PostID <= 0 {
		return nil, fmt.Errorf("%w: post_id is required", store.ErrInvalidArgument)
	}

	return p.posts.Get(ctx.Request.Context(), req.PostID)
}

// Delete handles posts.delete
func (p *PostsAPI) Delete(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var req struct {
		PostID int64 `json:"post_id"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if req.PostID <= 0 {
		return nil, fmt.Errorf("%w: post_id is required", store.ErrInvalidArgument)
	}

	if err := p.posts.SoftDelete(ctx.Request.Context(), req.PostID); err != nil {
		return nil, err
	}
	return gin.H{"deleted": true}, nil
}

type listRankedParams struct {
	CommunityID *int64 `json:"community_id"`
	Sort        string `json:"sort"`
	Cursor      string `json:"cursor"`
	Limit       int    `json:"limit"`
}

// ListRanked handles posts.list_ranked
func (p *PostsAPI) ListRanked(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var req listRankedParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
		}
	}

	communityKey := ""
	if req.CommunityID != nil {
		communityKey = strconv.FormatInt(*req.CommunityID, 10)
	}
	cacheKey := cache.HashKey(
		"posts_list_ranked",
		communityKey,
		req.Sort,
		req.Cursor,
		strconv.Itoa(req.Limit),
	)
	if p.cache != nil {
		var cached store.PostPage
		if err := p.cache.GetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	page, err := p.posts.ListRanked(ctx.Request.Context(), req.CommunityID, req.Sort, req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		_ = p.cache.SetJSON(cacheKey, page, listCacheTTL(req.Sort))
	}
	return page, nil
}

// RecomputeHot handles posts.recompute_hot
func (p *PostsAPI) RecomputeHot(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var req struct {
		PostID  int64   `json:"post_id"`
		PostIDs []int64 `json:"post_ids"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}

	if len(req.PostIDs) > 0 {
		if err := p.aggregates.RecomputeHotScores(ctx.Request.Context(), req.PostIDs); err != nil {
			return nil, err
		}
		return gin.H{"recomputed": len(req.PostIDs)}, nil
	}
	if req.PostID <= 0 {
		return nil, fmt.Errorf("%w: post_id or post_ids is required", store.ErrInvalidArgument)
	}
	if err := p.aggregates.RecomputeHotScore(ctx.Request.Context(), req.PostID); err != nil {
		return nil, err
	}
	return gin.H{"recomputed": 1}, nil
}

type moderateParams struct {
	ModID  int64 `json:"mod_id"`
	PostID int64 `json:"post_id"`
	Value  bool  `json:"value"`
}

// SetPinned handles posts.set_pinned
func (p *PostsAPI) SetPinned(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	req, err := parseModerateParams(params)
	if err != nil {
		return nil, err
	}
	if err := p.posts.SetPinned(ctx.Request.Context(), req.ModID, req.PostID, req.Value); err != nil {
		return nil, err
	}
	return gin.H{"pinned": req.Value}, nil
}

// SetLocked handles posts.set_locked
func (p *PostsAPI) SetLocked(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	req, err := parseModerateParams(params)
	if err != nil {
		return nil, err
	}
	if err := p.posts.SetLocked(ctx.Request.Context(), req.ModID, req.PostID, req.Value); err != nil {
		return nil, err
	}
	return gin.H{"locked": req.Value}, nil
}

func parseModerateParams(params json.RawMessage) (*moderateParams, error) {
	var req moderateParams
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if req.ModID <= 0 || req.PostID <= 0 {
		return nil, fmt.Errorf("%w: mod_id and post_id are required", store.ErrInvalidArgument)
	}
	return &req, nil
}

// listCacheTTL keeps hot listings fresher than slower-moving sorts.
func listCacheTTL(sort string) time.Duration {
	switch sort {
	case store.SortNew:
		return 10 * time.Second
	case store.SortTop:
		return 60 * time.Second
	default:
		return 30 * time.Second
	}
}
