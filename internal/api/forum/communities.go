package forum

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/thicketlabs/thicket/internal/store"
)

// CommunitiesAPI provides community API methods
type CommunitiesAPI struct {
	communities *store.CommunityStore
	counters    *store.CounterMaintainer
}

// NewCommunitiesAPI creates a new communities API
func NewCommunitiesAPI(communities *store.CommunityStore, counters *store.CounterMaintainer) *CommunitiesAPI {
	return &CommunitiesAPI{
		communities: communities,
		counters:    counters,
	}
}

type createCommunityParams struct {
	CreatorID int64  `json:"creator_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	About     string `json:"about"`
}

// Create handles communities.create
func (c *CommunitiesAPI) Create(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p createCommunityParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.CreatorID <= 0 {
		return nil, fmt.Errorf("%w: creator_id is required", store.ErrInvalidArgument)
	}

	return c.communities.Create(ctx.Request.Context(), p.CreatorID, p.Slug, p.Name, p.About)
}

// Get handles communities.get, by ID or slug
func (c *CommunitiesAPI) Get(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		CommunityID int64  `json:"community_id"`
		Slug        string `json:"slug"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}

	if p.CommunityID > 0 {
		return c.communities.Get(ctx.Request.Context(), p.CommunityID)
	}
	if p.Slug != "" {
		return c.communities.GetBySlug(ctx.Request.Context(), p.Slug)
	}
	return nil, fmt.Errorf("%w: community_id or slug is required", store.ErrInvalidArgument)
}

// List handles communities.list
func (c *CommunitiesAPI) List(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Limit int `json:"limit"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
		}
	}

	return c.communities.List(ctx.Request.Context(), p.Limit)
}

type membershipParams struct {
	UserID      int64 `json:"user_id"`
	CommunityID int64 `json:"community_id"`
}

// Join handles communities.join
func (c *CommunitiesAPI) Join(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseMembershipParams(params)
	if err != nil {
		return nil, err
	}
	if err := c.counters.Join(ctx.Request.Context(), p.UserID, p.CommunityID); err != nil {
		return nil, err
	}
	return gin.H{"joined": true}, nil
}

// Leave handles communities.leave
func (c *CommunitiesAPI) Leave(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseMembershipParams(params)
	if err != nil {
		return nil, err
	}
	if err := c.counters.Leave(ctx.Request.Context(), p.UserID, p.CommunityID); err != nil {
		return nil, err
	}
	return gin.H{"left": true}, nil
}

// IsMember handles communities.is_member
func (c *CommunitiesAPI) IsMember(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseMembershipParams(params)
	if err != nil {
		return nil, err
	}
	member, err := c.counters.IsMember(ctx.Request.Context(), p.UserID, p.CommunityID)
	if err != nil {
		return nil, err
	}
	return gin.H{"member": member}, nil
}

func parseMembershipParams(params json.RawMessage) (*membershipParams, error) {
	var p membershipParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.UserID <= 0 || p.CommunityID <= 0 {
		return nil, fmt.Errorf("%w: user_id and community_id are required", store.ErrInvalidArgument)
	}
	return &p, nil
}
