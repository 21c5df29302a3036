package forum

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/thicketlabs/thicket/internal/store"
)

// UsersAPI provides user API methods
type UsersAPI struct {
	users *store.UserStore
}

// NewUsersAPI creates a new users API
func NewUsersAPI(users *store.UserStore) *UsersAPI {
	return &UsersAPI{users: users}
}

// Create handles users.create
func (u *UsersAPI) Create(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}

	return u.users.Create(ctx.Request.Context(), p.Username, p.DisplayName)
}

// Get handles users.get, by ID or username
func (u *UsersAPI) Get(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}

	if p.UserID > 0 {
		return u.users.Get(ctx.Request.Context(), p.UserID)
	}
	if p.Username != "" {
		return u.users.GetByUsername(ctx.Request.Context(), p.Username)
	}
	return nil, fmt.Errorf("%w: user_id or username is required", store.ErrInvalidArgument)
}
