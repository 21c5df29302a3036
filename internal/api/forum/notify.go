package forum

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/store"
)

// NotifyAPI provides notification API methods
type NotifyAPI struct {
	notifs *db.NotificationRepository
}

// NewNotifyAPI creates a new notify API
func NewNotifyAPI(repo *db.Repository) *NotifyAPI {
	return &NotifyAPI{notifs: db.NewNotificationRepository(repo)}
}

// List handles notifications.list
func (n *NotifyAPI) List(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		UserID int64 `json:"user_id"`
		Limit  int   `json:"limit"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id is required", store.ErrInvalidArgument)
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 50
	}

	return n.notifs.ListForUser(ctx.Request.Context(), p.UserID, p.Limit)
}
