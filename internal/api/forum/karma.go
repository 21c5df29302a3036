package forum

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/thicketlabs/thicket/internal/store"
)

// KarmaAPI provides karma API methods
type KarmaAPI struct {
	karma *store.KarmaLedger
}

// NewKarmaAPI creates a new karma API
func NewKarmaAPI(karma *store.KarmaLedger) *KarmaAPI {
	return &KarmaAPI{karma: karma}
}

// GetUser handles karma.get_user
func (k *KarmaAPI) GetUser(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id is required", store.ErrInvalidArgument)
	}

	return k.karma.GetUserKarma(ctx.Request.Context(), p.UserID)
}

// GetLog handles karma.get_log
func (k *KarmaAPI) GetLog(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
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

	return k.karma.GetUserLog(ctx.Request.Context(), p.UserID, p.Limit)
}
