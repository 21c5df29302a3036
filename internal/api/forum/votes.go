package forum

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
	"github.com/thicketlabs/thicket/internal/store"
)

// VotesAPI provides vote API methods
type VotesAPI struct {
	ledger *store.VoteLedger
	votes  *db.VoteRepository
}

// NewVotesAPI creates a new votes API
func NewVotesAPI(ledger *store.VoteLedger, repo *db.Repository) *VotesAPI {
	return &VotesAPI{
		ledger: ledger,
		votes:  db.NewVoteRepository(repo),
	}
}

type voteParams struct {
	VoterID    int64  `json:"voter_id"`
	TargetID   int64  `json:"target_id"`
	TargetType string `json:"target_type"`
	Value      int16  `json:"value"`
}

// Cast handles votes.cast
func (v *VotesAPI) Cast(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p voteParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.VoterID <= 0 || p.TargetID <= 0 {
		return nil, fmt.Errorf("%w: voter_id and target_id are required", store.ErrInvalidArgument)
	}

	return v.ledger.CastVote(ctx.Request.Context(), p.VoterID, p.TargetID, p.TargetType, p.Value)
}

// Remove handles votes.remove
func (v *VotesAPI) Remove(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p voteParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.VoterID <= 0 || p.TargetID <= 0 {
		return nil, fmt.Errorf("%w: voter_id and target_id are required", store.ErrInvalidArgument)
	}

	return v.ledger.RemoveVote(ctx.Request.Context(), p.VoterID, p.TargetID, p.TargetType)
}

// Get handles votes.get, reporting the voter's current vote on a target.
// An absent vote reads as zero.
func (v *VotesAPI) Get(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p voteParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.VoterID <= 0 || p.TargetID <= 0 {
		return nil, fmt.Errorf("%w: voter_id and target_id are required", store.ErrInvalidArgument)
	}
	if p.TargetType != models.TargetPost && p.TargetType != models.TargetComment {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidTargetType, p.TargetType)
	}

	vote, err := v.votes.Get(ctx.Request.Context(), p.VoterID, p.TargetID, p.TargetType)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return gin.H{"value": 0}, nil
	}
	return gin.H{"value": vote.Value}, nil
}

// List handles votes.list, a voter's votes newest first.
func (v *VotesAPI) List(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		VoterID int64 `json:"voter_id"`
		Limit   int   `json:"limit"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}
	if p.VoterID <= 0 {
		return nil, fmt.Errorf("%w: voter_id is required", store.ErrInvalidArgument)
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 50
	}

	return v.votes.ListByVoter(ctx.Request.Context(), p.VoterID, p.Limit)
}
