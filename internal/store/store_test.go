package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thicketlabs/thicket/internal/models"
)

func TestKarmaDelta(t *testing.T) {
	tests := []struct {
		name     string
		oldValue int16
		newValue int16
		expected int64
	}{
		{"fresh upvote", 0, 1, 1},
		{"fresh downvote", 0, -1, -1},
		{"flip up to down", 1, -1, -2},
		{"flip down to up", -1, 1, 2},
		{"remove upvote", 1, 0, -1},
		{"remove downvote", -1, 0, 1},
		{"re-cast same upvote", 1, 1, 0},
		{"re-cast same downvote", -1, -1, 0},
		{"remove nonexistent", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := karmaDelta(tt.oldValue, tt.newValue); got != tt.expected {
				t.Errorf("karmaDelta(%d, %d) = %d, want %d", tt.oldValue, tt.newValue, got, tt.expected)
			}
		})
	}
}

func TestKarmaReason(t *testing.T) {
	tests := []struct {
		name     string
		oldValue int16
		newValue int16
		expected string
	}{
		{"fresh vote", 0, 1, models.KarmaReasonVoteCast},
		{"removal", 1, 0, models.KarmaReasonVoteRemoved},
		{"flip", 1, -1, models.KarmaReasonVoteChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := karmaReason(tt.oldValue, tt.newValue); got != tt.expected {
				t.Errorf("karmaReason(%d, %d) = %q, want %q", tt.oldValue, tt.newValue, got, tt.expected)
			}
		})
	}
}

func TestCastVoteRejectsInvalidValue(t *testing.T) {
	vl := &VoteLedger{}
	for _, value := range []int16{0, 2, -2, 10} {
		if _, err := vl.CastVote(context.Background(), 1, 1, models.TargetPost, value); !errors.Is(err, ErrInvalidVoteValue) {
			t.Errorf("CastVote(value=%d) error = %v, want ErrInvalidVoteValue", value, err)
		}
	}
}

func TestMutateRejectsInvalidTargetType(t *testing.T) {
	vl := &VoteLedger{}
	for _, targetType := range []string{"", "user", "POST", "posts"} {
		if _, err := vl.CastVote(context.Background(), 1, 1, targetType, 1); !errors.Is(err, ErrInvalidTargetType) {
			t.Errorf("CastVote(targetType=%q) error = %v, want ErrInvalidTargetType", targetType, err)
		}
	}
}

func TestChildPath(t *testing.T) {
	tests := []struct {
		name     string
		parent   *models.Comment
		id       int64
		expected string
	}{
		{"root comment", nil, 12, "12"},
		{"first reply", &models.Comment{Path: "12"}, 57, "12/57"},
		{"deep reply", &models.Comment{Path: "12/57/90"}, 104, "12/57/90/104"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := childPath(tt.parent, tt.id); got != tt.expected {
				t.Errorf("childPath = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPathDepth(t *testing.T) {
	tests := []struct {
		path     string
		expected int16
	}{
		{"", 0},
		{"12", 0},
		{"12/57", 1},
		{"12/57/90/104/200/314", 5},
	}

	for _, tt := range tests {
		if got := pathDepth(tt.path); got != tt.expected {
			t.Errorf("pathDepth(%q) = %d, want %d", tt.path, got, tt.expected)
		}
	}
}

func TestBuildThreadSorting(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	comments := []*models.Comment{
		{ID: 1, Path: "1", Score: 5, CreatedAt: base},
		{ID: 2, Path: "2", Score: 10, CreatedAt: base.Add(time.Minute)},
		{ID: 3, Path: "3", Score: 10, CreatedAt: base.Add(2 * time.Minute)},
		{ID: 4, PostID: 7, Path: "1/4", Score: 1, CreatedAt: base.Add(3 * time.Minute), ParentID: nullID(1)},
		{ID: 5, PostID: 7, Path: "1/5", Score: 9, CreatedAt: base.Add(4 * time.Minute), ParentID: nullID(1)},
	}

	best := buildThread(comments, SortBest, nil)
	if len(best) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(best))
	}
	// Ties on score break by path.
	wantOrder := []int64{2, 3, 1}
	for i, want := range wantOrder {
		if best[i].Comment.ID != want {
			t.Errorf("best root[%d] = %d, want %d", i, best[i].Comment.ID, want)
		}
	}
	if len(best[2].Children) != 2 || best[2].Children[0].Comment.ID != 5 {
		t.Errorf("expected comment 5 first under comment 1, got %+v", best[2].Children)
	}
	if best[2].ChildCount != 2 || best[0].ChildCount != 0 {
		t.Errorf("wrong child counts: %d, %d", best[2].ChildCount, best[0].ChildCount)
	}

	newest := buildThread(comments, SortNew, nil)
	if newest[0].Comment.ID != 3 || newest[1].Comment.ID != 2 || newest[2].Comment.ID != 1 {
		t.Errorf("new sort order wrong: %d, %d, %d",
			newest[0].Comment.ID, newest[1].Comment.ID, newest[2].Comment.ID)
	}
}

func TestBuildThreadOrphanPromotion(t *testing.T) {
	// A reply whose parent fell outside the fetch window becomes a root
	// rather than disappearing.
	comments := []*models.Comment{
		{ID: 9, Path: "4/9", ParentID: nullID(4)},
	}
	roots := buildThread(comments, SortBest, nil)
	if len(roots) != 1 || roots[0].Comment.ID != 9 {
		t.Fatalf("expected orphan promoted to root, got %+v", roots)
	}
}

func TestBuildThreadChildCountsFromTally(t *testing.T) {
	// Child counts come from the per-post tally, so a parent whose replies
	// fell past the fetch window still reports how many it has.
	comments := []*models.Comment{
		{ID: 1, Path: "1"},
	}
	roots := buildThread(comments, SortBest, map[int64]int64{1: 7})
	if len(roots) != 1 || roots[0].ChildCount != 7 {
		t.Fatalf("ChildCount = %d, want 7", roots[0].ChildCount)
	}

	// Without a tally the count falls back to the fetched children.
	roots = buildThread(comments, SortBest, nil)
	if roots[0].ChildCount != 0 {
		t.Errorf("fallback ChildCount = %d, want 0", roots[0].ChildCount)
	}
}

func TestBuildThreadPathTieBreak(t *testing.T) {
	// Equal scores order by materialized path, the stored left-to-right
	// sibling order.
	comments := []*models.Comment{
		{ID: 9, Path: "9", Score: 3},
		{ID: 10, Path: "10", Score: 3},
	}
	roots := buildThread(comments, SortBest, nil)
	if roots[0].Comment.ID != 10 || roots[1].Comment.ID != 9 {
		t.Errorf("tie order = %d, %d; want path order 10, 9",
			roots[0].Comment.ID, roots[1].Comment.ID)
	}
}

func TestCanModerate(t *testing.T) {
	tests := []struct {
		name string
		role int16
		want bool
	}{
		{"no role", 0, false},
		{"below mod", models.RoleMod - 1, false},
		{"mod", models.RoleMod, true},
		{"admin", models.RoleAdmin, true},
		{"owner", models.RoleOwner, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canModerate(tt.role); got != tt.want {
				t.Errorf("canModerate(%d) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value string
		id    int64
	}{
		{"hot score", "3.52187", 42},
		{"negative score", "-12", 7},
		{"timestamp", "1748800000000000000", 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, id, err := decodeCursor(encodeCursor(tt.value, tt.id))
			if err != nil {
				t.Fatalf("decodeCursor returned error: %v", err)
			}
			if value != tt.value || id != tt.id {
				t.Errorf("round trip = (%q, %d), want (%q, %d)", value, id, tt.value, tt.id)
			}
		})
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, cursor := range []string{"not base64 !!", "bm9zZXBhcmF0b3I", "dmFsdWV8bm90YW51bWJlcg"} {
		if _, _, err := decodeCursor(cursor); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("decodeCursor(%q) error = %v, want ErrInvalidArgument", cursor, err)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.expected {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}
