package ranking

import (
	"math"
	"testing"
	"time"
)

func TestHotScore(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		upvotes   int64
		downvotes int64
		age       time.Duration
		expected  float64
	}{
		{
			name:     "no votes at creation",
			expected: 0,
		},
		{
			name:      "five up one down after ten seconds",
			upvotes:   5,
			downvotes: 1,
			age:       10 * time.Second,
			expected:  math.Log10(4) - 10.0/45000.0,
		},
		{
			name:     "single upvote",
			upvotes:  1,
			expected: 0, // log10(1) == 0
		},
		{
			name:      "net negative",
			upvotes:   1,
			downvotes: 11,
			expected:  -1, // -log10(10)
		},
		{
			name:      "even split scores as zero votes",
			upvotes:   7,
			downvotes: 7,
			age:       45000 * time.Second,
			expected:  -1, // pure age penalty
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HotScore(tt.upvotes, tt.downvotes, t0, t0.Add(tt.age))
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("HotScore(%d, %d, age=%v) = %v, want %v",
					tt.upvotes, tt.downvotes, tt.age, got, tt.expected)
			}
		})
	}
}

func TestHotScoreAgeOrdering(t *testing.T) {
	// Two posts with identical votes: the newer one must never rank below
	// the older one, and the gap must grow with elapsed time.
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	older := now.Add(-24 * time.Hour)
	newer := now.Add(-1 * time.Hour)

	oldScore := HotScore(10, 2, older, now)
	newScore := HotScore(10, 2, newer, now)

	if newScore <= oldScore {
		t.Errorf("older post ranked at or above newer with identical votes: old=%v new=%v", oldScore, newScore)
	}
}

func TestHotScoreDecayOvertakesVotes(t *testing.T) {
	// Given enough elapsed time, a heavily upvoted old post falls below a
	// brand-new post with no votes.
	now := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	old := HotScore(1000, 0, now.Add(-48*time.Hour), now)
	fresh := HotScore(0, 0, now, now)

	if old >= fresh {
		t.Errorf("expected decay to dominate: old=%v fresh=%v", old, fresh)
	}
}

func TestHotScoreDiminishingReturns(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := t0.Add(time.Hour)

	// One extra upvote near zero moves the score more than one extra
	// upvote on a heavily voted post.
	lowGain := HotScore(2, 0, t0, now) - HotScore(1, 0, t0, now)
	highGain := HotScore(1001, 0, t0, now) - HotScore(1000, 0, t0, now)

	if lowGain <= highGain {
		t.Errorf("expected diminishing returns: lowGain=%v highGain=%v", lowGain, highGain)
	}
}

func TestControversy(t *testing.T) {
	tests := []struct {
		name      string
		upvotes   int64
		downvotes int64
		expected  float64
	}{
		{"no votes", 0, 0, 0},
		{"only upvotes", 10, 0, 0},
		{"only downvotes", 0, 10, 0},
		{"even split", 10, 10, 20}, // 20^1
		{"lopsided", 100, 1, math.Pow(101, 0.01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Controversy(tt.upvotes, tt.downvotes)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Controversy(%d, %d) = %v, want %v", tt.upvotes, tt.downvotes, got, tt.expected)
			}
		})
	}
}

func TestControversySplitBeatsLopsided(t *testing.T) {
	split := Controversy(50, 50)
	lopsided := Controversy(99, 1)
	if split <= lopsided {
		t.Errorf("even split should be more controversial: split=%v lopsided=%v", split, lopsided)
	}
}
