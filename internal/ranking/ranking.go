// Package ranking holds the pure scoring functions used to order posts.
// Scores are computed against a caller-supplied reference time so stored
// values are comparable point-in-time snapshots.
package ranking

import (
	"math"
	"time"
)

// ageScale converts elapsed seconds into the time term of the hot score.
// One log10 unit of net votes buys a post 45000 seconds (12.5 hours) of
// ranking parity against newer content.
const ageScale = 45000.0

// HotScore maps a post's vote state and age to its ranking score.
//
// Let s = upvotes - downvotes. The vote term is sign(s) * log10(max(|s|,1)),
// so additional votes on an already-popular post have diminishing impact.
// Age subtracts linearly, so a fixed vote state decays toward the bottom
// as newer posts arrive. now must be a fixed reference captured once per
// recomputation batch, never wall-clock at read time.
func HotScore(upvotes, downvotes int64, createdAt, now time.Time) float64 {
	s := upvotes - downvotes

	sign := 0.0
	if s > 0 {
		sign = 1.0
	} else if s < 0 {
		sign = -1.0
	}

	magnitude := s
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude < 1 {
		magnitude = 1
	}
	order := math.Log10(float64(magnitude))

	ageSeconds := now.Sub(createdAt).Seconds()

	return order*sign - ageSeconds/ageScale
}

// Controversy measures how evenly split a target's votes are. A target with
// votes on only one side scores zero; a heavily voted, evenly split target
// scores highest. The metric is magnitude^balance where magnitude is the
// total vote count and balance is the minority/majority ratio.
func Controversy(upvotes, downvotes int64) float64 {
	if upvotes <= 0 || downvotes <= 0 {
		return 0
	}

	magnitude := float64(upvotes + downvotes)
	var balance float64
	if upvotes > downvotes {
		balance = float64(downvotes) / float64(upvotes)
	} else {
		balance = float64(upvotes) / float64(downvotes)
	}

	return math.Pow(magnitude, balance)
}
