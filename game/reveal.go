package game

import "time"

// IsRevealed reports whether the capsule content has been opened.
func (c *CapsuleRecord) IsRevealed() bool {
	return c.Status == StatusRevealed || c.Status == StatusPosted
}

// TimeUntilReveal is clamped at zero and truncated to whole seconds.
func (c *CapsuleRecord) TimeUntilReveal(now time.Time) time.Duration {
	left := c.RevealDate.Sub(now).Truncate(time.Second)
	if left < 0 {
		return 0
	}
	return left
}

// CanStillJoin reports whether new guesses make sense. A nil game skips the
// activity check (leaderboard views only know the capsule).
func CanStillJoin(capsule *CapsuleRecord, game *GameRecord, now time.Time) bool {
	if capsule.IsRevealed() || capsule.TimeUntilReveal(now) <= 0 {
		return false
	}
	return game == nil || game.IsActive
}
