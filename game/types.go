package game

import "time"

// CapsuleStatus - lifecycle of a time capsule
type CapsuleStatus string

const (
	StatusPending  CapsuleStatus = "pending"
	StatusRevealed CapsuleStatus = "revealed"
	StatusPosted   CapsuleStatus = "posted"
)

// CapsuleRecord - snapshot of a capsule as reported by the backend
type CapsuleRecord struct {
	ID            string        `json:"capsule_id"`
	CreatorWallet string        `json:"creator_wallet"`
	RevealDate    time.Time     `json:"reveal_date"`
	IsGamified    bool          `json:"is_gamified"`
	Status        CapsuleStatus `json:"status"`
	ContentHash   string        `json:"content_hash,omitempty"`
	OnChainTx     string        `json:"on_chain_tx,omitempty"`
}

// GameRecord - game parameters of a gamified capsule
type GameRecord struct {
	GameID            string    `json:"game_id"`
	CapsuleID         string    `json:"capsule_id"`
	CapsulePDA        string    `json:"capsule_pda"`
	Creator           string    `json:"creator"`
	MaxGuesses        uint32    `json:"max_guesses"`
	MaxWinners        uint32    `json:"max_winners"`
	CurrentGuesses    uint32    `json:"current_guesses"`
	WinnersFound      uint32    `json:"winners_found"`
	IsActive          bool      `json:"is_active"`
	TotalParticipants uint32    `json:"total_participants"`
	RevealDate        time.Time `json:"reveal_date"`
	ContentHint       string    `json:"content_hint,omitempty"`
	IsRevealed        bool      `json:"is_revealed"`
}

// LeaderboardEntry - one participant of a single game
type LeaderboardEntry struct {
	DisplayName  string `json:"display_name"`
	IsWinner     bool   `json:"is_winner"`
	PointsEarned int64  `json:"points_earned"`
}

// GlobalLeaderboardEntry - one row of the global ranking
type GlobalLeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	TotalPoints int64  `json:"total_points"`
}

// UserStats - per-wallet totals
type UserStats struct {
	DisplayName       string `json:"display_name"`
	TotalPoints       int64  `json:"total_points"`
	GamesParticipated int    `json:"games_participated"`
	GamesWon          int    `json:"games_won"`
	BadgeCount        int    `json:"badge_count"`
	GlobalRank        *int   `json:"global_rank,omitempty"`
}
