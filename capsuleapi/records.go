package capsuleapi

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"capsulex-blink/actionerr"
	"capsulex-blink/game"
)

// Capsule fetches GET /api/capsules/{id}.
func (c *Client) Capsule(ctx context.Context, capsuleID string) (*game.CapsuleRecord, error) {
	data, err := c.get(ctx, "/api/capsules/"+escape(capsuleID), "Capsule")
	if err != nil {
		return nil, err
	}
	return parseCapsule(data)
}

// Game fetches GET /api/games/{capsule_id}.
func (c *Client) Game(ctx context.Context, capsuleID string) (*game.GameRecord, error) {
	data, err := c.get(ctx, "/api/games/"+escape(capsuleID), "Game")
	if err != nil {
		return nil, err
	}
	return parseGame(data)
}

// GameLeaderboard fetches the participants of one game, best first.
func (c *Client) GameLeaderboard(ctx context.Context, capsuleID string) ([]game.LeaderboardEntry, error) {
	data, err := c.get(ctx, "/api/leaderboard/game/"+escape(capsuleID), "Game leaderboard")
	if err != nil {
		return nil, err
	}

	var out []game.LeaderboardEntry
	for _, e := range data.Array() {
		out = append(out, game.LeaderboardEntry{
			DisplayName:  e.Get("display_name").String(),
			IsWinner:     e.Get("is_winner").Bool(),
			PointsEarned: e.Get("points_earned").Int(),
		})
	}
	return out, nil
}

// GlobalLeaderboard fetches one page of the global ranking.
func (c *Client) GlobalLeaderboard(ctx context.Context, limit, offset int) ([]game.GlobalLeaderboardEntry, error) {
	path := fmt.Sprintf("/api/leaderboard/global?limit=%d&offset=%d", limit, offset)
	data, err := c.get(ctx, path, "Leaderboard")
	if err != nil {
		return nil, err
	}

	var out []game.GlobalLeaderboardEntry
	for _, e := range data.Array() {
		out = append(out, game.GlobalLeaderboardEntry{
			Rank:        int(e.Get("rank").Int()),
			DisplayName: e.Get("display_name").String(),
			TotalPoints: e.Get("total_points").Int(),
		})
	}
	return out, nil
}

// UserStats fetches the totals of one wallet.
func (c *Client) UserStats(ctx context.Context, wallet string) (*game.UserStats, error) {
	data, err := c.get(ctx, "/api/leaderboard/user/"+escape(wallet), "User")
	if err != nil {
		return nil, err
	}

	stats := &game.UserStats{
		DisplayName:       data.Get("display_name").String(),
		TotalPoints:       data.Get("total_points").Int(),
		GamesParticipated: int(data.Get("games_participated").Int()),
		GamesWon:          int(data.Get("games_won").Int()),
		BadgeCount:        int(data.Get("badge_count").Int()),
	}
	if rank := data.Get("global_rank"); rank.Exists() && rank.Type != gjson.Null {
		r := int(rank.Int())
		stats.GlobalRank = &r
	}
	return stats, nil
}

// CapsuleAndGame fetches both records concurrently. Either failure fails the
// whole call.
func (c *Client) CapsuleAndGame(ctx context.Context, capsuleID string) (*game.CapsuleRecord, *game.GameRecord, error) {
	var (
		capsule *game.CapsuleRecord
		record  *game.GameRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		capsule, err = c.Capsule(gctx, capsuleID)
		return err
	})
	g.Go(func() (err error) {
		record, err = c.Game(gctx, capsuleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return capsule, record, nil
}

// CapsuleAndLeaderboard fetches the capsule and its game leaderboard
// concurrently.
func (c *Client) CapsuleAndLeaderboard(ctx context.Context, capsuleID string) (*game.CapsuleRecord, []game.LeaderboardEntry, error) {
	var (
		capsule *game.CapsuleRecord
		entries []game.LeaderboardEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		capsule, err = c.Capsule(gctx, capsuleID)
		return err
	})
	g.Go(func() (err error) {
		entries, err = c.GameLeaderboard(gctx, capsuleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return capsule, entries, nil
}

func parseCapsule(data gjson.Result) (*game.CapsuleRecord, error) {
	reveal, err := parseTime(data.Get("reveal_date").String())
	if err != nil {
		return nil, actionerr.NewUpstreamUnavailable(fmt.Errorf("capsule reveal_date: %w", err))
	}

	return &game.CapsuleRecord{
		ID:            data.Get("capsule_id").String(),
		CreatorWallet: data.Get("users.wallet_address").String(),
		RevealDate:    reveal,
		IsGamified:    data.Get("is_gamified").Bool(),
		Status:        game.CapsuleStatus(data.Get("status").String()),
		ContentHash:   data.Get("content_hash").String(),
		OnChainTx:     data.Get("on_chain_tx").String(),
	}, nil
}

func parseGame(data gjson.Result) (*game.GameRecord, error) {
	record := &game.GameRecord{
		GameID:            data.Get("game_id").String(),
		CapsuleID:         data.Get("capsule_id").String(),
		CapsulePDA:        data.Get("capsule_pda").String(),
		Creator:           data.Get("creator").String(),
		MaxGuesses:        uint32(data.Get("max_guesses").Uint()),
		MaxWinners:        uint32(data.Get("max_winners").Uint()),
		CurrentGuesses:    uint32(data.Get("current_guesses").Uint()),
		WinnersFound:      uint32(data.Get("winners_found").Uint()),
		IsActive:          data.Get("is_active").Bool(),
		TotalParticipants: uint32(data.Get("total_participants").Uint()),
		ContentHint:       data.Get("content_hint").String(),
		IsRevealed:        data.Get("is_revealed").Bool(),
	}
	if s := data.Get("reveal_date").String(); s != "" {
		reveal, err := parseTime(s)
		if err != nil {
			return nil, actionerr.NewUpstreamUnavailable(fmt.Errorf("game reveal_date: %w", err))
		}
		record.RevealDate = reveal
	}
	return record, nil
}

// parseTime accepts RFC 3339 with or without fractional seconds, and bare
// timestamps as UTC.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}
