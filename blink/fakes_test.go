package blink

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"capsulex-blink/actionerr"
	"capsulex-blink/capsuleprogram"
	"capsulex-blink/game"
)

const (
	testCapsuleID = "7b0c3f52-4d1e-4a8f-9e2a-1f3c5d7e9a11"
	testCreator   = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	testGuesser   = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
)

var testNow = time.Date(2025, 7, 24, 5, 30, 0, 0, time.UTC)

// fakeGateway serves canned records and counts lookups.
type fakeGateway struct {
	mu sync.Mutex

	capsule     *game.CapsuleRecord
	game        *game.GameRecord
	entries     []game.LeaderboardEntry
	global      []game.GlobalLeaderboardEntry
	stats       map[string]*game.UserStats
	err         error
	boardErr    error
	lookups     int
	globalLimit int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		capsule: &game.CapsuleRecord{
			ID:            testCapsuleID,
			CreatorWallet: testCreator,
			RevealDate:    time.Date(2025, 7, 24, 7, 0, 0, 0, time.UTC),
			IsGamified:    true,
			Status:        game.StatusPending,
		},
		game: &game.GameRecord{
			CapsuleID:      testCapsuleID,
			IsActive:       true,
			CurrentGuesses: 3,
			MaxGuesses:     10,
			WinnersFound:   0,
			MaxWinners:     1,
		},
		stats: map[string]*game.UserStats{},
	}
}

func (g *fakeGateway) lookup() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups++
	return g.err
}

func (g *fakeGateway) Capsule(ctx context.Context, capsuleID string) (*game.CapsuleRecord, error) {
	if err := g.lookup(); err != nil {
		return nil, err
	}
	return g.capsule, nil
}

func (g *fakeGateway) GameLeaderboard(ctx context.Context, capsuleID string) ([]game.LeaderboardEntry, error) {
	if err := g.lookup(); err != nil {
		return nil, err
	}
	if g.boardErr != nil {
		return nil, g.boardErr
	}
	return g.entries, nil
}

func (g *fakeGateway) GlobalLeaderboard(ctx context.Context, limit, offset int) ([]game.GlobalLeaderboardEntry, error) {
	if err := g.lookup(); err != nil {
		return nil, err
	}
	g.globalLimit = limit
	return g.global, nil
}

func (g *fakeGateway) UserStats(ctx context.Context, wallet string) (*game.UserStats, error) {
	if err := g.lookup(); err != nil {
		return nil, err
	}
	stats, ok := g.stats[wallet]
	if !ok {
		return nil, actionerr.NewNotFound("User", nil)
	}
	return stats, nil
}

func (g *fakeGateway) CapsuleAndGame(ctx context.Context, capsuleID string) (*game.CapsuleRecord, *game.GameRecord, error) {
	if err := g.lookup(); err != nil {
		return nil, nil, err
	}
	return g.capsule, g.game, nil
}

func (g *fakeGateway) CapsuleAndLeaderboard(ctx context.Context, capsuleID string) (*game.CapsuleRecord, []game.LeaderboardEntry, error) {
	if err := g.lookup(); err != nil {
		return nil, nil, err
	}
	return g.capsule, g.entries, nil
}

// countingSource hands out distinct blockhashes.
type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return solana.Hash{}, s.err
	}
	var h solana.Hash
	h[0] = byte(s.calls)
	h[1] = 0x42
	return h, nil
}

var errRPCDown = errors.New("rpc down")

func testFormatter() *Formatter {
	return NewFormatter(FormatterConfig{
		BlinkBaseURL: "https://blinks.example.com/",
		IconURL:      "https://cdn.example.com/icon.png",
		BlockchainID: capsuleprogram.BlockchainIDDevnet,
	})
}

func newTestService(gw *fakeGateway, src *countingSource, opts ...Option) *Service {
	asm := capsuleprogram.NewAssembler(capsuleprogram.DefaultProgramID, src)
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(gw, asm, testFormatter(), nil, opts...)
}
