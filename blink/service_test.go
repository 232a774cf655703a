package blink

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capsulex-blink/actionerr"
	"capsulex-blink/capsuleprogram"
	"capsulex-blink/game"
)

func mustAccount(t *testing.T, s string) capsuleprogram.PublicAccount {
	t.Helper()
	acct, err := capsuleprogram.ParseAccount(s)
	require.NoError(t, err)
	return acct
}

func decodeTransaction(t *testing.T, encoded string) *solana.Transaction {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	tx, err := solana.TransactionFromBytes(raw)
	require.NoError(t, err)
	return tx
}

func TestService_PostGuess(t *testing.T) {
	gw := newFakeGateway()
	src := &countingSource{}
	svc := newTestService(gw, src)

	env := svc.Post(context.Background(), ActionRequest{
		CapsuleID: testCapsuleID,
		Account:   mustAccount(t, testGuesser),
		Action:    game.Guess{Content: "42", Anonymous: true},
	})

	require.Equal(t, EnvelopeTransaction, env.Kind)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, "🎯 Submitted anonymous guess: \"42\"", env.Message)
	assert.Empty(t, env.NextLink)
	assert.Equal(t, 1, src.calls)

	tx := decodeTransaction(t, env.Transaction)
	assert.Equal(t, testGuesser, tx.Message.AccountKeys[0].String())
	require.Len(t, tx.Message.Instructions, 1)
	program, err := tx.Message.Program(tx.Message.Instructions[0].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, capsuleprogram.DefaultProgramID, program)
}

func TestService_PostGuessPublic(t *testing.T) {
	svc := newTestService(newFakeGateway(), &countingSource{})

	env := svc.Post(context.Background(), ActionRequest{
		CapsuleID: testCapsuleID,
		Account:   mustAccount(t, testGuesser),
		Action:    game.Guess{Content: "a \"quoted\" guess"},
	})
	require.Equal(t, EnvelopeTransaction, env.Kind)
	assert.Equal(t, "🎯 Submitted public guess: \"a \"quoted\" guess\"", env.Message)
}

func TestService_PostGuessRejected(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*fakeGateway)
		guess  string
		kind   actionerr.Kind
		status int
	}{
		{"full game", func(g *fakeGateway) { g.game.CurrentGuesses = g.game.MaxGuesses }, "42", actionerr.GameFull, 500},
		{"inactive game", func(g *fakeGateway) { g.game.IsActive = false }, "42", actionerr.GameInactive, 500},
		{"not gamified", func(g *fakeGateway) { g.capsule.IsGamified = false }, "42", actionerr.NotGamified, 500},
		{"empty guess", func(*fakeGateway) {}, "  ", actionerr.EmptyGuess, 400},
		{"unknown capsule", func(g *fakeGateway) { g.err = actionerr.NewNotFound("Capsule", nil) }, "42", actionerr.NotFound, 404},
		{"backend down", func(g *fakeGateway) { g.err = actionerr.NewUpstreamUnavailable(nil) }, "42", actionerr.UpstreamUnavailable, 500},
		{"bad creator", func(g *fakeGateway) { g.capsule.CreatorWallet = "garbage" }, "42", actionerr.InvalidKey, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newFakeGateway()
			tc.mutate(gw)
			src := &countingSource{}
			svc := newTestService(gw, src)

			env := svc.Post(context.Background(), ActionRequest{
				CapsuleID: testCapsuleID,
				Account:   mustAccount(t, testGuesser),
				Action:    game.Guess{Content: tc.guess},
			})

			assert.Equal(t, EnvelopeError, env.Kind)
			assert.Equal(t, tc.kind, env.ErrorKind)
			assert.Equal(t, tc.status, env.Status)
			assert.Empty(t, env.Transaction)
			assert.Zero(t, src.calls, "no blockhash for a rejected action")
		})
	}
}

func TestService_PostBlockhashFailure(t *testing.T) {
	src := &countingSource{err: errRPCDown}
	svc := newTestService(newFakeGateway(), src)

	env := svc.Post(context.Background(), ActionRequest{
		CapsuleID: testCapsuleID,
		Account:   mustAccount(t, testGuesser),
		Action:    game.Guess{Content: "42"},
	})
	assert.Equal(t, actionerr.NetworkUnavailable, env.ErrorKind)
	assert.Equal(t, "Solana network is temporarily unavailable", env.ErrorMessage)
	assert.NotContains(t, env.ErrorMessage, errRPCDown.Error())
}

func TestService_PostInformationalActions(t *testing.T) {
	cases := []struct {
		action  game.Action
		message string
		next    string
	}{
		{game.View{}, "📊 Viewing details for Time Capsule " + testCapsuleID, "/api/game-details/" + testCapsuleID},
		{game.Leaderboard{}, "🏆 Checking leaderboard for Time Capsule " + testCapsuleID, "/api/game-leaderboard/" + testCapsuleID},
	}
	for _, tc := range cases {
		t.Run(string(tc.action.Kind()), func(t *testing.T) {
			gw := newFakeGateway()
			gw.capsule.IsGamified = false
			svc := newTestService(gw, &countingSource{})

			env := svc.Post(context.Background(), ActionRequest{
				CapsuleID: testCapsuleID,
				Account:   mustAccount(t, testGuesser),
				Action:    tc.action,
			})

			require.Equal(t, EnvelopeTransaction, env.Kind)
			assert.Equal(t, tc.message, env.Message)
			assert.Equal(t, tc.next, env.NextLink)
			assert.Zero(t, gw.lookups, "informational actions do not hit the backend")

			tx := decodeTransaction(t, env.Transaction)
			require.Len(t, tx.Message.Instructions, 1)
			assert.Empty(t, tx.Message.Instructions[0].Data)
		})
	}
}

func TestService_GameDetails(t *testing.T) {
	svc := newTestService(newFakeGateway(), &countingSource{})

	resp, err := svc.GameDetails(context.Background(), testCapsuleID)
	require.NoError(t, err)
	assert.Equal(t, "🎯 Game Details", resp.Title)
	assert.Contains(t, resp.Description, "📊 Participants: 3/10")
	assert.Contains(t, resp.Description, "⏰ 1h 30m left")
	assert.Contains(t, resp.Description, "✅ You can still join this game!")
	assert.Equal(t, "Join Game", resp.Label)
	require.NotNil(t, resp.Links)
	assert.Equal(t, GuessPath(testCapsuleID), resp.Links.Actions[0].Href)
}

func TestService_GameDetailsRevealed(t *testing.T) {
	gw := newFakeGateway()
	gw.capsule.Status = game.StatusRevealed
	svc := newTestService(gw, &countingSource{})

	resp, err := svc.GameDetails(context.Background(), testCapsuleID)
	require.NoError(t, err)
	assert.Contains(t, resp.Description, "⏰ Revealed!")
	assert.Contains(t, resp.Description, "🎉 Game completed!")
	assert.Nil(t, resp.Links)
}

func TestService_GameLeaderboard(t *testing.T) {
	gw := newFakeGateway()
	gw.entries = []game.LeaderboardEntry{
		{DisplayName: "alice", IsWinner: true, PointsEarned: 15},
		{DisplayName: "bob", PointsEarned: 5},
	}
	svc := newTestService(gw, &countingSource{})

	resp, err := svc.GameLeaderboard(context.Background(), testCapsuleID)
	require.NoError(t, err)
	assert.Contains(t, resp.Description, "👥 Total Participants: 2")
	assert.Contains(t, resp.Description, "1. alice 🏆 (+15pts)")
	assert.Contains(t, resp.Description, "2. bob")
	assert.NotContains(t, resp.Description, "(+5pts)")
}

func TestService_GlobalLeaderboard(t *testing.T) {
	gw := newFakeGateway()
	gw.global = []game.GlobalLeaderboardEntry{{Rank: 1, DisplayName: "alice", TotalPoints: 120}}
	svc := newTestService(gw, &countingSource{})

	resp, err := svc.GlobalLeaderboard(context.Background(), "https://api.example.com")
	require.NoError(t, err)
	assert.Equal(t, 10, gw.globalLimit)
	assert.Contains(t, resp.Description, "1. alice - 120 pts")
	require.NotNil(t, resp.Links)
	assert.Equal(t, "https://blinks.example.com/game", resp.Links.Actions[0].Href)
	assert.Equal(t, "https://api.example.com/api/leaderboard/user", resp.Links.Actions[1].Href)
}

func TestService_UserStats(t *testing.T) {
	gw := newFakeGateway()
	rank := 4
	gw.stats[testGuesser] = &game.UserStats{DisplayName: "carol", TotalPoints: 30, GamesParticipated: 3, GamesWon: 1, GlobalRank: &rank}
	svc := newTestService(gw, &countingSource{})
	ctx := context.Background()

	form, err := svc.UserStats(ctx, "", "https://api.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Get My Stats", form.Label)
	assert.Zero(t, gw.lookups)

	_, err = svc.UserStats(ctx, "not-a-key", "https://api.example.com")
	assert.True(t, actionerr.Is(err, actionerr.InvalidAccount))

	resp, err := svc.UserStats(ctx, testGuesser, "https://api.example.com")
	require.NoError(t, err)
	assert.Equal(t, "📊 carol Stats", resp.Title)
	assert.Contains(t, resp.Description, "🌟 Global Rank: #4")

	start, err := svc.UserStats(ctx, testCreator, "https://api.example.com")
	require.NoError(t, err)
	assert.Equal(t, "🎮 Start Your CapsuleX Journey", start.Title)
}

func TestService_GameLeaderboardSummary(t *testing.T) {
	ctx := context.Background()
	origin := "https://api.example.com"

	t.Run("active", func(t *testing.T) {
		gw := newFakeGateway()
		gw.entries = []game.LeaderboardEntry{{DisplayName: "alice"}}
		resp, err := newTestService(gw, &countingSource{}).GameLeaderboardSummary(ctx, testCapsuleID, origin)
		require.NoError(t, err)
		assert.Equal(t, "🎯 Game 7b0c3f52... Leaderboard", resp.Title)
		assert.Contains(t, resp.Description, "🎮 Active Game")
		assert.Contains(t, resp.Description, "Current Leaders:\n1. alice")
		assert.Equal(t, "Join Game", resp.Label)
		assert.Equal(t, "https://blinks.example.com/game/"+testCapsuleID, resp.Links.Actions[0].Href)
	})

	t.Run("not gamified", func(t *testing.T) {
		gw := newFakeGateway()
		gw.capsule.IsGamified = false
		_, err := newTestService(gw, &countingSource{}).GameLeaderboardSummary(ctx, testCapsuleID, origin)
		assert.True(t, actionerr.Is(err, actionerr.NotGamified))
	})

	t.Run("capsule missing", func(t *testing.T) {
		gw := newFakeGateway()
		gw.err = actionerr.NewUpstreamUnavailable(nil)
		_, err := newTestService(gw, &countingSource{}).GameLeaderboardSummary(ctx, testCapsuleID, origin)
		assert.True(t, actionerr.Is(err, actionerr.NotFound))
	})

	t.Run("leaderboard missing", func(t *testing.T) {
		gw := newFakeGateway()
		gw.boardErr = actionerr.NewUpstreamUnavailable(nil)
		_, err := newTestService(gw, &countingSource{}).GameLeaderboardSummary(ctx, testCapsuleID, origin)
		assert.True(t, actionerr.Is(err, actionerr.NotFound))
	})
}
