package blink

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"capsulex-blink/actionerr"
	"capsulex-blink/capsuleprogram"
	"capsulex-blink/game"
)

// EnvelopeKind tells a successful transaction envelope from an error one.
type EnvelopeKind string

const (
	EnvelopeTransaction EnvelopeKind = "transaction"
	EnvelopeError       EnvelopeKind = "error"
)

// Envelope is the outcome of one action POST. Only Body goes on the wire.
type Envelope struct {
	Kind         EnvelopeKind
	Status       int
	Title        string
	Description  string
	Transaction  string
	Message      string
	NextLink     string
	ErrorMessage string
	ErrorKind    actionerr.Kind
}

// Body returns the wire object for the envelope.
func (e *Envelope) Body() any {
	if e.Kind == EnvelopeError {
		return ErrorResponse{Message: e.ErrorMessage, Error: string(e.ErrorKind)}
	}
	resp := ActionPostResponse{
		Type:        LinkTypeTransaction,
		Transaction: e.Transaction,
		Message:     e.Message,
	}
	if e.NextLink != "" {
		resp.Links = &PostResponseLinks{Next: NextActionLink{Type: LinkTypePost, Href: e.NextLink}}
	}
	return resp
}

// FormatterConfig configures branding and links.
type FormatterConfig struct {
	BlinkBaseURL string
	IconURL      string
	BlockchainID string
}

// Formatter turns shells, errors and backend records into protocol objects.
type Formatter struct {
	cfg FormatterConfig
}

func NewFormatter(cfg FormatterConfig) *Formatter {
	cfg.BlinkBaseURL = strings.TrimRight(cfg.BlinkBaseURL, "/")
	return &Formatter{cfg: cfg}
}

// BlockchainID is the value sent in X-Blockchain-Ids.
func (f *Formatter) BlockchainID() string { return f.cfg.BlockchainID }

// TransactionEnvelope wraps a finalized shell. next, when set, chains the
// wallet to a follow-up action.
func (f *Formatter) TransactionEnvelope(shell *capsuleprogram.Shell, message, next string) (*Envelope, error) {
	tx, err := shell.Base64()
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Kind:        EnvelopeTransaction,
		Status:      http.StatusOK,
		Title:       "CapsuleX Time Capsule",
		Description: message,
		Transaction: tx,
		Message:     message,
		NextLink:    next,
	}, nil
}

// ErrorEnvelope maps err to a caller-safe envelope. Causes are never echoed.
func (f *Formatter) ErrorEnvelope(err error) *Envelope {
	ae := actionerr.As(err)
	return &Envelope{
		Kind:         EnvelopeError,
		Status:       ae.Status,
		Title:        "CapsuleX Time Capsule",
		ErrorMessage: ae.Message,
		ErrorKind:    ae.Kind,
	}
}

// Manifest is the actions.json discovery document.
func (f *Formatter) Manifest() ActionsJSON {
	return ActionsJSON{Rules: []ActionRule{
		{PathPattern: "/api/guess/**", APIPath: "/api/guess/**"},
		{PathPattern: "/api/game-details/**", APIPath: "/api/game-details/**"},
		{PathPattern: "/api/game-leaderboard/**", APIPath: "/api/game-leaderboard/**"},
		{PathPattern: "/api/leaderboard/**", APIPath: "/api/leaderboard/**"},
	}}
}

// GuessAction is the entry blink of a capsule.
func (f *Formatter) GuessAction(capsuleID string) ActionGetResponse {
	return ActionGetResponse{
		Type:  "action",
		Icon:  f.cfg.IconURL,
		Title: "CapsuleX Time Capsule",
		Description: fmt.Sprintf("🎯 Time Capsule Game for ID: %s\n\n"+
			"🚀 CapsuleX - Decentralized Time Capsules on Solana\n"+
			"⏰ Submit your guess and compete with others!\n"+
			"🏆 Win prizes when the capsule is revealed\n\n"+
			"💡 Can't use Blinks? Visit: %s/game/%s", capsuleID, f.cfg.BlinkBaseURL, capsuleID),
		Label: "View Capsule",
		Links: &ActionLinks{Actions: []LinkedAction{{
			Type:  LinkTypeTransaction,
			Label: "🎮 Join Game",
			Href:  GuessPath(capsuleID),
			Parameters: []ActionParameter{
				{
					Name:     "action",
					Label:    "What would you like to do?",
					Type:     ParamTypeSelect,
					Required: true,
					Options: []ParameterOption{
						{Label: "View Game Details", Value: string(game.KindView)},
						{Label: "Check Leaderboard", Value: string(game.KindLeaderboard)},
						{Label: "Submit Guess", Value: string(game.KindGuess)},
					},
				},
				{
					Name:  "guess_content",
					Label: "Your guess (only required for Submit Guess)",
					Type:  ParamTypeText,
				},
				anonymousParam("Anonymous guess? (only for Submit Guess)"),
			},
		}}},
	}
}

// GameDetails is the target of the view chain.
func (f *Formatter) GameDetails(capsuleID string, capsule *game.CapsuleRecord, g *game.GameRecord, now time.Time) ActionGetResponse {
	revealed := capsule.IsRevealed()
	canJoin := game.CanStillJoin(capsule, g, now)

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 Game Details for %s...\n\n", shortID(capsuleID))
	fmt.Fprintf(&b, "📊 Participants: %d/%d\n", g.CurrentGuesses, g.MaxGuesses)
	fmt.Fprintf(&b, "🏆 Winners Found: %d/%d\n", g.WinnersFound, g.MaxWinners)
	if revealed {
		b.WriteString("⏰ Revealed!\n")
	} else {
		fmt.Fprintf(&b, "⏰ %s\n", formatRemaining(capsule.TimeUntilReveal(now)))
	}
	switch {
	case canJoin:
		b.WriteString("\n✅ You can still join this game!")
	case revealed:
		b.WriteString("\n🎉 Game completed!")
	default:
		b.WriteString("\n⏰ Game is ending soon!")
	}

	resp := ActionGetResponse{
		Type:        "action",
		Icon:        f.cfg.IconURL,
		Title:       "🎯 Game Details",
		Description: b.String(),
		Label:       "Game Details",
	}
	if canJoin {
		resp.Label = "Join Game"
		resp.Links = &ActionLinks{Actions: []LinkedAction{submitGuessLink(capsuleID)}}
	}
	return resp
}

// GameLeaderboard is the target of the leaderboard chain.
func (f *Formatter) GameLeaderboard(capsuleID string, capsule *game.CapsuleRecord, entries []game.LeaderboardEntry, now time.Time) ActionGetResponse {
	var top []string
	for i, e := range entries {
		if i == 5 {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, e.DisplayName)
		if e.IsWinner {
			line += " 🏆"
		}
		if e.PointsEarned > 5 {
			line += fmt.Sprintf(" (+%dpts)", e.PointsEarned)
		}
		top = append(top, line)
	}

	desc := fmt.Sprintf("🏆 Game Leaderboard\n\n👥 Total Participants: %d\n\n", len(entries))
	if len(top) > 0 {
		desc += "Top Players:\n" + strings.Join(top, "\n")
	} else {
		desc += "No participants yet"
	}

	resp := ActionGetResponse{
		Type:        "action",
		Icon:        f.cfg.IconURL,
		Title:       "🏆 Game Leaderboard",
		Description: desc,
		Label:       "Leaderboard",
	}
	if game.CanStillJoin(capsule, nil, now) {
		resp.Label = "Join Game"
		resp.Links = &ActionLinks{Actions: []LinkedAction{submitGuessLink(capsuleID)}}
	}
	return resp
}

// GlobalLeaderboard shows the top five of the global ranking.
func (f *Formatter) GlobalLeaderboard(entries []game.GlobalLeaderboardEntry, origin string) ActionGetResponse {
	var top []string
	for i, e := range entries {
		if i == 5 {
			break
		}
		top = append(top, fmt.Sprintf("%d. %s - %d pts", e.Rank, e.DisplayName, e.TotalPoints))
	}

	return ActionGetResponse{
		Type:  "action",
		Icon:  f.cfg.IconURL,
		Title: "🏆 CapsuleX Global Leaderboard",
		Description: "Top Players:\n" + strings.Join(top, "\n") +
			"\n\nCompete in time capsule guessing games to earn points and climb the rankings!",
		Label: "View Leaderboard",
		Links: &ActionLinks{Actions: []LinkedAction{
			{Type: LinkTypeExternalLink, Label: "🎮 Join Active Game", Href: f.cfg.BlinkBaseURL + "/game"},
			userStatsLink(origin),
		}},
	}
}

// UserStatsForm asks for a wallet address.
func (f *Formatter) UserStatsForm(origin string) ActionGetResponse {
	return ActionGetResponse{
		Type:        "action",
		Icon:        f.cfg.IconURL,
		Title:       "📊 Your CapsuleX Stats",
		Description: "Enter your wallet address to view your game statistics, points, and ranking in the CapsuleX leaderboard.",
		Label:       "Get My Stats",
		Links:       &ActionLinks{Actions: []LinkedAction{userStatsLink(origin)}},
	}
}

// UserStats renders the totals of one wallet.
func (f *Formatter) UserStats(stats *game.UserStats, origin string) ActionGetResponse {
	desc := fmt.Sprintf("🏆 Points: %d\n🎮 Games Played: %d\n🎯 Games Won: %d\n🏅 Badges: %d",
		stats.TotalPoints, stats.GamesParticipated, stats.GamesWon, stats.BadgeCount)
	if stats.GlobalRank != nil && *stats.GlobalRank > 0 {
		desc += fmt.Sprintf("\n🌟 Global Rank: #%d", *stats.GlobalRank)
	}

	return ActionGetResponse{
		Type:        "action",
		Icon:        f.cfg.IconURL,
		Title:       fmt.Sprintf("📊 %s Stats", stats.DisplayName),
		Description: desc,
		Label:       "View Global Leaderboard",
		Links: &ActionLinks{Actions: []LinkedAction{
			{Type: LinkTypeExternalLink, Label: "🏆 Global Leaderboard", Href: origin + "/api/leaderboard/global"},
			{Type: LinkTypeExternalLink, Label: "🎮 Join New Game", Href: f.cfg.BlinkBaseURL + "/game"},
		}},
	}
}

// UserStart is shown for wallets without game activity.
func (f *Formatter) UserStart(origin string) ActionGetResponse {
	return ActionGetResponse{
		Type:        "action",
		Icon:        f.cfg.IconURL,
		Title:       "🎮 Start Your CapsuleX Journey",
		Description: "No game activity found for this wallet. Join a game to start earning points and competing in the leaderboard!",
		Label:       "Join First Game",
		Links: &ActionLinks{Actions: []LinkedAction{
			{Type: LinkTypeExternalLink, Label: "🎮 Browse Active Games", Href: f.cfg.BlinkBaseURL + "/game"},
			{Type: LinkTypeExternalLink, Label: "🏆 View Global Leaderboard", Href: origin + "/api/leaderboard/global"},
		}},
	}
}

// GameLeaderboardSummary is the standalone leaderboard blink of one game.
func (f *Formatter) GameLeaderboardSummary(capsuleID string, capsule *game.CapsuleRecord, entries []game.LeaderboardEntry, now time.Time, origin string) ActionGetResponse {
	var top []string
	for i, e := range entries {
		if i == 3 {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, e.DisplayName)
		if e.IsWinner {
			line += " 🏆"
		}
		top = append(top, line)
	}

	var desc string
	if capsule.IsRevealed() {
		desc = fmt.Sprintf("🎉 Game Complete!\n\n👥 %d participants\n", len(entries))
		if len(top) > 0 {
			desc += "\nTop Players:\n" + strings.Join(top, "\n")
		}
	} else {
		desc = fmt.Sprintf("🎮 Active Game\n⏰ %s\n👥 %d participants\n",
			formatRemaining(capsule.TimeUntilReveal(now)), len(entries))
		if len(top) > 0 {
			desc += "\nCurrent Leaders:\n" + strings.Join(top, "\n")
		}
	}

	global := LinkedAction{Type: LinkTypeExternalLink, Label: "🏆 Global Leaderboard", Href: origin + "/api/leaderboard/global"}
	resp := ActionGetResponse{
		Type:        "action",
		Icon:        f.cfg.IconURL,
		Title:       fmt.Sprintf("🎯 Game %s... Leaderboard", shortID(capsuleID)),
		Description: desc,
	}
	if game.CanStillJoin(capsule, nil, now) {
		resp.Label = "Join Game"
		resp.Links = &ActionLinks{Actions: []LinkedAction{
			{Type: LinkTypeExternalLink, Label: "🎮 Submit Guess", Href: f.cfg.BlinkBaseURL + "/game/" + capsuleID},
			global,
		}}
	} else {
		resp.Label = "View Global Leaderboard"
		resp.Links = &ActionLinks{Actions: []LinkedAction{
			global,
			{Type: LinkTypeExternalLink, Label: "🎮 Find New Game", Href: f.cfg.BlinkBaseURL + "/game"},
		}}
	}
	return resp
}

// GuessPath is the POST endpoint of a capsule's actions.
func GuessPath(capsuleID string) string { return "/api/guess/" + capsuleID }

// GameDetailsPath is where a view action chains to.
func GameDetailsPath(capsuleID string) string { return "/api/game-details/" + capsuleID }

// GameLeaderboardPath is where a leaderboard action chains to.
func GameLeaderboardPath(capsuleID string) string { return "/api/game-leaderboard/" + capsuleID }

func submitGuessLink(capsuleID string) LinkedAction {
	return LinkedAction{
		Type:  LinkTypeTransaction,
		Label: "🎮 Submit Guess",
		Href:  GuessPath(capsuleID),
		Parameters: []ActionParameter{
			{
				Name:     "action",
				Label:    "What would you like to do?",
				Type:     ParamTypeSelect,
				Required: true,
				Options:  []ParameterOption{{Label: "Submit Guess", Value: string(game.KindGuess)}},
			},
			{
				Name:     "guess_content",
				Label:    "Your guess",
				Type:     ParamTypeText,
				Required: true,
			},
			anonymousParam("Anonymous guess?"),
		},
	}
}

func userStatsLink(origin string) LinkedAction {
	return LinkedAction{
		Type:  LinkTypeTransaction,
		Label: "📊 View My Stats",
		Href:  origin + "/api/leaderboard/user",
		Parameters: []ActionParameter{
			{Name: "wallet", Label: "Your wallet address", Required: true},
		},
	}
}

func anonymousParam(label string) ActionParameter {
	return ActionParameter{
		Name:    "is_anonymous",
		Label:   label,
		Type:    ParamTypeCheckbox,
		Options: []ParameterOption{{Label: "Make guess anonymous", Value: "true"}},
	}
}

func formatRemaining(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm left", secs/3600, (secs%3600)/60)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
