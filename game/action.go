package game

import (
	"strings"

	"capsulex-blink/actionerr"
)

// Kind names an action on the wire.
type Kind string

const (
	KindView        Kind = "view"
	KindLeaderboard Kind = "leaderboard"
	KindGuess       Kind = "guess"
)

// Action is the closed set of things a wallet can ask for. The unexported
// method keeps other packages from adding members.
type Action interface {
	Kind() Kind
	Accept(v Visitor) error
	isAction()
}

// Visitor handles every action kind. Adding a kind means adding a method
// here, which breaks every implementation until it is handled.
type Visitor interface {
	View(View) error
	Leaderboard(Leaderboard) error
	Guess(Guess) error
}

// View asks for the game details of a capsule.
type View struct{}

// Leaderboard asks for the participant ranking of a capsule's game.
type Leaderboard struct{}

// Guess submits a guess to a capsule's game.
type Guess struct {
	Content   string
	Anonymous bool
}

func (View) Kind() Kind               { return KindView }
func (a View) Accept(v Visitor) error { return v.View(a) }
func (View) isAction()                {}

func (Leaderboard) Kind() Kind               { return KindLeaderboard }
func (a Leaderboard) Accept(v Visitor) error { return v.Leaderboard(a) }
func (Leaderboard) isAction()                {}

func (Guess) Kind() Kind               { return KindGuess }
func (a Guess) Accept(v Visitor) error { return v.Guess(a) }
func (Guess) isAction()                {}

// ParseAction maps wire parameters onto an Action. Guess content is kept
// verbatim; emptiness is judged by the validator.
func ParseAction(kind, guessContent string, anonymous bool) (Action, error) {
	switch Kind(strings.TrimSpace(kind)) {
	case KindView:
		return View{}, nil
	case KindLeaderboard:
		return Leaderboard{}, nil
	case KindGuess:
		return Guess{Content: guessContent, Anonymous: anonymous}, nil
	default:
		return nil, actionerr.NewInvalidAction(kind)
	}
}
