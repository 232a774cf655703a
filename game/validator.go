package game

import (
	"strings"

	"capsulex-blink/actionerr"
)

// Validate decides whether action may be built against the given snapshot.
// Rules are checked in order and the first failure wins. Only guesses are
// constrained; view and leaderboard are always permitted.
func Validate(capsule *CapsuleRecord, game *GameRecord, action Action) error {
	guess, ok := action.(Guess)
	if !ok {
		return nil
	}
	if capsule == nil || !capsule.IsGamified {
		return actionerr.NewNotGamified()
	}
	if game == nil || !game.IsActive {
		return actionerr.NewGameInactive()
	}
	if game.CurrentGuesses >= game.MaxGuesses {
		return actionerr.NewGameFull()
	}
	if strings.TrimSpace(guess.Content) == "" {
		return actionerr.NewEmptyGuess()
	}
	return nil
}
