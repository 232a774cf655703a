package actionerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the short classification string echoed to callers.
type Kind string

const (
	InvalidRequest      Kind = "InvalidRequest"      // 400
	InvalidAccount      Kind = "InvalidAccount"      // 400
	InvalidAction       Kind = "InvalidAction"       // 400
	EmptyGuess          Kind = "EmptyGuess"          // 400
	NotFound            Kind = "NotFound"            // 404
	InvalidKey          Kind = "InvalidKey"          // 500
	NotGamified         Kind = "NotGamified"         // 500
	GameInactive        Kind = "GameInactive"        // 500
	GameFull            Kind = "GameFull"            // 500
	UpstreamUnavailable Kind = "UpstreamUnavailable" // 500
	NetworkUnavailable  Kind = "NetworkUnavailable"  // 500
	EncodingError       Kind = "EncodingError"       // 500
	Unknown             Kind = "Unknown"             // 500
)

// Error is a classified failure. Message is safe to show to a wallet;
// Err carries the internal cause and is only ever logged.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, status int, msg string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: msg, Err: cause}
}

// NewInvalidRequest reports a body that is not valid JSON or is too large.
func NewInvalidRequest(cause error) *Error {
	return newError(InvalidRequest, http.StatusBadRequest, "Invalid request body", cause)
}

// NewInvalidAccount reports an account field that is not a base58 public key.
func NewInvalidAccount(cause error) *Error {
	return newError(InvalidAccount, http.StatusBadRequest, "Invalid account provided", cause)
}

// NewInvalidAction reports a missing or unsupported data.action value.
func NewInvalidAction(action string) *Error {
	if action == "" {
		return newError(InvalidAction, http.StatusBadRequest, "Action is required", nil)
	}
	return newError(InvalidAction, http.StatusBadRequest, fmt.Sprintf("Unknown action: %s", action), nil)
}

func NewEmptyGuess() *Error {
	return newError(EmptyGuess, http.StatusBadRequest, "Guess content is required for guess submission", nil)
}

// NewNotFound reports a capsule or game the backend does not know.
func NewNotFound(what string, cause error) *Error {
	return newError(NotFound, http.StatusNotFound, fmt.Sprintf("%s not found", what), cause)
}

// NewInvalidKey reports key material that cannot seed an address derivation.
func NewInvalidKey(cause error) *Error {
	return newError(InvalidKey, http.StatusInternalServerError, "Invalid key material for address derivation", cause)
}

func NewNotGamified() *Error {
	return newError(NotGamified, http.StatusInternalServerError, "This capsule is not gamified", nil)
}

func NewGameInactive() *Error {
	return newError(GameInactive, http.StatusInternalServerError, "This game is no longer active", nil)
}

func NewGameFull() *Error {
	return newError(GameFull, http.StatusInternalServerError, "Maximum number of guesses reached for this game", nil)
}

func NewUpstreamUnavailable(cause error) *Error {
	return newError(UpstreamUnavailable, http.StatusInternalServerError, "Game data is temporarily unavailable", cause)
}

func NewNetworkUnavailable(cause error) *Error {
	return newError(NetworkUnavailable, http.StatusInternalServerError, "Solana network is temporarily unavailable", cause)
}

func NewEncodingError(cause error) *Error {
	return newError(EncodingError, http.StatusInternalServerError, "Failed to build transaction", cause)
}

// NewUnknown wraps an unexpected error; its detail never reaches the caller.
func NewUnknown(cause error) *Error {
	return newError(Unknown, http.StatusInternalServerError, "Internal server error", cause)
}

// As returns err as an *Error, classifying anything unrecognised as Unknown.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var aErr *Error
	if errors.As(err, &aErr) {
		return aErr
	}
	return NewUnknown(err)
}

// KindOf returns the classification of err, or Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return As(err).Status
}

// Is checks if err is classified as kind.
func Is(err error, kind Kind) bool {
	var aErr *Error
	if errors.As(err, &aErr) {
		return aErr.Kind == kind
	}
	return false
}
