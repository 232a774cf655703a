package capsuleprogram

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"capsulex-blink/actionerr"
)

// AddressInputs - everything a DerivedAddressSet is computed from
type AddressInputs struct {
	CreatorWallet string
	RevealDate    time.Time
	Guesser       solana.PublicKey
	GuessIndex    uint32
}

// DerivedAddressSet - addresses used by one submit_guess, never persisted
type DerivedAddressSet struct {
	Creator solana.PublicKey `json:"creator"`
	Capsule solana.PublicKey `json:"capsule"`
	Game    solana.PublicKey `json:"game"`
	Guess   solana.PublicKey `json:"guess"`
	Vault   solana.PublicKey `json:"vault"`
}

// Account is the only thing the service learns about the caller: a public
// key. It cannot sign, so a signer can never be smuggled into the core.
type Account interface {
	PublicKey() solana.PublicKey
}

// PublicAccount - a wallet identified by its public key only
type PublicAccount struct {
	key solana.PublicKey
}

func (a PublicAccount) PublicKey() solana.PublicKey { return a.key }

func (a PublicAccount) String() string { return a.key.String() }

// ParseAccount decodes the caller-supplied account field.
func ParseAccount(s string) (PublicAccount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PublicAccount{}, actionerr.NewInvalidAccount(fmt.Errorf("account is empty"))
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return PublicAccount{}, actionerr.NewInvalidAccount(err)
	}
	return PublicAccount{key: pk}, nil
}

// Shell - an unsigned transaction with exactly one fee payer, built per
// request and never reused
type Shell struct {
	Tx        *solana.Transaction
	Blockhash solana.Hash
	FeePayer  solana.PublicKey
}

// Base64 serializes the shell with empty signature slots.
func (s *Shell) Base64() (string, error) {
	txBytes, err := s.Tx.MarshalBinary()
	if err != nil {
		return "", actionerr.NewEncodingError(fmt.Errorf("failed to serialize: %w", err))
	}
	return base64.StdEncoding.EncodeToString(txBytes), nil
}
