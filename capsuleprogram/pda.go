package capsuleprogram

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"capsulex-blink/actionerr"
)

// DeriveCapsuleAddress derives the capsule PDA. The reveal date is encoded as
// an 8 byte little-endian signed unix timestamp.
func DeriveCapsuleAddress(programID, creator solana.PublicKey, revealUnix int64) (solana.PublicKey, error) {
	revealBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(revealBytes, uint64(revealUnix))

	return findAddress(programID, "capsule",
		SeedCapsule,
		creator.Bytes(),
		revealBytes,
	)
}

// DeriveGameAddress derives the game PDA of a capsule.
func DeriveGameAddress(programID, capsule solana.PublicKey) (solana.PublicKey, error) {
	return findAddress(programID, "game",
		SeedGame,
		capsule.Bytes(),
	)
}

// DeriveGuessAddress derives the PDA of one guess. The index is a 4 byte
// little-endian unsigned integer.
func DeriveGuessAddress(programID, game, guesser solana.PublicKey, guessIndex uint32) (solana.PublicKey, error) {
	indexBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(indexBytes, guessIndex)

	return findAddress(programID, "guess",
		SeedGuess,
		game.Bytes(),
		guesser.Bytes(),
		indexBytes,
	)
}

// DeriveVaultAddress derives the program-wide vault PDA.
func DeriveVaultAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	return findAddress(programID, "vault", SeedVault)
}

func findAddress(programID solana.PublicKey, name string, seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, actionerr.NewInvalidKey(fmt.Errorf("derive %s address: %w", name, err))
	}
	return addr, nil
}

// ParseRevealDate truncates a reveal time to whole unix seconds.
func ParseRevealDate(t time.Time) int64 {
	return t.Unix()
}

// ParsePublicKey decodes a base58 key coming from upstream data. Bad input is
// InvalidKey; caller-supplied accounts use ParseAccount instead.
func ParsePublicKey(s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, actionerr.NewInvalidKey(fmt.Errorf("decode %q: %w", s, err))
	}
	return pk, nil
}

// DeriveAddressSet resolves every address a submit_guess needs.
func DeriveAddressSet(programID solana.PublicKey, in AddressInputs) (*DerivedAddressSet, error) {
	creator, err := ParsePublicKey(in.CreatorWallet)
	if err != nil {
		return nil, err
	}

	capsule, err := DeriveCapsuleAddress(programID, creator, ParseRevealDate(in.RevealDate))
	if err != nil {
		return nil, err
	}
	game, err := DeriveGameAddress(programID, capsule)
	if err != nil {
		return nil, err
	}
	guess, err := DeriveGuessAddress(programID, game, in.Guesser, in.GuessIndex)
	if err != nil {
		return nil, err
	}
	vault, err := DeriveVaultAddress(programID)
	if err != nil {
		return nil, err
	}

	return &DerivedAddressSet{
		Creator: creator,
		Capsule: capsule,
		Game:    game,
		Guess:   guess,
		Vault:   vault,
	}, nil
}
