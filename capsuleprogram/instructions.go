package capsuleprogram

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"capsulex-blink/actionerr"
)

// getAnchorDiscriminator returns the 8 byte Anchor method selector.
func getAnchorDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte("global:" + name))
	var disc [8]byte
	copy(disc[:], hash[:8])
	return disc
}

var SubmitGuessDisc = getAnchorDiscriminator("submit_guess")

// SubmitGuessArgs - borsh layout of submit_guess arguments
type SubmitGuessArgs struct {
	GuessContent string
	IsAnonymous  bool
}

// EncodeSubmitGuessData serializes discriminator + args.
func EncodeSubmitGuessData(args SubmitGuessArgs) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(SubmitGuessDisc[:])

	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteString(args.GuessContent); err != nil {
		return nil, fmt.Errorf("encode guess_content: %w", err)
	}
	if err := enc.WriteBool(args.IsAnonymous); err != nil {
		return nil, fmt.Errorf("encode is_anonymous: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildSubmitGuessInstruction builds submit_guess. Account order follows the
// pinned interface in idl.go.
func BuildSubmitGuessInstruction(
	programID solana.PublicKey,
	guesser solana.PublicKey,
	addrs *DerivedAddressSet,
	args SubmitGuessArgs,
) (solana.Instruction, error) {
	data, err := EncodeSubmitGuessData(args)
	if err != nil {
		return nil, actionerr.NewEncodingError(err)
	}

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(guesser).WRITE().SIGNER(),
			solana.Meta(addrs.Game).WRITE(),
			solana.Meta(addrs.Guess).WRITE(),
			solana.Meta(addrs.Vault).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	), nil
}

// BuildCarrierInstruction builds the empty-data instruction carried by
// view and leaderboard transactions. It touches no program state.
func BuildCarrierInstruction(programID, user, vault solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(user).WRITE().SIGNER(),
			solana.Meta(vault).WRITE(),
		},
		[]byte{},
	)
}
