package capsuleprogram

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"capsulex-blink/actionerr"
	"capsulex-blink/game"
)

// Assembler builds unsigned transaction shells for permitted actions.
type Assembler struct {
	programID   solana.PublicKey
	blockhashes BlockhashSource
}

// NewAssembler creates an assembler for programID. blockhashes is consulted
// once per shell, as the final step.
func NewAssembler(programID solana.PublicKey, blockhashes BlockhashSource) *Assembler {
	return &Assembler{
		programID:   programID,
		blockhashes: blockhashes,
	}
}

// ProgramID returns the program the assembler targets.
func (a *Assembler) ProgramID() solana.PublicKey { return a.programID }

// GuessTransaction builds a submit_guess shell. The guess index is the game's
// current guess count.
func (a *Assembler) GuessTransaction(
	ctx context.Context,
	actor Account,
	capsule *game.CapsuleRecord,
	g *game.GameRecord,
	guess game.Guess,
) (*Shell, *DerivedAddressSet, error) {
	guesser := actor.PublicKey()

	addrs, err := DeriveAddressSet(a.programID, AddressInputs{
		CreatorWallet: capsule.CreatorWallet,
		RevealDate:    capsule.RevealDate,
		Guesser:       guesser,
		GuessIndex:    g.CurrentGuesses,
	})
	if err != nil {
		return nil, nil, err
	}

	ix, err := BuildSubmitGuessInstruction(a.programID, guesser, addrs, SubmitGuessArgs{
		GuessContent: guess.Content,
		IsAnonymous:  guess.Anonymous,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := VerifyInstruction("submit_guess", a.programID, ix); err != nil {
		return nil, nil, actionerr.NewEncodingError(err)
	}

	shell, err := a.finalize(ctx, []solana.Instruction{ix}, guesser)
	if err != nil {
		return nil, nil, err
	}
	return shell, addrs, nil
}

// CarrierTransaction builds the no-op shell that carries a view or
// leaderboard response and its next link.
func (a *Assembler) CarrierTransaction(ctx context.Context, actor Account) (*Shell, error) {
	vault, err := DeriveVaultAddress(a.programID)
	if err != nil {
		return nil, err
	}
	ix := BuildCarrierInstruction(a.programID, actor.PublicKey(), vault)
	return a.finalize(ctx, []solana.Instruction{ix}, actor.PublicKey())
}

// finalize stamps blockhash and fee payer. Nothing may run between this and
// handing the shell back.
func (a *Assembler) finalize(ctx context.Context, instructions []solana.Instruction, payer solana.PublicKey) (*Shell, error) {
	blockhash, err := a.blockhashes.LatestBlockhash(ctx)
	if err != nil {
		return nil, actionerr.NewNetworkUnavailable(err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, actionerr.NewEncodingError(fmt.Errorf("failed to create transaction: %w", err))
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, actionerr.NewEncodingError(fmt.Errorf("failed to serialize transaction: %w", err))
	}
	if len(raw) > MaxTransactionSize {
		return nil, actionerr.NewEncodingError(fmt.Errorf("transaction is %d bytes, limit %d", len(raw), MaxTransactionSize))
	}

	return &Shell{
		Tx:        tx,
		Blockhash: blockhash,
		FeePayer:  payer,
	}, nil
}
