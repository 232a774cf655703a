package capsuleprogram

import (
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitGuessDisc_MatchesAnchorSighash(t *testing.T) {
	assert.Equal(t, bin.SighashInstruction("submitGuess"), SubmitGuessDisc[:])
	assert.Equal(t, []byte{61, 124, 32, 227, 64, 198, 252, 3}, SubmitGuessDisc[:])

	iface, err := LookupInstruction("submit_guess")
	require.NoError(t, err)
	assert.Equal(t, SubmitGuessDisc[:], iface.Discriminator)
}

func TestEncodeSubmitGuessData_BorshLayout(t *testing.T) {
	data, err := EncodeSubmitGuessData(SubmitGuessArgs{GuessContent: "42", IsAnonymous: true})
	require.NoError(t, err)

	want := append([]byte{}, SubmitGuessDisc[:]...)
	want = append(want, 2, 0, 0, 0, '4', '2', 1)
	assert.Equal(t, want, data)

	var args SubmitGuessArgs
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&args))
	assert.Equal(t, SubmitGuessArgs{GuessContent: "42", IsAnonymous: true}, args)
}

func TestBuildSubmitGuessInstruction_MatchesInterface(t *testing.T) {
	addrs, err := DeriveAddressSet(DefaultProgramID, AddressInputs{
		CreatorWallet: testCreator.String(),
		RevealDate:    testReveal,
		Guesser:       testGuesser,
		GuessIndex:    0,
	})
	require.NoError(t, err)

	ix, err := BuildSubmitGuessInstruction(DefaultProgramID, testGuesser, addrs, SubmitGuessArgs{GuessContent: "a cat"})
	require.NoError(t, err)
	require.NoError(t, VerifyInstruction("submit_guess", DefaultProgramID, ix))

	accounts := ix.Accounts()
	require.Len(t, accounts, 5)
	assert.Equal(t, testGuesser, accounts[0].PublicKey)
	assert.Equal(t, addrs.Game, accounts[1].PublicKey)
	assert.Equal(t, addrs.Guess, accounts[2].PublicKey)
	assert.Equal(t, addrs.Vault, accounts[3].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[4].PublicKey)
}

func TestVerifyInstruction_RejectsDrift(t *testing.T) {
	addrs := &DerivedAddressSet{
		Game:  solana.NewWallet().PublicKey(),
		Guess: solana.NewWallet().PublicKey(),
		Vault: solana.NewWallet().PublicKey(),
	}
	data, err := EncodeSubmitGuessData(SubmitGuessArgs{GuessContent: "x"})
	require.NoError(t, err)

	good := solana.AccountMetaSlice{
		solana.Meta(testGuesser).WRITE().SIGNER(),
		solana.Meta(addrs.Game).WRITE(),
		solana.Meta(addrs.Guess).WRITE(),
		solana.Meta(addrs.Vault).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}
	require.NoError(t, VerifyInstruction("submit_guess", DefaultProgramID, solana.NewInstruction(DefaultProgramID, good, data)))

	cases := map[string]solana.Instruction{
		"wrong program": solana.NewInstruction(solana.SystemProgramID, good, data),
		"swapped accounts": solana.NewInstruction(DefaultProgramID, solana.AccountMetaSlice{
			solana.Meta(testGuesser).WRITE().SIGNER(),
			solana.Meta(addrs.Guess).WRITE(),
			solana.Meta(addrs.Game),
			solana.Meta(addrs.Vault).WRITE(),
			solana.Meta(solana.SystemProgramID),
		}, data),
		"guesser not signer": solana.NewInstruction(DefaultProgramID, solana.AccountMetaSlice{
			solana.Meta(testGuesser).WRITE(),
			solana.Meta(addrs.Game).WRITE(),
			solana.Meta(addrs.Guess).WRITE(),
			solana.Meta(addrs.Vault).WRITE(),
			solana.Meta(solana.SystemProgramID),
		}, data),
		"wrong system program": solana.NewInstruction(DefaultProgramID, solana.AccountMetaSlice{
			solana.Meta(testGuesser).WRITE().SIGNER(),
			solana.Meta(addrs.Game).WRITE(),
			solana.Meta(addrs.Guess).WRITE(),
			solana.Meta(addrs.Vault).WRITE(),
			solana.Meta(addrs.Vault),
		}, data),
		"missing account":   solana.NewInstruction(DefaultProgramID, good[:4], data),
		"bad discriminator": solana.NewInstruction(DefaultProgramID, good, append([]byte{0, 0, 0, 0, 0, 0, 0, 0}, data[8:]...)),
		"missing bool":      solana.NewInstruction(DefaultProgramID, good, data[:len(data)-1]),
		"trailing bytes":    solana.NewInstruction(DefaultProgramID, good, append(append([]byte{}, data...), 9)),
	}
	for name, ix := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, VerifyInstruction("submit_guess", DefaultProgramID, ix))
		})
	}

	assert.Error(t, VerifyInstruction("reveal_capsule", DefaultProgramID, solana.NewInstruction(DefaultProgramID, good, data)))
}

func TestBuildCarrierInstruction(t *testing.T) {
	vault, err := DeriveVaultAddress(DefaultProgramID)
	require.NoError(t, err)

	ix := BuildCarrierInstruction(DefaultProgramID, testGuesser, vault)
	assert.Equal(t, DefaultProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, vault, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestSelfCheck(t *testing.T) {
	require.NoError(t, SelfCheck(DefaultProgramID))
	require.NoError(t, SelfCheck(solana.NewWallet().PublicKey()))
}
