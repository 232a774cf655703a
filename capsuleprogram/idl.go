package capsuleprogram

import (
	"bytes"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"
)

// IDL is the pinned interface of the instructions this service builds,
// in Anchor IDL form.
const IDL = `{
  "address": "J1r7tHjxEuCcSYVrikUKxzyeeccuC3QbyHjUbY8Pw7uH",
  "metadata": {
    "name": "capsulex",
    "version": "0.1.0",
    "spec": "0.1.0"
  },
  "instructions": [
    {
      "name": "submit_guess",
      "discriminator": [61, 124, 32, 227, 64, 198, 252, 3],
      "accounts": [
        {"name": "guesser", "writable": true, "signer": true},
        {"name": "game", "writable": true},
        {"name": "guess", "writable": true},
        {"name": "vault", "writable": true},
        {"name": "system_program", "address": "11111111111111111111111111111111"}
      ],
      "args": [
        {"name": "guess_content", "type": "string"},
        {"name": "is_anonymous", "type": "bool"}
      ]
    }
  ]
}`

// IDLAccount - one account slot of an instruction interface
type IDLAccount struct {
	Name     string `json:"name"`
	Writable bool   `json:"writable,omitempty"`
	Signer   bool   `json:"signer,omitempty"`
	Address  string `json:"address,omitempty"`
}

// IDLArg - one argument of an instruction interface
type IDLArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// IDLInstruction - the pinned shape of one instruction
type IDLInstruction struct {
	Name          string       `json:"name"`
	Discriminator []byte       `json:"discriminator"`
	Accounts      []IDLAccount `json:"accounts"`
	Args          []IDLArg     `json:"args"`
}

// LookupInstruction reads one instruction out of IDL.
func LookupInstruction(name string) (*IDLInstruction, error) {
	res := gjson.Get(IDL, fmt.Sprintf(`instructions.#(name==%q)`, name))
	if !res.Exists() {
		return nil, fmt.Errorf("instruction %s not in interface", name)
	}

	out := &IDLInstruction{Name: res.Get("name").String()}
	for _, b := range res.Get("discriminator").Array() {
		out.Discriminator = append(out.Discriminator, byte(b.Uint()))
	}
	for _, a := range res.Get("accounts").Array() {
		out.Accounts = append(out.Accounts, IDLAccount{
			Name:     a.Get("name").String(),
			Writable: a.Get("writable").Bool(),
			Signer:   a.Get("signer").Bool(),
			Address:  a.Get("address").String(),
		})
	}
	for _, a := range res.Get("args").Array() {
		out.Args = append(out.Args, IDLArg{
			Name: a.Get("name").String(),
			Type: a.Get("type").String(),
		})
	}
	return out, nil
}

// VerifyInstruction checks a built instruction against the pinned interface:
// program, account order and flags, fixed addresses, selector and args.
func VerifyInstruction(name string, programID solana.PublicKey, ix solana.Instruction) error {
	iface, err := LookupInstruction(name)
	if err != nil {
		return err
	}
	if !ix.ProgramID().Equals(programID) {
		return fmt.Errorf("%s: program %s, want %s", name, ix.ProgramID(), programID)
	}

	accounts := ix.Accounts()
	if len(accounts) != len(iface.Accounts) {
		return fmt.Errorf("%s: %d accounts, want %d", name, len(accounts), len(iface.Accounts))
	}
	for i, want := range iface.Accounts {
		got := accounts[i]
		if got.IsSigner != want.Signer || got.IsWritable != want.Writable {
			return fmt.Errorf("%s: account %d (%s) signer=%t writable=%t, want signer=%t writable=%t",
				name, i, want.Name, got.IsSigner, got.IsWritable, want.Signer, want.Writable)
		}
		if want.Address != "" && got.PublicKey.String() != want.Address {
			return fmt.Errorf("%s: account %d (%s) is %s, want %s", name, i, want.Name, got.PublicKey, want.Address)
		}
	}

	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%s: read data: %w", name, err)
	}
	if !bytes.HasPrefix(data, iface.Discriminator) {
		return fmt.Errorf("%s: discriminator %v, want %v", name, data[:min(8, len(data))], iface.Discriminator)
	}
	return verifyArgs(name, iface.Args, data[len(iface.Discriminator):])
}

func verifyArgs(name string, args []IDLArg, data []byte) error {
	dec := bin.NewBorshDecoder(data)
	for _, arg := range args {
		var err error
		switch arg.Type {
		case "string":
			_, err = dec.ReadString()
		case "bool":
			_, err = dec.ReadBool()
		case "u32":
			_, err = dec.ReadUint32(bin.LE)
		case "i64":
			_, err = dec.ReadInt64(bin.LE)
		default:
			return fmt.Errorf("%s: arg %s has unsupported type %s", name, arg.Name, arg.Type)
		}
		if err != nil {
			return fmt.Errorf("%s: decode arg %s: %w", name, arg.Name, err)
		}
	}
	if dec.HasRemaining() {
		return fmt.Errorf("%s: %d trailing bytes after args", name, dec.Remaining())
	}
	return nil
}

// SelfCheck builds a sample submit_guess for a throwaway wallet and verifies
// it, so a drifted encoder is caught at startup rather than on-chain.
func SelfCheck(programID solana.PublicKey) error {
	guesser := solana.NewWallet().PublicKey()
	addrs, err := DeriveAddressSet(programID, AddressInputs{
		CreatorWallet: guesser.String(),
		RevealDate:    time.Unix(0, 0),
		Guesser:       guesser,
	})
	if err != nil {
		return err
	}
	ix, err := BuildSubmitGuessInstruction(programID, guesser, addrs, SubmitGuessArgs{GuessContent: "self-check"})
	if err != nil {
		return err
	}
	return VerifyInstruction("submit_guess", programID, ix)
}
