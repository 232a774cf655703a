package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"

	"capsulex-blink/actionerr"
	"capsulex-blink/blink"
	"capsulex-blink/capsuleprogram"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "capsulectl",
		Usage:   "Inspect and exercise the CapsuleX action server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "program-id",
				Value:   capsuleprogram.CapsuleXProgramID,
				Usage:   "CapsuleX program id",
				EnvVars: []string{"CAPSULEX_PROGRAM_ID"},
			},
		},
		Commands: []*cli.Command{
			deriveCmd(),
			manifestCmd(),
			interfaceCmd(),
			actionCmd(),
			signCmd(),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func deriveCmd() *cli.Command {
	return &cli.Command{
		Name:  "derive",
		Usage: "Derive the capsule, game, guess and vault addresses of a guess",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "creator", Aliases: []string{"c"}, Required: true, Usage: "Capsule creator wallet"},
			&cli.StringFlag{Name: "reveal", Aliases: []string{"r"}, Required: true, Usage: "Reveal date, RFC3339 or unix seconds"},
			&cli.StringFlag{Name: "guesser", Aliases: []string{"g"}, Required: true, Usage: "Guesser wallet"},
			&cli.UintFlag{Name: "index", Aliases: []string{"i"}, Usage: "Guess index (the game's current guess count)"},
		},
		Action: func(c *cli.Context) error {
			programID, err := programIDFlag(c)
			if err != nil {
				return outputError(err)
			}
			reveal, err := parseReveal(c.String("reveal"))
			if err != nil {
				return outputError(err)
			}
			guesser, err := capsuleprogram.ParseAccount(c.String("guesser"))
			if err != nil {
				return outputError(err)
			}
			index := c.Uint("index")
			if uint64(index) > uint64(^uint32(0)) {
				return outputError(fmt.Errorf("index %d overflows u32", index))
			}

			addrs, err := capsuleprogram.DeriveAddressSet(programID, capsuleprogram.AddressInputs{
				CreatorWallet: c.String("creator"),
				RevealDate:    reveal,
				Guesser:       guesser.PublicKey(),
				GuessIndex:    uint32(index),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, addrs)
		},
	}
}

func manifestCmd() *cli.Command {
	return &cli.Command{
		Name:  "manifest",
		Usage: "Print the actions.json discovery document",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, blink.NewFormatter(blink.FormatterConfig{}).Manifest())
		},
	}
}

func interfaceCmd() *cli.Command {
	return &cli.Command{
		Name:  "interface",
		Usage: "Print the pinned submit_guess interface and verify the encoder against it",
		Action: func(c *cli.Context) error {
			programID, err := programIDFlag(c)
			if err != nil {
				return outputError(err)
			}
			ix, err := capsuleprogram.LookupInstruction("submit_guess")
			if err != nil {
				return outputError(err)
			}
			if err := capsuleprogram.SelfCheck(programID); err != nil {
				return outputError(fmt.Errorf("encoder drifted from interface: %w", err))
			}
			return outputJSON(c.App.Writer, ix)
		},
	}
}

func actionCmd() *cli.Command {
	return &cli.Command{
		Name:      "action",
		Usage:     "POST an action to a running server and print the response",
		ArgsUsage: "<capsule_id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Aliases: []string{"s"}, Value: "http://localhost:8080", Usage: "Action server base URL", EnvVars: []string{"CAPSULEX_SERVER_URL"}},
			&cli.StringFlag{Name: "account", Aliases: []string{"a"}, Required: true, Usage: "Wallet that would sign"},
			&cli.StringFlag{Name: "action", Value: "view", Usage: "view|leaderboard|guess"},
			&cli.StringFlag{Name: "guess", Usage: "Guess content"},
			&cli.BoolFlag{Name: "anonymous", Usage: "Submit the guess anonymously"},
			&cli.DurationFlag{Name: "timeout", Value: 15 * time.Second, Usage: "Request timeout"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(fmt.Errorf("exactly one capsule_id is required"))
			}
			client := newActionClient(c.String("server"), c.Duration("timeout"))
			resp, err := client.post(c.Context, c.Args().First(), actionBody{
				Account: c.String("account"),
				Data: actionData{
					Action:       c.String("action"),
					GuessContent: c.String("guess"),
					IsAnonymous:  strconv.FormatBool(c.Bool("anonymous")),
				},
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, resp)
		},
	}
}

func signCmd() *cli.Command {
	return &cli.Command{
		Name:      "sign",
		Usage:     "Sign a base64 action transaction with a local key (devnet testing only)",
		ArgsUsage: "<base64 transaction>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Required: true, Usage: "Base58 private key", EnvVars: []string{"CAPSULEX_SIGNER_KEY"}},
		},
		Action: func(c *cli.Context) error {
			tx := strings.TrimSpace(c.Args().First())
			if tx == "" {
				raw, err := io.ReadAll(c.App.Reader)
				if err != nil {
					return outputError(err)
				}
				tx = strings.TrimSpace(string(raw))
			}
			signed, err := signTransaction(tx, c.String("key"))
			if err != nil {
				return outputError(err)
			}
			_, err = fmt.Fprintln(c.App.Writer, signed)
			return err
		},
	}
}

func programIDFlag(c *cli.Context) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(c.String("program-id"))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id: %w", err)
	}
	return pk, nil
}

// parseReveal accepts RFC3339 or unix seconds.
func parseReveal(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reveal date %q: want RFC3339 or unix seconds", s)
	}
	return t, nil
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats err for the CLI.
func outputError(err error) error {
	var ae *actionerr.Error
	if errors.As(err, &ae) {
		return cli.Exit(fmt.Sprintf("[%s] %s", ae.Kind, ae.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
