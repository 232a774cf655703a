package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"capsulex-blink/blink"
)

type actionBody struct {
	Account string     `json:"account"`
	Data    actionData `json:"data"`
}

type actionData struct {
	Action       string `json:"action"`
	GuessContent string `json:"guess_content,omitempty"`
	IsAnonymous  string `json:"is_anonymous"`
}

// actionResult is what the server answered, plus the request id it logged.
type actionResult struct {
	Status        int             `json:"status"`
	RequestID     string          `json:"request_id"`
	ActionVersion string          `json:"action_version"`
	Body          json.RawMessage `json:"body"`
}

type actionClient struct {
	baseURL    string
	httpClient *http.Client
}

func newActionClient(baseURL string, timeout time.Duration) *actionClient {
	return &actionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *actionClient) post(ctx context.Context, capsuleID string, body actionBody) (*actionResult, error) {
	rawReq, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+blink.GuessPath(capsuleID), bytes.NewReader(rawReq))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(blink.HeaderRequestID, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rawResp, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if !json.Valid(rawResp) {
		return nil, fmt.Errorf("http %d: non-JSON response: %s", resp.StatusCode, string(rawResp))
	}
	return &actionResult{
		Status:        resp.StatusCode,
		RequestID:     resp.Header.Get(blink.HeaderRequestID),
		ActionVersion: resp.Header.Get(blink.HeaderActionVersion),
		Body:          rawResp,
	}, nil
}

// signTransaction signs an unsigned action transaction the way a wallet
// would, for exercising the server against devnet.
func signTransaction(unsignedTx string, key string) (string, error) {
	privateKey, err := solana.PrivateKeyFromBase58(key)
	if err != nil {
		return "", fmt.Errorf("decode key: %w", err)
	}
	txBytes, err := base64.StdEncoding.DecodeString(unsignedTx)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return "", fmt.Errorf("parse transaction: %w", err)
	}
	if !tx.IsSigner(privateKey.PublicKey()) {
		return "", fmt.Errorf("key %s is not a signer of this transaction", privateKey.PublicKey())
	}
	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if privateKey.PublicKey().Equals(pk) {
			return &privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	signed, err := tx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(signed), nil
}
