package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"capsulex-blink/capsuleprogram"
)

// Config is the action server configuration, read from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	SolanaRPCURL     string `env:"SOLANA_RPC_URL" envDefault:"https://api.devnet.solana.com"`
	SolanaNetwork    string `env:"SOLANA_NETWORK" envDefault:"devnet"`
	SolanaCommitment string `env:"SOLANA_COMMITMENT" envDefault:"finalized"`
	ProgramID        string `env:"CAPSULEX_PROGRAM_ID" envDefault:"J1r7tHjxEuCcSYVrikUKxzyeeccuC3QbyHjUbY8Pw7uH"`

	BackendURL     string        `env:"CAPSULEX_BACKEND_URL" envDefault:"http://localhost:3001"`
	BackendTimeout time.Duration `env:"CAPSULEX_BACKEND_TIMEOUT" envDefault:"10s"`

	BlinkBaseURL string `env:"CAPSULEX_BLINK_BASE_URL" envDefault:"https://capsulex-blink-production.up.railway.app"`
	IconURL      string `env:"CAPSULEX_ICON_URL" envDefault:"https://drive.usercontent.google.com/download?id=1Vk98CgAWpSJ0tac36vx4W4yo9EPxCYhn"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
	TrustProxy     bool    `env:"TRUST_PROXY" envDefault:"false"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("invalid CAPSULEX_PROGRAM_ID %q: %w", c.ProgramID, err)
	}
	if _, ok := capsuleprogram.BlockchainID(c.SolanaNetwork); !ok {
		return fmt.Errorf("invalid SOLANA_NETWORK %q: want devnet, testnet or mainnet", c.SolanaNetwork)
	}
	switch rpc.CommitmentType(c.SolanaCommitment) {
	case rpc.CommitmentFinalized, rpc.CommitmentConfirmed, rpc.CommitmentProcessed:
	default:
		return fmt.Errorf("invalid SOLANA_COMMITMENT %q", c.SolanaCommitment)
	}
	for name, raw := range map[string]string{
		"SOLANA_RPC_URL":          c.SolanaRPCURL,
		"CAPSULEX_BACKEND_URL":    c.BackendURL,
		"CAPSULEX_BLINK_BASE_URL": c.BlinkBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

// ProgramPublicKey returns the decoded program id. Call after Validate.
func (c *Config) ProgramPublicKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProgramID)
}

// BlockchainID returns the X-Blockchain-Ids value of the configured network.
func (c *Config) BlockchainID() string {
	id, _ := capsuleprogram.BlockchainID(c.SolanaNetwork)
	return id
}
