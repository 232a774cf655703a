package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capsulex-blink/capsuleprogram"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, capsuleprogram.CapsuleXProgramID, cfg.ProgramID)
	assert.Equal(t, capsuleprogram.DefaultProgramID, cfg.ProgramPublicKey())
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, capsuleprogram.BlockchainIDDevnet, cfg.BlockchainID())
	assert.Equal(t, "finalized", cfg.SolanaCommitment)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SOLANA_NETWORK", "mainnet")
	t.Setenv("CAPSULEX_BACKEND_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, capsuleprogram.BlockchainIDMainnet, cfg.BlockchainID())
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"CAPSULEX_PROGRAM_ID":      "not-a-key",
		"SOLANA_NETWORK":           "localnet",
		"SOLANA_COMMITMENT":        "eventually",
		"CAPSULEX_BACKEND_URL":     "localhost",
		"CAPSULEX_BACKEND_TIMEOUT": "soon",
		"RATE_LIMIT_BURST":         "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
