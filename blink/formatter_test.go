package blink

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capsulex-blink/actionerr"
)

func TestEnvelope_Body(t *testing.T) {
	env := &Envelope{Kind: EnvelopeTransaction, Status: 200, Transaction: "AQID", Message: "hi", NextLink: "/api/game-details/x"}
	raw, err := json.Marshal(env.Body())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"transaction","transaction":"AQID","message":"hi","links":{"next":{"type":"post","href":"/api/game-details/x"}}}`, string(raw))

	env.NextLink = ""
	raw, err = json.Marshal(env.Body())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"transaction","transaction":"AQID","message":"hi"}`, string(raw))
}

func TestEnvelope_NotSerializedDirectly(t *testing.T) {
	typ := reflect.TypeOf(Envelope{})
	for i := 0; i < typ.NumField(); i++ {
		assert.Empty(t, typ.Field(i).Tag.Get("json"), typ.Field(i).Name)
	}
}

func TestFormatter_ErrorEnvelopeHidesCause(t *testing.T) {
	f := testFormatter()

	env := f.ErrorEnvelope(errors.New("dial tcp 10.0.0.5:8899: connection refused"))
	assert.Equal(t, EnvelopeError, env.Kind)
	assert.Equal(t, actionerr.Unknown, env.ErrorKind)
	assert.Equal(t, 500, env.Status)

	raw, err := json.Marshal(env.Body())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "10.0.0.5")
	assert.JSONEq(t, `{"message":"Internal server error","error":"Unknown"}`, string(raw))
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "0h 0m left", formatRemaining(0))
	assert.Equal(t, "1h 30m left", formatRemaining(90*time.Minute+59*time.Second))
	assert.Equal(t, "49h 5m left", formatRemaining(49*time.Hour+5*time.Minute))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "7b0c3f52", shortID(testCapsuleID))
}

func TestFormatter_TrimsBaseURL(t *testing.T) {
	resp := testFormatter().GuessAction("cap")
	assert.Contains(t, resp.Description, "Visit: https://blinks.example.com/game/cap")
	assert.Equal(t, "https://cdn.example.com/icon.png", resp.Icon)
}
