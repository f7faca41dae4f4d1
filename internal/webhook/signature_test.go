package webhook

import (
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)
	return v
}

func TestNewVerifierStripsPrefix(t *testing.T) {
	withPrefix, err := NewVerifier(testSecret)
	require.NoError(t, err)
	bare, err := NewVerifier("MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw")
	require.NoError(t, err)

	body := []byte(`{"type":"user.created"}`)
	require.Equal(t, withPrefix.Sign("msg_1", "1614265330", body), bare.Sign("msg_1", "1614265330", body))
}

func TestNewVerifierRejectsBadSecret(t *testing.T) {
	_, err := NewVerifier("whsec_not!valid!base64!")
	require.Error(t, err)
}

func TestVerifyAt(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	sig := "v1," + v.Sign("msg_1", ts, body)

	require.NoError(t, v.verifyAt("msg_1", ts, sig, body, now))

	// Any matching entry in a multi-signature header is enough.
	require.NoError(t, v.verifyAt("msg_1", ts, "v1,bogus "+sig, body, now))
}

func TestVerifyAtRejectsTamperedBody(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := "v1," + v.Sign("msg_1", ts, []byte(`{"a":1}`))

	err := v.verifyAt("msg_1", ts, sig, []byte(`{"a":2}`), now)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyAtRejectsWrongVersion(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{}`)
	sig := "v2," + v.Sign("msg_1", ts, body)

	err := v.verifyAt("msg_1", ts, sig, body, now)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyAtRejectsStaleTimestamp(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Unix(1700000000, 0)
	body := []byte(`{}`)

	stale := strconv.FormatInt(now.Add(-Tolerance-time.Minute).Unix(), 10)
	err := v.verifyAt("msg_1", stale, "v1,"+v.Sign("msg_1", stale, body), body, now)
	require.ErrorIs(t, err, ErrBadTimestamp)

	future := strconv.FormatInt(now.Add(Tolerance+time.Minute).Unix(), 10)
	err = v.verifyAt("msg_1", future, "v1,"+v.Sign("msg_1", future, body), body, now)
	require.ErrorIs(t, err, ErrBadTimestamp)

	err = v.verifyAt("msg_1", "not-a-number", "v1,whatever", body, now)
	require.ErrorIs(t, err, ErrBadTimestamp)
}

func TestVerifyAtRejectsMissingHeaders(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Unix(1700000000, 0)

	require.ErrorIs(t, v.verifyAt("", "1700000000", "v1,abc", nil, now), ErrMissingHeaders)
	require.ErrorIs(t, v.verifyAt("msg_1", "", "v1,abc", nil, now), ErrMissingHeaders)
	require.ErrorIs(t, v.verifyAt("msg_1", "1700000000", "", nil, now), ErrMissingHeaders)
}

func TestSignIsDeterministicBase64(t *testing.T) {
	v := newTestVerifier(t)
	sig := v.Sign("msg_1", "1700000000", []byte("payload"))
	require.Equal(t, sig, v.Sign("msg_1", "1700000000", []byte("payload")))

	_, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
}
