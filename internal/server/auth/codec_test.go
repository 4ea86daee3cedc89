package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCodec(secret string, at time.Time) *Codec {
	c := NewCodec([]byte(secret))
	c.now = func() time.Time { return at }
	return c
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1_700_000_000_123)
	c := fixedCodec("super-secret", at)

	cred, err := c.Issue("user-123", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, at, cred.IssuedAt)
	assert.Equal(t, cred.IssuedAt.Add(time.Hour), cred.ExpiresAt)

	got, err := c.Verify(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got.SubjectID)
	assert.True(t, got.IssuedAt.Equal(cred.IssuedAt))
	assert.True(t, got.ExpiresAt.Equal(cred.ExpiresAt))
}

func TestVerify_DoesNotCheckExpiry(t *testing.T) {
	t.Parallel()

	c := fixedCodec("k", time.Now().Add(-48*time.Hour))
	cred, err := c.Issue("u1", time.Hour)
	require.NoError(t, err)

	_, err = NewCodec([]byte("k")).Verify(cred.Token)
	require.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	cred, err := NewCodec([]byte("right-secret")).Issue("u2", time.Hour)
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong-secret")).Verify(cred.Token)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"not.a.jwt", "garbage", "a.b"} {
		_, err := NewCodec([]byte("k")).Verify(s)
		assert.ErrorIs(t, err, ErrMalformedCredential, s)
	}
}

func TestVerify_RejectsTamperedFields(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("k"))
	cred, err := c.Issue("u1", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(cred.Token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	tampers := map[string]func(string) string{
		"subject": func(p string) string { return strings.Replace(p, `"sub":"u1"`, `"sub":"u9"`, 1) },
		"expiry": func(p string) string {
			return strings.Replace(p, `"exp_ms":`, `"exp_ms":9`, 1)
		},
		"issued": func(p string) string {
			return strings.Replace(p, `"iat_ms":`, `"iat_ms":1`, 1)
		},
	}
	for name, tamper := range tampers {
		changed := tamper(string(payload))
		require.NotEqual(t, string(payload), changed, name)
		forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(changed)) + "." + parts[2]

		_, err := c.Verify(forged)
		assert.ErrorIs(t, err, ErrSignatureInvalid, name)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		ExpiresAtMs:      time.Now().Add(time.Hour).UnixMilli(),
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewCodec([]byte("k")).Verify(s)
	assert.Error(t, err)
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("k"))
	cred, err := c.Issue("", time.Hour)
	require.NoError(t, err)

	_, err = c.Verify(cred.Token)
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestNewCodec_CopiesSecret(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	c := NewCodec(secret)
	cred, err := c.Issue("u1", time.Hour)
	require.NoError(t, err)

	secret[0] = 'x'
	_, err = c.Verify(cred.Token)
	assert.NoError(t, err)
}

func TestIssue_SameInstantTokensDiffer(t *testing.T) {
	t.Parallel()

	c := fixedCodec("super-secret", time.UnixMilli(1_700_000_000_000))

	a, err := c.Issue("user-1", time.Hour)
	require.NoError(t, err)
	b, err := c.Issue("user-1", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}
