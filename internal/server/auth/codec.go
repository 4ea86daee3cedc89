// Package auth issues and verifies session credentials and resolves a
// presented credential to the calling principal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedCredential means the string could not be decoded at all.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrSignatureInvalid means the signature does not cover the claimed fields.
	ErrSignatureInvalid = errors.New("credential signature invalid")
)

// Credential is the decoded content of a signed token.
type Credential struct {
	Token     string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// claims carries millisecond timestamps next to the registered second-resolution
// ones; the millisecond fields are authoritative.
type claims struct {
	jwt.RegisteredClaims
	IssuedAtMs  int64 `json:"iat_ms"`
	ExpiresAtMs int64 `json:"exp_ms"`
}

// Codec signs credentials with HS256 under a secret fixed at construction.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a codec bound to secret.
func NewCodec(secret []byte) *Codec {
	s := make([]byte, len(secret))
	copy(s, secret)
	return &Codec{secret: s, now: time.Now}
}

// Issue encodes subjectID with issuedAt = now and expiresAt = issuedAt + ttl.
// It only fails on internal signing faults.
func (c *Codec) Issue(subjectID string, ttl time.Duration) (Credential, error) {
	iat := c.now().Truncate(time.Millisecond)
	exp := iat.Add(ttl)

	// jti keeps two sessions for one subject in the same millisecond distinct
	// in the revocation store.
	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return Credential{}, fmt.Errorf("credential id: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		IssuedAtMs:  iat.UnixMilli(),
		ExpiresAtMs: exp.UnixMilli(),
	})

	s, err := token.SignedString(c.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("sign credential: %w", err)
	}

	return Credential{Token: s, SubjectID: subjectID, IssuedAt: iat, ExpiresAt: exp}, nil
}

// Verify checks the signature and decodes the fields. Expiry is not checked
// here; that is the guard's job.
func (c *Codec) Verify(token string) (Credential, error) {
	cl := &claims{}
	_, err := jwt.ParseWithClaims(token, cl, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Credential{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
		return Credential{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	if cl.Subject == "" || cl.ExpiresAtMs == 0 {
		return Credential{}, ErrMalformedCredential
	}

	return Credential{
		Token:     token,
		SubjectID: cl.Subject,
		IssuedAt:  time.UnixMilli(cl.IssuedAtMs),
		ExpiresAt: time.UnixMilli(cl.ExpiresAtMs),
	}, nil
}
