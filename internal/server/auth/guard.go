package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/logging"
)

// RevocationChecker answers whether a credential was explicitly invalidated.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// PrincipalChecker answers whether a principal still exists.
type PrincipalChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Principal is a resolved caller.
type Principal struct {
	UserID    string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Guard is the single authorization surface. Every protected request and
// every subscription handshake goes through Resolve.
type Guard struct {
	codec      *Codec
	revoked    RevocationChecker
	principals PrincipalChecker
	log        logging.Logger
	now        func() time.Time
}

func NewGuard(codec *Codec, revoked RevocationChecker, principals PrincipalChecker, log logging.Logger) *Guard {
	return &Guard{
		codec:      codec,
		revoked:    revoked,
		principals: principals,
		log:        log.With("module", "guard"),
		now:        time.Now,
	}
}

// Resolve maps a presented credential to its principal. Checks run in order
// and stop at the first failure: presence, revocation, signature, expiry,
// principal existence. Failures wrap one of the common.Err*Credential
// sentinels; lookup faults are returned as plain infrastructure errors.
func (g *Guard) Resolve(ctx context.Context, token string) (*Principal, error) {
	p, err := g.resolve(ctx, token)
	reason := Reason(err)
	resolveTotal.WithLabelValues(reason).Inc()
	switch reason {
	case "ok":
	case "error":
		g.log.Error(ctx, "credential lookup failed", "error", err)
	default:
		g.log.Warn(ctx, "credential rejected", "reason", reason, "error", err)
	}
	return p, err
}

func (g *Guard) resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, common.ErrMissingCredential
	}

	revoked, err := g.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, common.ErrCredentialRevoked
	}

	cred, err := g.codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidCredential, err)
	}

	if !g.now().Before(cred.ExpiresAt) {
		return nil, common.ErrCredentialExpired
	}

	exists, err := g.principals.Exists(ctx, cred.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("principal lookup: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: unknown subject", common.ErrInvalidCredential)
	}

	return &Principal{
		UserID:    cred.SubjectID,
		Token:     token,
		IssuedAt:  cred.IssuedAt,
		ExpiresAt: cred.ExpiresAt,
	}, nil
}

// Reason names the internal outcome of Resolve for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrMissingCredential):
		return "missing"
	case errors.Is(err, common.ErrCredentialRevoked):
		return "revoked"
	case errors.Is(err, common.ErrInvalidCredential):
		return "invalid"
	case errors.Is(err, common.ErrCredentialExpired):
		return "expired"
	default:
		return "error"
	}
}

// PublicError collapses guard failures into the one error callers may see.
// Anything outside the credential taxonomy is an infrastructure fault and
// stays distinguishable from a rejection.
func PublicError(err error) error {
	switch Reason(err) {
	case "ok":
		return nil
	case "error":
		return common.ErrorUnavailable
	default:
		return common.ErrorUnauthorized
	}
}

// TokenFromHeader extracts the credential from "Bearer <token>". A lone
// token without a scheme is accepted as is. Anything else, such as another
// scheme or trailing fields, yields "" and is rejected as a missing
// credential.
func TokenFromHeader(v string) string {
	fields := strings.Fields(v)
	switch {
	case len(fields) == 1 && !strings.EqualFold(fields[0], strings.TrimSpace(common.BearerPrefix)):
		return fields[0]
	case len(fields) == 2 && strings.EqualFold(fields[0], strings.TrimSpace(common.BearerPrefix)):
		return fields[1]
	default:
		return ""
	}
}
