// Package tokens declares the server-side repository contract for issued
// credentials and their revocation flag.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/server/models"
)

// Repository records issued credentials and which of them were revoked.
type Repository interface {
	// Create records a freshly issued credential. userID may be empty for
	// credentials not tied to a stored principal.
	Create(ctx context.Context, token *models.IssuedToken) error

	// Revoke marks token revoked, inserting a row if the credential was never
	// recorded. Revoking twice is not an error.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error

	// IsRevoked reports the revoked flag. Unknown tokens are not revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// DeleteExpired drops rows whose credential expired before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
