// Package common defines shared constants and sentinel errors used across
// client and server layers of pointfeed. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorUnavailable  = errors.New("service unavailable")
	ErrorForbidden    = errors.New("this isn't your post")
	ErrorValidation   = errors.New("validation error")
	ErrorRateLimited  = errors.New("too many requests")

	// Account errors.
	ErrorInvalidLoginPassword = errors.New("invalid email/phone or password")
	ErrorContactRequired      = errors.New("must supply either email or phone number")
	ErrorCannotFollow         = errors.New("cannot follow user")
	ErrorCannotUnfollow       = errors.New("cannot unfollow user")
	ErrorNoSuchUser           = errors.New("no user with that ID")

	// Media errors.
	ErrorMediaTooLarge    = errors.New("media too large, try resizing")
	ErrorUnknownMediaType = errors.New("unknown media type")

	// Credential taxonomy. These never leave the server; see auth.PublicError.
	ErrMissingCredential = errors.New("missing credential")
	ErrCredentialRevoked = errors.New("credential revoked")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrCredentialExpired = errors.New("credential expired")
)
