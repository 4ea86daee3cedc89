// Package services contains server-side business logic. UserService covers
// accounts, sessions and the follow graph; PostService covers posts and the
// live post stream.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/dbx"
	"github.com/dmitrijs2005/pointfeed/internal/logging"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"github.com/dmitrijs2005/pointfeed/internal/server/config"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
	"github.com/dmitrijs2005/pointfeed/internal/server/notify"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pointfeed/internal/server/revocation"
	"golang.org/x/crypto/bcrypt"
)

// ResetRequestedMessage is returned by RequestPasswordReset whether or not
// the address belongs to an account.
const ResetRequestedMessage = "If such a user exists, we'll get a reset token to them."

// AuthPayload is returned by signup and login.
type AuthPayload struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// UserDeps are the collaborators UserService needs besides storage.
type UserDeps struct {
	Codec       *auth.Codec
	Guard       *auth.Guard
	Revocations revocation.Store
	Email       notify.Sender
	SMS         notify.Sender
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	guard       *auth.Guard
	revocations revocation.Store
	email       notify.Sender
	sms         notify.Sender
	sessionTTL  time.Duration
	resetTTL    time.Duration
	resetLimit  *addressLimiter
	bcryptCost  int
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, deps UserDeps, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		codec:       deps.Codec,
		guard:       deps.Guard,
		revocations: deps.Revocations,
		email:       deps.Email,
		sms:         deps.SMS,
		sessionTTL:  cfg.SessionTokenValidityDuration,
		resetTTL:    cfg.ResetTokenValidityDuration,
		resetLimit:  newAddressLimiter(cfg.ResetRequestsPerHour, time.Hour),
		bcryptCost:  bcrypt.DefaultCost,
		log:         log.With("module", "users"),
	}
}

// Signup creates an account and opens a session for it. At least one of
// email and phone is required; the phone is stored as digits only.
func (s *UserService) Signup(ctx context.Context, name, email, phone, password string) (*AuthPayload, error) {
	email = strings.TrimSpace(email)
	phone = common.NormalizePhone(phone)
	if email == "" && phone == "" {
		return nil, common.ErrorContactRequired
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var payload *AuthPayload
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Name:         strings.TrimSpace(name),
			Email:        email,
			PhoneNumber:  phone,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		payload, err = s.openSession(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user signed up", "user_id", payload.User.ID)
	return payload, nil
}

// Login checks the password of the account addressed by email, or by phone
// when email is empty. Unknown accounts and wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, email, phone, password string) (*AuthPayload, error) {
	user, err := s.lookup(ctx, email, phone)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorContactRequired) {
			return nil, common.ErrorInvalidLoginPassword
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorInvalidLoginPassword
	}

	if err := s.repomanager.Users(s.db).TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	}

	return s.openSession(ctx, s.db, user)
}

// Logout revokes the credential the caller presented. Other sessions of the
// same user stay valid.
func (s *UserService) Logout(ctx context.Context, p *auth.Principal) error {
	if err := s.revocations.Revoke(ctx, p.Token, p.ExpiresAt); err != nil {
		return fmt.Errorf("unable to log user out: %w", err)
	}
	s.log.Info(ctx, "user logged out", "user_id", p.UserID)
	return nil
}

// smsAddress turns a stored phone number (digits with country code, as
// NormalizePhone leaves it) into the E.164 form SMS gateways expect.
func smsAddress(phone string) string {
	return "+" + phone
}

// RequestPasswordReset mails or texts a short-lived credential to the
// account's address. The answer never reveals whether the account exists.
func (s *UserService) RequestPasswordReset(ctx context.Context, email, phone string) (string, error) {
	email = strings.TrimSpace(email)
	phone = common.NormalizePhone(phone)
	if email == "" && phone == "" {
		return "", common.ErrorContactRequired
	}

	address := "email:" + email
	if email == "" {
		address = "phone:" + phone
	}
	if !s.resetLimit.Allow(address) {
		return "", common.ErrorRateLimited
	}

	user, err := s.lookup(ctx, email, phone)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ResetRequestedMessage, nil
		}
		return "", err
	}

	cred, err := s.codec.Issue(user.ID, s.resetTTL)
	if err != nil {
		return "", common.ErrorInternal
	}

	if email != "" {
		err = s.email.Send(ctx, notify.Message{
			To:      user.Email,
			Subject: "Your pointfeed password reset",
			Body: "Hi there! It looks like you've requested a password reset.\r\n" +
				"If you did, your token is: " + cred.Token + "\r\n" +
				"Use it with the reset command to choose a new password.",
		})
	} else {
		err = s.sms.Send(ctx, notify.Message{
			To:   smsAddress(user.PhoneNumber),
			Body: "Your password token is " + cred.Token,
		})
	}
	if err != nil {
		s.log.Error(ctx, "failed to deliver reset token", "user_id", user.ID, "error", err)
		return "", common.ErrorUnavailable
	}

	return ResetRequestedMessage + " If you entered an email and you're not seeing it, it could be in your spam folder.", nil
}

// ResetPassword redeems a reset credential. The credential is revoked after
// the new password is stored, so two redemptions racing each other can both
// succeed.
func (s *UserService) ResetPassword(ctx context.Context, resetToken, newPassword string) (*models.User, error) {
	p, err := s.guard.Resolve(ctx, resetToken)
	if err != nil {
		return nil, auth.PublicError(err)
	}
	if newPassword == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users := s.repomanager.Users(s.db)
	if err := users.UpdatePassword(ctx, p.UserID, hash); err != nil {
		return nil, fmt.Errorf("error updating password: %w", err)
	}

	if err := s.revocations.Revoke(ctx, p.Token, p.ExpiresAt); err != nil {
		return nil, fmt.Errorf("error revoking reset token: %w", err)
	}

	s.log.Info(ctx, "password reset", "user_id", p.UserID)
	return users.GetByID(ctx, p.UserID)
}

// Follow adds the edge caller -> userID and returns the followed user.
func (s *UserService) Follow(ctx context.Context, p *auth.Principal, userID string) (*models.User, error) {
	target, err := s.target(ctx, userID, common.ErrorCannotFollow)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Follows(s.db).Follow(ctx, p.UserID, target.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorCannotFollow
		}
		return nil, fmt.Errorf("error following user: %w", err)
	}
	return target, nil
}

// Unfollow removes the edge caller -> userID and returns the unfollowed user.
func (s *UserService) Unfollow(ctx context.Context, p *auth.Principal, userID string) (*models.User, error) {
	target, err := s.target(ctx, userID, common.ErrorCannotUnfollow)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Follows(s.db).Unfollow(ctx, p.UserID, target.ID); err != nil {
		return nil, fmt.Errorf("error unfollowing user: %w", err)
	}
	return target, nil
}

func (s *UserService) target(ctx context.Context, userID string, notFound error) (*models.User, error) {
	users := s.repomanager.Users(s.db)
	ok, err := users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound
	}
	u, err := users.GetByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, notFound
	}
	return u, err
}

// lookup prefers email over phone.
func (s *UserService) lookup(ctx context.Context, email, phone string) (*models.User, error) {
	users := s.repomanager.Users(s.db)
	email = strings.TrimSpace(email)
	switch {
	case email != "":
		return users.GetByEmail(ctx, email)
	case common.NormalizePhone(phone) != "":
		return users.GetByPhone(ctx, common.NormalizePhone(phone))
	default:
		return nil, common.ErrorContactRequired
	}
}

// openSession issues a session credential and records it.
func (s *UserService) openSession(ctx context.Context, db dbx.DBTX, user *models.User) (*AuthPayload, error) {
	cred, err := s.codec.Issue(user.ID, s.sessionTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	err = s.repomanager.Tokens(db).Create(ctx, &models.IssuedToken{
		Token:     cred.Token,
		UserID:    user.ID,
		IssuedAt:  cred.IssuedAt,
		ExpiresAt: cred.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("error recording token: %w", err)
	}
	return &AuthPayload{Token: cred.Token, ExpiresAt: cred.ExpiresAt, User: user}, nil
}
