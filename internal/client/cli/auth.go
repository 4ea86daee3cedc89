package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pointfeed/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readContact asks for an email and, if none is given, a phone number.
func (a *App) readContact() (email, phone string, err error) {
	email, err = getSimpleText(a.reader, "Enter email (leave empty to use a phone number)", a.out)
	if err != nil || email != "" {
		return email, "", err
	}
	phone, err = getSimpleText(a.reader, "Enter phone number", a.out)
	return "", phone, err
}

// Signup creates an account and logs in with it.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}

	email, phone, err := a.readContact()
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Choose a password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.client.Signup(ctx, name, email, phone, password)
	if err != nil {
		return err
	}

	a.userName = displayName(user.Name, email, phone)
	fmt.Fprintf(a.out, "Welcome, %s! Your user id is %s\n", a.userName, user.ID)
	return nil
}

// Login authenticates by email or phone and password.
func (a *App) Login(ctx context.Context) error {
	email, phone, err := a.readContact()
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.client.Login(ctx, email, phone, password)
	if err != nil {
		return err
	}

	a.userName = displayName(user.Name, email, phone)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout revokes the current session and stops any live watch.
func (a *App) Logout(ctx context.Context) error {
	_ = a.Unwatch(ctx)
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// RequestReset asks the server to send a reset token.
func (a *App) RequestReset(ctx context.Context) error {
	email, phone, err := a.readContact()
	if err != nil {
		return err
	}

	msg, err := a.client.RequestPasswordReset(ctx, email, phone)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, msg)
	return nil
}

// ResetPassword redeems a reset token for a new password.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.client.ResetPassword(ctx, token, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password changed, please log in")
	return nil
}

func displayName(name, email, phone string) string {
	switch {
	case name != "":
		return name
	case email != "":
		return email
	default:
		return phone
	}
}
