package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ficomdev/ficomtest/internal/client/client"
	"github.com/ficomdev/ficomtest/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, name, and password and creates a new account.
// On success the session is installed and persisted by the auth service.
// The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Register(ctx, email, string(password), name)
	if err != nil {
		printAuthError("Registration", err)
		return err
	}

	fmt.Printf("Welcome, %s!\n", user.Name)
	return nil
}

// Login prompts for credentials and authenticates against the server.
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		printAuthError("Login", err)
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Email)
	return nil
}

// Logout drops the session and purges locally stored credentials.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// printAuthError distinguishes "server unreachable" from "server rejected"
// so the user knows whether to retry or fix their input.
func printAuthError(op string, err error) {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		fmt.Printf("%s failed: server unavailable, try again later\n", op)
	case errors.Is(err, common.ErrorValidation):
		fmt.Printf("%s rejected: %s\n", op, err.Error())
	default:
		fmt.Printf("%s failed: %s\n", op, err.Error())
	}
}
