package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/isaidso/auth/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email, and password and creates an account. The
// account starts unverified; the server emails the verification link.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	msg, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

// Login prompts for credentials, authenticates, and stores the issued pair.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	sess, err := a.client.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			fmt.Println(apiErr.Message)
			return nil
		}
		return err
	}

	if err := a.session.SetPair(sess.Pair()); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", sess.User.Email)
	return nil
}

// Logout revokes the access token on the server and clears the stored pair.
// The local pair is cleared even if the server call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	if clearErr := a.session.Clear(); clearErr != nil {
		return clearErr
	}
	if err != nil {
		fmt.Println("Logged out locally; server call failed:", err)
		return nil
	}
	fmt.Println("Logged out")
	return nil
}

// Whoami prints the authenticated account.
func (a *App) Whoami(ctx context.Context) error {
	user, err := a.client.User(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Email:   %s\n", user.Email)
	fmt.Printf("Name:    %s\n", user.Name)
	if user.Username != nil {
		fmt.Printf("Username: %s\n", *user.Username)
	}
	if user.Country != nil {
		fmt.Printf("Country: %s\n", *user.Country)
	}
	fmt.Printf("Method:  %s\n", user.LoginMethod)
	return nil
}

// Refresh forces a rotation of the stored pair.
func (a *App) Refresh(ctx context.Context) error {
	pair := a.session.Current()
	if pair == nil {
		fmt.Println("Not logged in")
		return nil
	}

	fresh, err := a.client.Renew(ctx, pair.RefreshToken)
	if err != nil {
		_ = a.session.Clear()
		return err
	}
	if err := a.session.SetPair(fresh); err != nil {
		return err
	}
	fmt.Println("Session refreshed")
	return nil
}
