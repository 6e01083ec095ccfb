package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/arthub/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// Register prompts the user for a login and password and creates a new
// account. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter login (email)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.auths.Register(ctx, login, string(password)); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Success! You can now log in.")
	return nil
}

// Login prompts for credentials and authenticates against the user
// store. On success the session token and user id are kept in memory for
// the rest of the session.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter login (email)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.auths.Login(ctx, login, string(password))
	if err != nil {
		printlnFn(fmt.Sprintf("Login unsuccessful: %s", err.Error()))
		return err
	}

	userID, err := a.auths.UserID(token)
	if err != nil {
		printlnFn(fmt.Sprintf("Login unsuccessful: %s", err.Error()))
		return err
	}

	a.token = token
	a.userID = userID
	a.userName = login
	a.sharing = nil
	printlnFn("Login successful")
	return nil
}

// Logout drops the in-memory session.
func (a *App) Logout(ctx context.Context) error {
	a.token = ""
	a.userID = ""
	a.userName = ""
	a.sharing = nil
	printlnFn("Logged out")
	return nil
}
