package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and passphrase and creates a new
// identity via the AuthService.
//
// On success it prints "Success!" and returns nil. The passphrase byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	passphrase, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	if err := a.authService.Register(ctx, userName, passphrase); err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials and runs one identification round. On
// success the session token is kept in memory for the token command.
//
// The passphrase is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	passphrase, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	token, err := a.authService.Login(ctx, userName, passphrase)
	if err != nil {
		return err
	}

	a.userName = userName
	a.token = token
	fmt.Printf("Logged in as %s\n", userName)
	return nil
}
