package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/adminpanel/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email, and password and creates a new account.
// The very first account created in an empty store becomes the admin. A
// successful registration also logs the user in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	u, err := a.ids.Register(ctx, name, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorEmailAlreadyExists) {
			fmt.Println("This email is already registered")
			return err
		}
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Welcome, %s! You are logged in as %s.\n", u.Name, u.Role)
	return nil
}

// Login prompts for credentials and authenticates. Unknown email and wrong
// password produce the same message.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	u, err := a.ids.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			fmt.Println("Invalid email or password")
			return err
		}
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", u.Email, u.Role)
	return nil
}

// Logout drops the active session.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.ids.Logout(ctx); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Logged out")
	return nil
}

// WhoAmI prints the current session's user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.ids.Current()
	if u == nil {
		fmt.Println("Not logged in")
		return common.ErrorNoActiveSession
	}
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	fmt.Printf("  id:         %s\n", u.ID)
	fmt.Printf("  role:       %s\n", u.Role)
	if u.Avatar != "" {
		fmt.Printf("  avatar:     %s\n", u.Avatar)
	}
	fmt.Printf("  registered: %s\n", u.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}
