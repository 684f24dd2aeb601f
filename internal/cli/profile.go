package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/identity"
)

// Profile interactively edits the current user's name, email, and avatar.
// An empty answer keeps the stored value.
func (a *App) Profile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "New name (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	avatar, err := getSimpleText(a.reader, "Avatar URL (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}

	var upd identity.ProfileUpdate
	if name != "" {
		upd.Name = &name
	}
	if email != "" {
		upd.Email = &email
	}
	if avatar != "" {
		upd.Avatar = &avatar
	}
	if upd.Name == nil && upd.Email == nil && upd.Avatar == nil {
		fmt.Println("Nothing to change")
		return nil
	}

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	u, err := a.ids.UpdateProfile(ctx, upd)
	if err != nil {
		if errors.Is(err, common.ErrorEmailAlreadyExists) {
			fmt.Println("This email belongs to another user")
			return err
		}
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Profile updated: %s <%s>\n", u.Name, u.Email)
	return nil
}

// Passwd changes the current user's password after verifying the old one.
func (a *App) Passwd(ctx context.Context) error {
	current, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	updated, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(updated)

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.ids.ChangePassword(ctx, string(current), string(updated)); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			fmt.Println("Current password does not match")
			return err
		}
		fmt.Println(err.Error())
		return err
	}

	fmt.Println("Password changed")
	return nil
}
