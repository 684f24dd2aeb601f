package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/adminpanel/internal/common"
)

// Settings shows the current user's preferences and optionally edits them.
// An empty answer keeps the stored value.
func (a *App) Settings(ctx context.Context) error {
	u := a.ids.Current()
	if u == nil {
		fmt.Println("Not logged in")
		return common.ErrorNoActiveSession
	}

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	current, err := a.settings.Get(ctx, u.ID)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Email notifications:  %s\n", onOff(current.Notifications.Email))
	fmt.Printf("Push notifications:   %s\n", onOff(current.Notifications.Push))
	fmt.Printf("Weekly digest:        %s\n", onOff(current.Notifications.Weekly))
	fmt.Printf("Theme:                %s\n", current.Theme)

	answer, err := getSimpleText(a.reader, "Edit settings? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		return nil
	}

	updated := current
	if err := askToggle(a, "Email notifications (y/n, empty to keep)", &updated.Notifications.Email); err != nil {
		return err
	}
	if err := askToggle(a, "Push notifications (y/n, empty to keep)", &updated.Notifications.Push); err != nil {
		return err
	}
	if err := askToggle(a, "Weekly digest (y/n, empty to keep)", &updated.Notifications.Weekly); err != nil {
		return err
	}
	theme, err := getSimpleText(a.reader, "Theme (light|dark, empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if theme != "" {
		if theme != "light" && theme != "dark" {
			fmt.Println("Theme must be light or dark")
			return common.ErrorValidation
		}
		updated.Theme = theme
	}

	if err := a.settings.Save(ctx, u.ID, updated); err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Println("Settings saved")
	return nil
}

func askToggle(a *App, prompt string, target *bool) error {
	answer, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return err
	}
	switch answer {
	case "y", "Y":
		*target = true
	case "n", "N":
		*target = false
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
