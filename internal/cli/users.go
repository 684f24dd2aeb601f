package cli

import (
	"context"
	"fmt"
)

// Users lists all registered users in registration order.
func (a *App) Users(ctx context.Context) error {
	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	users, err := a.ids.List(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users yet")
		return nil
	}

	for _, u := range users {
		fmt.Printf("%-26s  %-5s  %-30s  %s\n", u.ID, u.Role, u.Email, u.Name)
	}
	return nil
}
