package cli

import (
	"context"
	"fmt"
)

// Stats prints the dashboard summary figures.
func (a *App) Stats(ctx context.Context) error {
	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	s, err := a.stats.Summary(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Users:           %d (%d admin)\n", s.TotalUsers, s.AdminUsers)
	fmt.Printf("Tasks:           %d (%d completed, %d pending)\n", s.TotalTasks, s.CompletedTasks, s.PendingTasks)
	fmt.Printf("Upcoming events: %d\n", s.UpcomingEvents)
	return nil
}
