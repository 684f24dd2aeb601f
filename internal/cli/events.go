package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/events"
)

const eventUsage = "Usage: event add | event list [YYYY-MM-DD] | event upcoming [n] | event rm <id>"

// Event dispatches the calendar subcommands.
func (a *App) Event(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println(eventUsage)
		return nil
	}

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	switch args[0] {
	case "add":
		return a.eventAdd(ctx)
	case "list", "ls":
		day := a.now().Format("2006-01-02")
		if len(args) > 1 {
			day = args[1]
		}
		items, err := a.events.ListDay(ctx, day)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
		if len(items) == 0 {
			fmt.Printf("No events on %s\n", day)
			return nil
		}
		for _, e := range items {
			printEvent(e)
		}
		return nil
	case "upcoming":
		n := 5
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil || parsed < 1 {
				fmt.Println("Usage: event upcoming [n]")
				return nil
			}
			n = parsed
		}
		items, err := a.events.Upcoming(ctx, a.now(), n)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}
		if len(items) == 0 {
			fmt.Println("No upcoming events")
			return nil
		}
		for _, e := range items {
			printEvent(e)
		}
		return nil
	case "rm":
		if len(args) < 2 {
			fmt.Println("Usage: event rm <id>")
			return nil
		}
		if err := a.events.Delete(ctx, args[1]); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				fmt.Println("No such event")
			} else {
				fmt.Println(err.Error())
			}
			return err
		}
		fmt.Println("Event removed")
		return nil
	default:
		fmt.Println(eventUsage)
		return nil
	}
}

func (a *App) eventAdd(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	day, err := getSimpleText(a.reader, "Day (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	at, err := getSimpleText(a.reader, "Time (HH:MM)", os.Stdout)
	if err != nil {
		return err
	}
	kind, err := getSimpleText(a.reader, "Type (meeting|call|event|deadline, empty for event)", os.Stdout)
	if err != nil {
		return err
	}
	location, err := getSimpleText(a.reader, "Location (optional)", os.Stdout)
	if err != nil {
		return err
	}

	e, err := a.events.Add(ctx, events.Event{
		Title:    title,
		Day:      day,
		Time:     at,
		Type:     events.Type(kind),
		Location: location,
	})
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Added event %s\n", e.ID)
	return nil
}

func printEvent(e events.Event) {
	line := fmt.Sprintf("%s %s  %-36s  %-8s  %s", e.Day, e.Time, e.ID, e.Type, e.Title)
	if e.Location != "" {
		line += "  @" + e.Location
	}
	fmt.Println(line)
}
