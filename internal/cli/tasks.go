package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/tasks"
)

const taskUsage = "Usage: task add | task list [all|completed|pending|starred] [search] | task edit <id> | task done <id> | task star <id> | task rm <id>"

// Task dispatches the task board subcommands.
func (a *App) Task(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println(taskUsage)
		return nil
	}

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	switch args[0] {
	case "add":
		return a.taskAdd(ctx)
	case "list", "ls":
		return a.taskList(ctx, args[1:])
	case "edit":
		if len(args) < 2 {
			fmt.Println("Usage: task edit <id>")
			return nil
		}
		return a.taskEdit(ctx, args[1])
	case "done":
		if len(args) < 2 {
			fmt.Println("Usage: task done <id>")
			return nil
		}
		t, err := a.tasks.Toggle(ctx, args[1])
		if err != nil {
			printTaskErr(err)
			return err
		}
		fmt.Printf("Task %q is now %s\n", t.Title, completionWord(t.Completed))
		return nil
	case "star":
		if len(args) < 2 {
			fmt.Println("Usage: task star <id>")
			return nil
		}
		t, err := a.tasks.Star(ctx, args[1])
		if err != nil {
			printTaskErr(err)
			return err
		}
		if t.Starred {
			fmt.Printf("Task %q starred\n", t.Title)
		} else {
			fmt.Printf("Task %q unstarred\n", t.Title)
		}
		return nil
	case "rm":
		if len(args) < 2 {
			fmt.Println("Usage: task rm <id>")
			return nil
		}
		if err := a.tasks.Delete(ctx, args[1]); err != nil {
			printTaskErr(err)
			return err
		}
		fmt.Println("Task removed")
		return nil
	default:
		fmt.Println(taskUsage)
		return nil
	}
}

func (a *App) taskAdd(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	priority, err := getSimpleText(a.reader, "Priority (high|medium|low, empty for medium)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category (optional)", os.Stdout)
	if err != nil {
		return err
	}

	t, err := a.tasks.Add(ctx, tasks.Task{
		Title:    title,
		Priority: tasks.Priority(priority),
		Category: category,
	})
	if err != nil {
		printTaskErr(err)
		return err
	}

	fmt.Printf("Added task %s\n", t.ID)
	return nil
}

func (a *App) taskEdit(ctx context.Context, id string) error {
	title, err := getSimpleText(a.reader, "New title (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	priority, err := getSimpleText(a.reader, "New priority (high|medium|low, empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "New category (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}

	var patch tasks.Patch
	if title != "" {
		patch.Title = &title
	}
	if priority != "" {
		p := tasks.Priority(priority)
		patch.Priority = &p
	}
	if category != "" {
		patch.Category = &category
	}
	if patch.Title == nil && patch.Priority == nil && patch.Category == nil {
		fmt.Println("Nothing to change")
		return nil
	}

	t, err := a.tasks.Update(ctx, id, patch)
	if err != nil {
		printTaskErr(err)
		return err
	}

	fmt.Printf("Task %q updated\n", t.Title)
	return nil
}

func (a *App) taskList(ctx context.Context, args []string) error {
	f := tasks.Filter{Status: tasks.StatusAll}
	if len(args) > 0 {
		switch tasks.Status(args[0]) {
		case tasks.StatusAll, tasks.StatusCompleted, tasks.StatusPending, tasks.StatusStarred:
			f.Status = tasks.Status(args[0])
			args = args[1:]
		}
	}
	if len(args) > 0 {
		f.Search = strings.Join(args, " ")
	}

	items, err := a.tasks.List(ctx, f)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if len(items) == 0 {
		fmt.Println("No tasks")
		return nil
	}

	for _, t := range items {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		star := " "
		if t.Starred {
			star = "*"
		}
		line := fmt.Sprintf("[%s]%s %-36s  %-6s  %s", mark, star, t.ID, t.Priority, t.Title)
		if t.Category != "" {
			line += "  #" + t.Category
		}
		fmt.Println(line)
	}
	return nil
}

func completionWord(completed bool) string {
	if completed {
		return "completed"
	}
	return "pending"
}

func printTaskErr(err error) {
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Println("No such task")
		return
	}
	fmt.Println(err.Error())
}
