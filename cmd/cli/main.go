package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/aryan0dhankhar/tasktracker/internal/client"
	"github.com/aryan0dhankhar/tasktracker/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 {
		printUsage(out)
		return errors.New("missing command")
	}

	store := tokenStore{path: tokenFile()}
	api := client.New(getAPIURL(), client.WithToken(store.load()))

	switch args[0] {
	case "auth":
		return handleAuth(ctx, api, store, args[1:], out)
	case "task":
		return handleTask(ctx, api, args[1:], out)
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func handleAuth(ctx context.Context, api *client.Client, store tokenStore, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: tasktracker auth <register|login|logout|who>")
	}

	switch args[0] {
	case "register":
		fs := flag.NewFlagSet("register", flag.ContinueOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "user email")
		password := fs.String("password", "", "password (at least 6 characters)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := promptPassword(out, password); err != nil {
			return err
		}
		resp, err := api.Register(ctx, *username, *email, *password)
		if err != nil {
			return err
		}
		if err := store.save(resp.Token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(out, "✓ Registered and logged in as %s\n", resp.User.Username)
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		email := fs.String("email", "", "user email")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := promptPassword(out, password); err != nil {
			return err
		}
		resp, err := api.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		if err := store.save(resp.Token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(out, "✓ Logged in as %s\n", resp.User.Username)
		return nil

	case "logout":
		if err := store.clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "✓ Logged out")
		return nil

	case "who":
		if api.Token() == "" {
			fmt.Fprintln(out, "Not logged in")
			return nil
		}
		me, err := api.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ %s <%s> (%s)\n", me.Username, me.Email, me.ID)
		return nil
	}
	return fmt.Errorf("unknown auth command: %s", args[0])
}

func handleTask(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: tasktracker task <list|add|edit|done|undo|delete|clear>")
	}
	if api.Token() == "" {
		return errors.New("not logged in: run `tasktracker auth login` first")
	}

	board := client.NewBoard(api)
	if err := board.Refresh(ctx); err != nil {
		return err
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		filter := fs.String("filter", "all", "all, active or completed")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		f, err := domain.ParseTaskFilter(*filter)
		if err != nil {
			return err
		}
		board.Filter = f

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		priority := fs.String("priority", "", "low, medium or high")
		status := fs.String("status", "", "todo, in-progress or done")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		text := strings.Join(fs.Args(), " ")
		if err := board.Add(ctx, client.NewTask{Text: text, Priority: *priority, Status: *status}); err != nil {
			return err
		}

	case "edit":
		if len(args) < 2 {
			return errors.New("usage: tasktracker task edit <id> [-text ...] [-priority ...] [-status ...]")
		}
		id, err := resolveID(board.Tasks, args[1])
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("edit", flag.ContinueOnError)
		text := fs.String("text", "", "new text")
		priority := fs.String("priority", "", "low, medium or high")
		status := fs.String("status", "", "todo, in-progress or done")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		var upd client.TaskUpdate
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "text":
				upd.Text = text
			case "priority":
				upd.Priority = priority
			case "status":
				upd.Status = status
			}
		})
		if err := board.Update(ctx, id, upd); err != nil {
			return err
		}

	case "done", "undo":
		if len(args) < 2 {
			return fmt.Errorf("usage: tasktracker task %s <id>", args[0])
		}
		id, err := resolveID(board.Tasks, args[1])
		if err != nil {
			return err
		}
		completed := args[0] == "done"
		if err := board.Update(ctx, id, client.TaskUpdate{Completed: &completed}); err != nil {
			return err
		}

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: tasktracker task delete <id>")
		}
		id, err := resolveID(board.Tasks, args[1])
		if err != nil {
			return err
		}
		if err := board.Remove(ctx, id); err != nil {
			return err
		}

	case "clear":
		n, err := board.ClearCompleted(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Cleared %d completed task(s)\n", n)

	default:
		return fmt.Errorf("unknown task command: %s", args[0])
	}

	printBoard(out, board)
	return nil
}

// readPassword is swapped out in tests
var readPassword = term.ReadPassword

// promptPassword asks for the password without echo when the flag was left empty
func promptPassword(out io.Writer, password *string) error {
	if *password != "" {
		return nil
	}
	fmt.Fprint(out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	*password = string(pw)
	return nil
}

// resolveID accepts a full id or a unique prefix of one
func resolveID(tasks []domain.Task, ref string) (string, error) {
	var match string
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task matches %q", ref)
	}
	return match, nil
}

func printBoard(out io.Writer, board *client.Board) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tSTATUS\tTEXT")
	for _, t := range board.Visible() {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\n", shortID(t.ID), done, t.Priority, t.Status, t.Text)
	}
	w.Flush()
	fmt.Fprintf(out, "%d item(s) left\n", board.Remaining())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func getAPIURL() string {
	if url := os.Getenv("TASKTRACKER_API"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func tokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tasktracker", "token")
}

type tokenStore struct {
	path string
}

func (s tokenStore) save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s tokenStore) load() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s tokenStore) clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `Task Tracker CLI

Usage:
  tasktracker <command> [options]

Commands:
  auth   register, login, logout, who
  task   list [-filter all|active|completed], add, edit, done, undo, delete, clear
  help   Show this help message

Environment Variables:
  TASKTRACKER_API    API root (default: http://localhost:8080)

Examples:
  tasktracker auth register -username alice -email alice@example.com -password secret1
  tasktracker task add -priority high Buy milk
  tasktracker task done 3f2a
  tasktracker task list -filter active
`)
}
