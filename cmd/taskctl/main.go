// taskctl is a command-line front end for the task manager API. Every
// invocation signs in with the supplied credentials, runs one command, and
// exits; the session cookie lives only for the duration of the process.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/K-nass/task-management/internal/client"
	"github.com/K-nass/task-management/internal/tasks"
)

const usage = `usage: taskctl [flags] <command> [args]

commands:
  register <name>                 create the account and sign in
  whoami                          print the signed-in user
  list                            list tasks, newest first
  add <title> [description]       create a task
  update <id>                     change fields given by --title, --description, --status
  done <id>                       mark a task done
  rm <id>                         delete a task

flags:
`

type options struct {
	server      string
	email       string
	password    string
	timeout     time.Duration
	title       string
	description string
	status      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("taskctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.server, "server", "s", envOr("TASKCTL_SERVER", "http://localhost:8080/api"), "API base URL including the prefix")
	flagSet.StringVarP(&opts.email, "email", "e", os.Getenv("TASKCTL_EMAIL"), "account email")
	flagSet.StringVarP(&opts.password, "password", "p", os.Getenv("TASKCTL_PASSWORD"), "account password")
	flagSet.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	flagSet.StringVar(&opts.title, "title", "", "new title (update)")
	flagSet.StringVar(&opts.description, "description", "", "new description (update)")
	flagSet.StringVar(&opts.status, "status", "", "new status: pending, in_progress or done (update)")
	flagSet.Usage = func() {
		fmt.Fprint(stderr, usage)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	args := flagSet.Args()
	if len(args) == 0 {
		flagSet.Usage()
		return errors.New("missing command")
	}
	if opts.email == "" || opts.password == "" {
		return errors.New("--email and --password (or TASKCTL_EMAIL, TASKCTL_PASSWORD) are required")
	}

	api, err := client.New(client.Config{BaseURL: opts.server, Timeout: opts.timeout}, nil)
	if err != nil {
		return err
	}
	session := client.NewSession(api)

	command, rest := args[0], args[1:]
	if command == "register" {
		if len(rest) != 1 {
			return errors.New("register takes exactly one argument: the display name")
		}
		user, err := session.Register(ctx, client.Registration{Name: rest[0], Email: opts.email, Password: opts.password})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "registered %s <%s> (id %d)\n", user.Name, user.Email, user.ID)
		return nil
	}

	if _, err := session.Login(ctx, client.Credentials{Email: opts.email, Password: opts.password}); err != nil {
		return err
	}
	defer func() { _ = session.Logout(context.WithoutCancel(ctx)) }()
	if client.Guard(session) != client.DecisionProceed {
		return errors.New("not signed in")
	}

	switch command {
	case "whoami":
		user := session.User()
		fmt.Fprintf(stdout, "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
		return nil
	case "list":
		list, err := api.ListTasks(ctx)
		if err != nil {
			return err
		}
		printTasks(stdout, list)
		return nil
	case "add":
		if len(rest) < 1 || len(rest) > 2 {
			return errors.New("add takes a title and an optional description")
		}
		req := tasks.CreateTaskRequest{Title: rest[0]}
		if len(rest) == 2 {
			req.Description = &rest[1]
		}
		task, err := api.CreateTask(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "created task %d\n", task.ID)
		return nil
	case "update", "done":
		id, err := taskID(rest)
		if err != nil {
			return err
		}
		req := updateRequest(flagSet, opts)
		if command == "done" {
			status := tasks.StatusDone
			req.Status = &status
		}
		task, err := api.UpdateTask(ctx, id, req)
		if err != nil {
			return err
		}
		printTasks(stdout, []tasks.Task{*task})
		return nil
	case "rm":
		id, err := taskID(rest)
		if err != nil {
			return err
		}
		if err := api.DeleteTask(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "removed task %d\n", id)
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

// updateRequest includes only the flags the user actually set.
func updateRequest(flagSet *pflag.FlagSet, opts options) tasks.UpdateTaskRequest {
	var req tasks.UpdateTaskRequest
	if flagSet.Changed("title") {
		req.Title = &opts.title
	}
	if flagSet.Changed("description") {
		req.Description = &opts.description
	}
	if flagSet.Changed("status") {
		status := tasks.Status(opts.status)
		req.Status = &status
	}
	return req
}

func taskID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one task id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

func printTasks(w io.Writer, list []tasks.Task) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tDESCRIPTION\tCREATED")
	for _, t := range list {
		desc := ""
		if t.Description != nil {
			desc = strings.ReplaceAll(*t.Description, "\n", " ")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, desc, t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
