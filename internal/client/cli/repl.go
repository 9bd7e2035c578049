package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate. The real
// App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	sessionExpired(ctx context.Context) bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context, args []string) error

	List(ctx context.Context) error
	New(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Edit(ctx context.Context) error
	Append(ctx context.Context) error
	Rename(ctx context.Context, args []string) error
	Save(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Publish(ctx context.Context, args []string) error
	Unpublish(ctx context.Context, args []string) error

	Public(ctx context.Context) error
	Read(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error

	AI(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Stats(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: signup, login, public, read <n>, exit"
	helpLoggedIn  = "Available commands: (l)ist, new [title], open <n>, show, edit, append, rename <title>, save, " +
		"delete [n], publish [n], unpublish [n], ai summary|grammar, status, public, read <n>, comment <n>, " +
		"profile [edit], stats, logout, exit"
)

// runREPL starts a read–eval–print loop for the SyncDraft CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on a; the remaining tokens are passed as arguments.
// Errors returned by handlers are printed and the loop goes on. When the
// session expires during a command the user is sent back to sign-in. The
// loop exits on EOF, when ctx is done or when the user types "exit" or
// "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("sd %s> ", statusFn()))
		line, err := readLine(ctx, reader)
		if ctx.Err() != nil || (err != nil && line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}

		if a.sessionExpired(ctx) {
			printlnFn("Session expired, please sign in again.")
			if err := a.Login(ctx); err != nil {
				printlnFn("Error:", err)
			}
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line, giving up when ctx is done. An abandoned read
// keeps blocking in the background; the REPL stops reading after that, so
// reader is never used by two goroutines at once.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- lineResult{line, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "signup", "register":
		return a.Signup(ctx)
	case "login":
		return a.Login(ctx)
	case "public":
		return a.Public(ctx)
	case "read":
		return a.Read(ctx, args)
	}

	if !a.isLoggedIn() {
		printlnFn("Please sign in first (signup or login).")
		return nil
	}

	switch cmd {
	case "l", "list":
		return a.List(ctx)
	case "new":
		return a.New(ctx, args)
	case "open":
		return a.Open(ctx, args)
	case "show":
		return a.Show(ctx)
	case "edit":
		return a.Edit(ctx)
	case "append":
		return a.Append(ctx)
	case "rename":
		return a.Rename(ctx, args)
	case "save":
		return a.Save(ctx)
	case "delete":
		return a.Delete(ctx, args)
	case "publish":
		return a.Publish(ctx, args)
	case "unpublish":
		return a.Unpublish(ctx, args)
	case "comment":
		return a.Comment(ctx, args)
	case "ai":
		return a.AI(ctx, args)
	case "status":
		return a.Status(ctx)
	case "stats":
		return a.Stats(ctx)
	case "profile":
		return a.Profile(ctx, args)
	case "logout":
		return a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}
