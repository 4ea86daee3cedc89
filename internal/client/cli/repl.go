package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App implements it.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	RequestReset(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Post(ctx context.Context) error
	Edit(ctx context.Context, postID string) error
	Delete(ctx context.Context, postID string) error
	Posts(ctx context.Context, userID string) error
	Feed(ctx context.Context) error
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
	Watch(ctx context.Context) error
	Unwatch(ctx context.Context) error
}

// usage lists commands taking exactly one argument.
var usage = map[string]string{
	"edit":     "Usage: edit <post-id>",
	"delete":   "Usage: delete <post-id>",
	"posts":    "Usage: posts <user-id>",
	"follow":   "Usage: follow <user-id>",
	"unfollow": "Usage: unfollow <user-id>",
}

// runREPL reads commands from scanner until EOF or "exit"/"quit" and
// dispatches them to a. Command errors are printed and the loop continues.
//
//	Not logged in:  help, signup, login, forgot, reset, posts <user-id>, exit
//	Logged in:      help, post, edit <id>, delete <id>, posts <user-id>, feed,
//	                follow <user-id>, unfollow <user-id>, watch, unwatch,
//	                logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pf> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if u, ok := usage[cmd]; ok && len(args) != 1 {
			printlnFn(u)
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: post, edit, delete, posts, feed, follow, unfollow, watch, unwatch, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, forgot, reset, posts, exit")
			}

		case "signup":
			err = a.Signup(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "forgot":
			err = a.RequestReset(ctx)
		case "reset":
			err = a.ResetPassword(ctx)
		case "post":
			err = a.Post(ctx)
		case "edit":
			err = a.Edit(ctx, args[0])
		case "delete":
			err = a.Delete(ctx, args[0])
		case "posts":
			err = a.Posts(ctx, args[0])
		case "feed":
			err = a.Feed(ctx)
		case "follow":
			err = a.Follow(ctx, args[0])
		case "unfollow":
			err = a.Unfollow(ctx, args[0])
		case "watch":
			err = a.Watch(ctx)
		case "unwatch":
			err = a.Unwatch(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
