package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
	err   error
}

func (f *fakeExec) call(name string, args ...string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args...)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Signup(context.Context) error {
	f.loggedIn = true
	return f.call("signup")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.call("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.call("logout")
}
func (f *fakeExec) RequestReset(context.Context) error { return f.call("forgot") }
func (f *fakeExec) ResetPassword(context.Context) error { return f.call("reset") }
func (f *fakeExec) Post(context.Context) error { return f.call("post") }
func (f *fakeExec) Edit(_ context.Context, id string) error { return f.call("edit", id) }
func (f *fakeExec) Delete(_ context.Context, id string) error { return f.call("delete", id) }
func (f *fakeExec) Posts(_ context.Context, id string) error { return f.call("posts", id) }
func (f *fakeExec) Feed(context.Context) error { return f.call("feed") }
func (f *fakeExec) Follow(_ context.Context, id string) error { return f.call("follow", id) }
func (f *fakeExec) Unfollow(_ context.Context, id string) error { return f.call("unfollow", id) }
func (f *fakeExec) Watch(context.Context) error { return f.call("watch") }
func (f *fakeExec) Unwatch(context.Context) error { return f.call("unwatch") }

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			} else if e, ok := v.(error); ok {
				parts = append(parts, e.Error())
			}
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &printed
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"",
		"post",
		"follow u2",
		"feed",
		"posts u2",
		"edit p1",
		"delete p1",
		"unfollow u2",
		"watch",
		"unwatch",
		"logout",
		"exit",
		"feed",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"login", "post", "follow", "feed", "posts", "edit", "delete", "unfollow", "watch", "unwatch", "logout"}, exec.calls)
	assert.Equal(t, []string{"u2", "u2", "p1", "p1", "u2"}, exec.args)
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	printed := silence(t)

	input := strings.NewReader("follow\nposts a b\nfoobar\nquit\n")
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *printed, "Usage: follow <user-id>")
	assert.Contains(t, *printed, "Usage: posts <user-id>")
	assert.Contains(t, *printed, "Unknown command: foobar")
	assert.Contains(t, *printed, "Bye!")
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	printed := silence(t)

	input := strings.NewReader("forgot\nreset\n")
	exec := &fakeExec{err: errors.New("boom")}

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"forgot", "reset"}, exec.calls)
	assert.Contains(t, *printed, "Error: boom")
}
