package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) WhoAmI(context.Context) error         { return f.record("whoami") }
func (f *fakeExec) Refresh(context.Context) error        { return f.record("refresh") }
func (f *fakeExec) UpdateAccount(context.Context) error  { return f.record("account") }
func (f *fakeExec) UpdateAvatar(context.Context) error   { return f.record("avatar") }
func (f *fakeExec) UpdateCover(context.Context) error    { return f.record("cover") }
func (f *fakeExec) ChangePassword(context.Context) error { return f.record("password") }
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			if s, ok := v.(string); ok {
				printed = append(printed, s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &printed
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silence(t)

	input := strings.Join([]string{
		"help",
		"register",
		"login",
		"",
		"whoami",
		"me",
		"refresh",
		"account",
		"avatar",
		"cover",
		"password",
		"logout",
		"exit",
		"whoami",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	want := []string{"register", "login", "whoami", "whoami", "refresh", "account", "avatar", "cover", "password", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_HelpDependsOnLoginState(t *testing.T) {
	printed := silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("help\nlogin\nhelp\nquit\n")))

	var helps []string
	for _, p := range *printed {
		if strings.HasPrefix(p, "Available commands") {
			helps = append(helps, p)
		}
	}
	if len(helps) != 2 {
		t.Fatalf("expected two help lines, got %v", helps)
	}
	if strings.Contains(helps[0], "whoami") || !strings.Contains(helps[1], "whoami") {
		t.Fatalf("help text does not follow login state: %v", helps)
	}
}

func TestRunREPL_UnknownCommandAndEOF(t *testing.T) {
	printed := silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(alice)" }, bufio.NewReader(strings.NewReader("foobar")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}

	found := false
	for _, p := range *printed {
		if p == "Unknown command:" {
			found = true
		}
	}
	if !found {
		t.Fatalf("unknown command not reported: %v", *printed)
	}
	if (*printed)[0] != "vidtube(alice)> " {
		t.Fatalf("prompt = %q", (*printed)[0])
	}
}
