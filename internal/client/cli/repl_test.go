package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string, args ...string) error {
	if len(args) > 0 {
		name += " " + strings.Join(args, " ")
	}
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Signup(ctx context.Context) error { return f.record("signup") }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error                 { return f.record("whoami") }
func (f *fakeExec) Show(ctx context.Context) error                   { return f.record("show") }
func (f *fakeExec) Point(ctx context.Context, args []string) error   { return f.record("point", args...) }
func (f *fakeExec) Undo(ctx context.Context) error                   { return f.record("undo") }
func (f *fakeExec) ClearPoints(ctx context.Context) error            { return f.record("clear") }
func (f *fakeExec) Class(ctx context.Context, args []string) error   { return f.record("class", args...) }
func (f *fakeExec) Brush(ctx context.Context, args []string) error   { return f.record("brush", args...) }
func (f *fakeExec) Name(ctx context.Context, args []string) error    { return f.record("name", args...) }
func (f *fakeExec) New(ctx context.Context) error                    { return f.record("new") }
func (f *fakeExec) Export(ctx context.Context) error                 { return f.record("export") }
func (f *fakeExec) Import(ctx context.Context, args []string) error  { return f.record("import", args...) }
func (f *fakeExec) Preview(ctx context.Context) error                { return f.record("preview") }

// capturePrintln swaps printlnFn for one that collects lines.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec execIface, input ...string) {
	r := bufio.NewReader(strings.NewReader(strings.Join(input, "\n")))
	runREPL(context.Background(), exec, func() string { return "(status)" }, r)
}

func TestRunREPL_DispatchesWithArguments(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	run(exec,
		"login",
		"signup",
		"whoami",
		"show",
		"point 10 20.5",
		"p 1 2",
		"undo",
		"clear",
		"class rename class-1 Cats and dogs",
		"brush 7",
		"name flowers",
		"new",
		"export",
		"import ./data.json",
		"preview",
		"logout",
		"exit",
	)

	assert.Equal(t, []string{
		"login",
		"signup",
		"whoami",
		"show",
		"point 10 20.5",
		"point 1 2",
		"undo",
		"clear",
		"class rename class-1 Cats and dogs",
		"brush 7",
		"name flowers",
		"new",
		"export",
		"import ./data.json",
		"preview",
		"logout",
	}, exec.calls)
}

func TestRunREPL_HelpFollowsSession(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{}
	run(exec, "help", "login", "help", "logout", "help", "quit")

	var helps []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Account:") {
			helps = append(helps, l)
		}
	}
	assert.Equal(t, []string{helpAnonymous, helpLoggedIn, helpAnonymous}, helps)
	assert.NotContains(t, helpAnonymous, "logout")
	assert.NotContains(t, helpLoggedIn, "login")
}

func TestRunREPL_UnknownCommandAndQuit(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{}
	run(exec, "", "   ", "frobnicate x", "quit", "show")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: frobnicate")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	lines := capturePrintln(t)

	run(&fakeExec{}, "exit")

	assert.Equal(t, "mlp (status)> ", (*lines)[0])
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	run(exec, "show")

	assert.Equal(t, []string{"show"}, exec.calls)
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capturePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	r := bufio.NewReader(strings.NewReader("show\nshow\n"))
	runREPL(ctx, exec, func() string { return "" }, r)

	assert.Empty(t, exec.calls)
}
