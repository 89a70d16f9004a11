//go:build e2e && unix

package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

var binPath = "typeahead_e2e"

const (
	keyEnter = "\r"
	keyEsc   = "\x1b"
	keyCtrlC = "\x03"
	keyDown  = "\x1b[B"
	keyUp    = "\x1b[A"
)

// Strips CSI, OSC, charset and keypad sequences plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// picker runs the typeahead binary on a PTY. The TUI draws on the PTY;
// stdout, which carries the chosen result, is captured on its own.
type picker struct {
	t    *testing.T
	dir  string
	pty  *os.File
	tty  *os.File
	cmd  *exec.Cmd
	done chan error
	out  bytes.Buffer

	mu     sync.Mutex
	screen bytes.Buffer
}

// newPicker prepares an isolated $HOME holding a catalog
func newPicker(t *testing.T, catalog string) *picker {
	t.Helper()
	p := &picker{t: t, dir: t.TempDir()}
	require.NoError(t, os.WriteFile(p.CatalogPath(), []byte(catalog), 0644))
	t.Cleanup(p.stop)
	return p
}

// CatalogPath is where the catalog lives
func (p *picker) CatalogPath() string {
	return filepath.Join(p.dir, "catalog.yaml")
}

// Start launches the binary at 120x40
func (p *picker) Start(args ...string) {
	p.t.Helper()
	args = append([]string{"--log", filepath.Join(p.dir, "typeahead.log"), "--catalog", p.CatalogPath()}, args...)
	p.cmd = exec.Command(binPath, args...)
	p.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LANG=C.UTF-8",
		"HOME="+p.dir,
		"XDG_CONFIG_HOME="+filepath.Join(p.dir, "config"),
	)

	ptmx, tty, err := pty.Open()
	require.NoError(p.t, err, "open pty")
	require.NoError(p.t, pty.Setsize(ptmx, &pty.Winsize{Rows: 40, Cols: 120}))
	p.pty, p.tty = ptmx, tty
	p.cmd.Stdin = tty
	p.cmd.Stderr = tty
	p.cmd.Stdout = &p.out

	require.NoError(p.t, p.cmd.Start(), "start %s", binPath)
	p.done = make(chan error, 1)
	go func() { p.done <- p.cmd.Wait() }()
	go p.read()
}

func (p *picker) read() {
	buf := make([]byte, 8192)
	for {
		n, err := p.pty.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.screen.Write(buf[:n])
			p.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (p *picker) send(keys string) {
	p.t.Helper()
	_, err := p.pty.Write([]byte(keys))
	require.NoError(p.t, err, "write %q", keys)
}

// Type sends text one key at a time
func (p *picker) Type(text string) {
	p.t.Helper()
	for _, r := range text {
		p.send(string(r))
		time.Sleep(10 * time.Millisecond)
	}
}

func (p *picker) Down()  { p.t.Helper(); p.send(keyDown) }
func (p *picker) Up()    { p.t.Helper(); p.send(keyUp) }
func (p *picker) Enter() { p.t.Helper(); p.send(keyEnter) }
func (p *picker) CtrlC() { p.t.Helper(); p.send(keyCtrlC) }

// Escape sends a lone escape, pausing so it is not read as the start of a
// sequence with the next key
func (p *picker) Escape() {
	p.t.Helper()
	p.send(keyEsc)
	time.Sleep(150 * time.Millisecond)
}

// Screen returns everything drawn so far with escape sequences removed
func (p *picker) Screen() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ansiRe.ReplaceAllString(p.screen.String(), "")
}

// Sees waits up to three seconds for text to be drawn
func (p *picker) Sees(text string) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(p.Screen(), text) {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return false
}

// Wait returns the exit code once the process ends
func (p *picker) Wait(timeout time.Duration) int {
	p.t.Helper()
	select {
	case err := <-p.done:
		p.cmd = nil
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		require.NoError(p.t, err)
		return 0
	case <-time.After(timeout):
		screen := p.Screen()
		if len(screen) > 4096 {
			screen = screen[len(screen)-4096:]
		}
		p.t.Fatalf("still running after %s\n--- screen ---\n%s", timeout, screen)
		return -1
	}
}

// Stdout is what the process printed. Read it after Wait.
func (p *picker) Stdout() string {
	return p.out.String()
}

func (p *picker) stop() {
	// Closing the PTY hangs up the child
	if p.pty != nil {
		_ = p.pty.Close()
	}
	if p.tty != nil {
		_ = p.tty.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}
