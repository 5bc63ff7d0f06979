// Package player defines a unified abstraction layer for media playback backends.
package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rickykresslein/yattee/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// proc owns a spawned decoder process and its IPC socket.
// Both backends share this transport; they differ only in the argument set
// and the capability surface they expose on top of it.
type proc struct {
	binary     string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the process exits
	mu         sync.Mutex    // Protects socket writes
}

func newProc(binary string) *proc {
	return &proc{
		binary: binary,
		exited: make(chan struct{}),
	}
}

// socket returns the IPC socket path, generating a random one on first use.
// os.TempDir() is used for cross-platform support (macOS $TMPDIR is
// /var/folders/... not /tmp/).
func (p *proc) socket() (string, error) {
	if p.socketPath != "" {
		return p.socketPath, nil
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	p.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("yattee-%x.sock", randomBytes))
	return p.socketPath, nil
}

// start spawns the decoder process with the given arguments and waits for its
// IPC socket to accept connections.
func (p *proc) start(args []string) error {
	p.cmd = exec.Command(p.binary, args...)

	// Detach from parent process group to prevent cascading shell panics.
	p.cmd.SysProcAttr = sysProcAttr()

	// Disable standard pipes to prevent resource leaks.
	p.cmd.Stdout = nil
	p.cmd.Stderr = nil
	p.cmd.Stdin = nil

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.binary, err)
	}

	// Background goroutine to reap the process and prevent zombies
	p.exited = make(chan struct{})
	go func(cmd *exec.Cmd, exited chan struct{}) {
		_ = cmd.Wait()
		close(exited)
	}(p.cmd, p.exited)

	if err := p.waitForSocket(); err != nil {
		// If the socket never became ready, kill the orphaned process
		if p.cmd.Process != nil {
			select {
			case <-p.exited:
				// Already exited
			default:
				log.Warnf("killing %s: socket never became ready", p.binary)
				_ = p.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("%s socket not ready: %w", p.binary, err)
	}

	return nil
}

// waitForSocket polls until the IPC socket is accepting connections.
func (p *proc) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		// Check if process already exited
		select {
		case <-p.exited:
			return fmt.Errorf("%s exited before socket was ready", p.binary)
		default:
		}

		conn, err := net.Dial("unix", p.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", p.socketPath, socketWaitRetries)
}

// running reports whether the process is alive and responding to IPC.
func (p *proc) running() bool {
	if p.socketPath == "" || p.cmd == nil {
		return false
	}

	// Fast check: process already exited?
	select {
	case <-p.exited:
		return false
	default:
	}

	_, err := p.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

// close shuts down the process gracefully, force-killing on timeout, and
// removes the socket file.
func (p *proc) close() error {
	if p.socketPath == "" || p.cmd == nil {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = p.sendCommand([]interface{}{"quit"})

	select {
	case <-p.exited:
		// Clean exit
	case <-time.After(3 * time.Second):
		_ = killProcess(p.cmd)
	}

	_ = os.Remove(p.socketPath)
	return nil
}

// getFloat retrieves a float64 property via IPC.
func (p *proc) getFloat(name string) (float64, error) {
	data, err := p.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// getBool retrieves a boolean property via IPC.
func (p *proc) getBool(name string) (bool, error) {
	data, err := p.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return false, err
	}
	val, ok := data.(bool)
	if !ok {
		return false, nil
	}
	return val, nil
}

// set assigns a property via IPC.
func (p *proc) set(property string, value interface{}) error {
	_, err := p.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// command issues a raw IPC command.
func (p *proc) command(args ...interface{}) error {
	_, err := p.sendCommand(args)
	return err
}

// sanitizeMediaTarget validates that a URL is safe to pass to a spawned player.
// Prevents flag injection from untrusted resolver scripts.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	// Reject control characters
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	// If it contains "://", validate as URL
	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up the window title handed to a spawned player.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	// Remove null bytes
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}

// headerFields joins HTTP headers into the player's comma-separated field list.
func headerFields(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}
	var b strings.Builder
	for k, v := range headers {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		// Replace commas in values if any (simple sanitization)
		val := strings.ReplaceAll(v, ",", "%2C")
		b.WriteString(fmt.Sprintf("%s: %s", k, val))
	}
	return b.String()
}
