package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Default SSH settings.
const (
	DefaultSSHPort        = 22
	DefaultCommandTimeout = 5 * time.Second
	DefaultDialTimeout    = 10 * time.Second
)

// SSHConfig specifies connection parameters for a remote host.
type SSHConfig struct {
	// Host is the hostname or IP address of the remote system.
	Host string

	// Port is the SSH port (default: 22).
	Port int

	// User is the SSH username.
	User string

	// Auth specifies how to authenticate.
	Auth AuthMethod

	// KnownHostsPath is an OpenSSH known_hosts file used to verify the host key.
	// When empty, host keys are not verified and a warning is logged.
	KnownHostsPath string

	// CommandTimeout bounds each remote command (default: 5s).
	CommandTimeout time.Duration

	// DialTimeout bounds the TCP connect and SSH handshake (default: 10s).
	DialTimeout time.Duration

	// Logger receives connection events. Nil discards them.
	Logger *slog.Logger
}

// AuthMethod defines SSH authentication methods.
type AuthMethod interface {
	isAuthMethod()
}

// PasswordAuth authenticates using a password.
type PasswordAuth struct {
	Password string
}

func (PasswordAuth) isAuthMethod() {}

// KeyAuth authenticates using an SSH private key.
type KeyAuth struct {
	PrivateKeyPath string
	Passphrase     string // optional, for encrypted keys
}

func (KeyAuth) isAuthMethod() {}

// AgentAuth authenticates using the SSH agent at $SSH_AUTH_SOCK.
type AgentAuth struct{}

func (AgentAuth) isAuthMethod() {}

// SSH reads system information from a remote host by running standard
// shell commands over a single SSH connection. The remote host needs no
// agent installed.
type SSH struct {
	addr       string
	cmdTimeout time.Duration
	logger     *slog.Logger

	mu     sync.RWMutex
	client *ssh.Client
}

// DialSSH validates config, connects to the remote host and authenticates.
func DialSSH(ctx context.Context, config SSHConfig) (*SSH, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if config.User == "" {
		return nil, fmt.Errorf("user is required")
	}
	if config.Auth == nil {
		return nil, fmt.Errorf("authentication method is required")
	}
	if config.Port == 0 {
		config.Port = DefaultSSHPort
	}
	if config.CommandTimeout == 0 {
		config.CommandTimeout = DefaultCommandTimeout
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	clientConfig, err := buildClientConfig(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	d := net.Dialer{Timeout: config.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	logger.Debug("ssh connected", "addr", addr, "user", config.User)

	return &SSH{
		addr:       addr,
		cmdTimeout: config.CommandTimeout,
		logger:     logger,
		client:     ssh.NewClient(c, chans, reqs),
	}, nil
}

func buildClientConfig(config SSHConfig, logger *slog.Logger) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	switch auth := config.Auth.(type) {
	case PasswordAuth:
		authMethods = append(authMethods, ssh.Password(auth.Password))
	case KeyAuth:
		key, err := os.ReadFile(auth.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		var signer ssh.Signer
		if auth.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(auth.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	case AgentAuth:
		socket := os.Getenv("SSH_AUTH_SOCK")
		if socket == "" {
			return nil, fmt.Errorf("SSH_AUTH_SOCK not set")
		}
		// Defer the agent connection until the handshake asks for keys.
		authMethods = append(authMethods, ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
			agentConn, err := net.Dial("unix", socket)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to SSH agent: %w", err)
			}
			defer agentConn.Close()

			signers, err := agent.NewClient(agentConn).Signers()
			if err != nil {
				return nil, fmt.Errorf("failed to get signers from SSH agent: %w", err)
			}
			return signers, nil
		}))
	default:
		return nil, fmt.Errorf("unsupported auth method type: %T", auth)
	}

	var hostKeyCallback ssh.HostKeyCallback
	if config.KnownHostsPath != "" {
		cb, err := knownhosts.New(config.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("loading known_hosts: %w", err)
		}
		hostKeyCallback = cb
	} else {
		logger.Warn("ssh host key verification disabled; set known_hosts to enable it",
			"host", config.Host)
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	return &ssh.ClientConfig{
		User:            config.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         config.DialTimeout,
	}, nil
}

// Name returns "ssh://host:port".
func (s *SSH) Name() string {
	return "ssh://" + s.addr
}

// run executes a shell line on the remote host and returns its stdout.
func (s *SSH) run(ctx context.Context, cmd string) (string, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("SSH client not connected")
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	timer := time.NewTimer(s.cmdTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("command failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), nil
	case <-timer.C:
		_ = session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timed out after %v", s.cmdTimeout)
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	}
}

// exitNotExist is the exit status ReadFile and ReadDir use for a missing
// path. cat and ls never exit with it, so a read failure such as permission
// denied is not mistaken for absence.
const exitNotExist = 3

// ReadFile reads a remote file with cat.
func (s *SSH) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if !validatePath(path) {
		return nil, fmt.Errorf("invalid path %q", path)
	}
	p := shellEscape(path)
	out, err := s.run(ctx, fmt.Sprintf("test -e %s || exit %d; cat %s", p, exitNotExist, p))
	if err != nil {
		if isExitStatus(err, exitNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return []byte(out), nil
}

// ReadDir lists a remote directory with ls -1.
func (s *SSH) ReadDir(ctx context.Context, path string) ([]string, error) {
	if !validatePath(path) {
		return nil, fmt.Errorf("invalid path %q", path)
	}
	p := shellEscape(path)
	out, err := s.run(ctx, fmt.Sprintf("test -d %s || exit %d; ls -1 %s", p, exitNotExist, p))
	if err != nil {
		if isExitStatus(err, exitNotExist) {
			return nil, fmt.Errorf("listing %s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	return splitLines(out), nil
}

// Run executes a command on the remote host. Every word is shell-escaped.
func (s *SSH) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := s.run(ctx, shellCommand(name, args...))
	if err != nil {
		return "", fmt.Errorf("running %s: %w", commandLine(name, args), err)
	}
	return out, nil
}

// Uname runs uname -s -n -m on the remote host.
func (s *SSH) Uname(ctx context.Context) (Uname, error) {
	out, err := s.run(ctx, "uname -s -n -m")
	if err != nil {
		return Uname{}, fmt.Errorf("uname: %w", err)
	}
	return parseUname(out)
}

// DiskUsage runs df -Pk on the remote host.
func (s *SSH) DiskUsage(ctx context.Context, path string) (DiskUsage, error) {
	out, err := s.run(ctx, "df -Pk "+shellEscape(path))
	if err != nil {
		return DiskUsage{}, fmt.Errorf("df %s: %w", path, err)
	}
	return parseDF(out)
}

// Close closes the SSH connection.
func (s *SSH) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

// parseUname parses the single line printed by "uname -s -n -m".
func parseUname(output string) (Uname, error) {
	fields := strings.Fields(output)
	if len(fields) != 3 {
		return Uname{}, fmt.Errorf("unexpected uname output: %q", strings.TrimSpace(output))
	}
	return Uname{Sysname: fields[0], Nodename: fields[1], Machine: fields[2]}, nil
}

// parseDF parses POSIX "df -Pk" output:
//
//	Filesystem 1024-blocks Used Available Capacity Mounted on
//	/dev/sda1  102400      51200 51200    50%      /
func parseDF(output string) (DiskUsage, error) {
	lines := splitLines(output)
	if len(lines) < 2 {
		return DiskUsage{}, fmt.Errorf("unexpected df output: %q", strings.TrimSpace(output))
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 6 {
		return DiskUsage{}, fmt.Errorf("unexpected df line: %q", lines[len(lines)-1])
	}
	total, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("parsing df total: %w", err)
	}
	avail, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("parsing df available: %w", err)
	}
	return DiskUsage{Total: total * 1024, Free: avail * 1024}, nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isExitStatus(err error, status int) bool {
	var exitErr *ssh.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitStatus() == status
}
