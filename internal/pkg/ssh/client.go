package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

var (
	// ErrAuthFailed means the remote host rejected the credentials.
	ErrAuthFailed = errors.New("ssh authentication rejected")
	// ErrConnectFailed covers DNS, refusal, timeouts and handshake failures.
	ErrConnectFailed = errors.New("ssh connection failed")
	// ErrHostKey means the host key did not verify against known_hosts.
	ErrHostKey = errors.New("ssh host key verification failed")
	// ErrExecFailed means the command could not be run to completion.
	ErrExecFailed = errors.New("ssh command execution failed")
)

type SSHConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	ConnectTimeout time.Duration
	CommandTimeout time.Duration

	// KnownHostsFile is consulted unless InsecureIgnoreHostKey is set.
	KnownHostsFile        string
	InsecureIgnoreHostKey bool

	// ConfigFile is an optional OpenSSH client config used to resolve Host
	// as an alias.
	ConfigFile string
}

type Client struct {
	config SSHConfig
	addr   string
	conn   *ssh.Client
}

type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func NewClient(config SSHConfig) *Client {
	return &Client{
		config: config,
	}
}

// Connect dials the host and authenticates with the configured password.
// The handshake is bounded by ConnectTimeout and by ctx.
func (c *Client) Connect(ctx context.Context) error {
	host, port, err := ResolveHost(c.config.ConfigFile, c.config.Host, c.config.Port)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	c.addr = net.JoinHostPort(host, strconv.Itoa(port))

	var hostKeyErr error
	verify, err := hostKeyCallback(c.config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	clientConfig := &ssh.ClientConfig{
		User: c.config.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(c.config.Password),
			ssh.KeyboardInteractive(c.answerWithPassword),
		},
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			if err := verify(hostname, remote, key); err != nil {
				hostKeyErr = err
				return err
			}
			return nil
		},
		Timeout: c.config.ConnectTimeout,
	}

	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	var dialer net.Dialer
	netConn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = netConn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = netConn.SetDeadline(time.Now())
	})

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, c.addr, clientConfig)
	stop()
	if err != nil {
		netConn.Close()
		switch {
		case hostKeyErr != nil:
			return fmt.Errorf("%w: %v", ErrHostKey, hostKeyErr)
		case isAuthError(err):
			return ErrAuthFailed
		default:
			return fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
	}
	_ = netConn.SetDeadline(time.Time{})

	c.conn = ssh.NewClient(sshConn, chans, reqs)
	return nil
}

func (c *Client) answerWithPassword(_, _ string, questions []string, _ []bool) ([]string, error) {
	answers := make([]string, len(questions))
	for i := range questions {
		answers[i] = c.config.Password
	}
	return answers, nil
}

// ExecuteCommand runs cmd in a new session. A non-zero exit status is
// reported through CommandResult.ExitCode, not as an error.
func (c *Client) ExecuteCommand(ctx context.Context, cmd string) (*CommandResult, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("%w: not connected", ErrExecFailed)
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return nil, fmt.Errorf("%w: open session: %v", ErrExecFailed, err)
	}
	defer session.Close()

	if c.config.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.CommandTimeout)
		defer cancel()
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		// The Run goroutine exits once the session or connection closes.
		_ = session.Signal(ssh.SIGKILL)
		return nil, fmt.Errorf("%w: %v", ErrExecFailed, ctx.Err())
	}

	result := &CommandResult{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		result.ExitCode = -1
		return result, fmt.Errorf("%w: %v", ErrExecFailed, err)
	}

	return result, nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Address returns the resolved host:port, empty before Connect.
func (c *Client) Address() string {
	return c.addr
}

func isAuthError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "no supported methods remain")
}
