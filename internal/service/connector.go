package service

import (
	"context"
	"errors"
	"net"
	"strconv"

	"simlab-dashboard/internal/pkg/ssh"
	"simlab-dashboard/pkg/utils"
)

// RemoteClient is one authenticated connection to the login node.
type RemoteClient interface {
	ExecuteCommand(ctx context.Context, cmd string) (*ssh.CommandResult, error)
	Close() error
}

// Connector opens a fresh RemoteClient for every call.
type Connector interface {
	Connect(ctx context.Context, username, password string) (RemoteClient, error)
}

// SSHConnector connects to the fixed cluster host described by base.
type SSHConnector struct {
	base ssh.SSHConfig
}

func NewSSHConnector(base ssh.SSHConfig) *SSHConnector {
	base.Username = ""
	base.Password = ""
	return &SSHConnector{base: base}
}

func (c *SSHConnector) Connect(ctx context.Context, username, password string) (RemoteClient, error) {
	cfg := c.base
	cfg.Username = username
	cfg.Password = password

	client := ssh.NewClient(cfg)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Target is the configured host:port, for logging.
func (c *SSHConnector) Target() string {
	return net.JoinHostPort(c.base.Host, strconv.Itoa(c.base.Port))
}

func classifyConnectError(node string, err error) *utils.APIError {
	if errors.Is(err, ssh.ErrAuthFailed) {
		return utils.NewAuthError(err)
	}
	return utils.NewConnectionError(node, err)
}
