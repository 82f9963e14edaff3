package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"simlab-dashboard/internal/pkg/logger"
	"simlab-dashboard/internal/pkg/ssh"
	"simlab-dashboard/internal/pkg/ssh/sshtest"
	"simlab-dashboard/pkg/utils"
)

func newTestSSHService(t *testing.T) (*SSHService, *sshtest.Server) {
	srv := sshtest.NewServer(t, map[string]string{"alice": "s3cret"}, func(string) (string, string, int) {
		return "", "", 0
	})
	conn := NewSSHConnector(ssh.SSHConfig{
		Host:                  srv.Host,
		Port:                  srv.Port,
		ConnectTimeout:        5 * time.Second,
		InsecureIgnoreHostKey: true,
	})
	return NewSSHService(conn, conn.Target(), logger.Nop()), srv
}

func TestAuthenticateValidCredentials(t *testing.T) {
	svc, srv := newTestSSHService(t)

	ok, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, srv.Logins())
	assert.Empty(t, srv.Commands())
}

func TestAuthenticateInvalidPassword(t *testing.T) {
	svc, _ := newTestSSHService(t)

	ok, err := svc.Authenticate(context.Background(), "alice", "wrong")
	assert.False(t, ok)
	assert.True(t, utils.IsKind(err, utils.KindAuthenticationFailed))
	assert.Equal(t, "Incorrect username or password", err.Error())
}

func TestAuthenticateUnreachableHost(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	conn := NewSSHConnector(ssh.SSHConfig{
		Host:                  "127.0.0.1",
		Port:                  port,
		ConnectTimeout:        time.Second,
		InsecureIgnoreHostKey: true,
	})
	svc := NewSSHService(conn, conn.Target(), logger.Nop())

	ok, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	assert.False(t, ok)
	assert.True(t, utils.IsKind(err, utils.KindConnectionFailed))
}

func TestAuthenticateRejectsEmptyInputWithoutDialing(t *testing.T) {
	conn := &MockConnector{}
	svc := NewSSHService(conn, "test", logger.Nop())

	ok, err := svc.Authenticate(context.Background(), "", "pw")
	assert.False(t, ok)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	ok, err = svc.Authenticate(context.Background(), "alice", "")
	assert.False(t, ok)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	assert.Zero(t, conn.Calls())
}

func TestAuthenticateClosesProbeConnection(t *testing.T) {
	client := &MockClient{}
	conn := &MockConnector{ConnectFn: func(context.Context, string, string) (RemoteClient, error) {
		return client, nil
	}}
	svc := NewSSHService(conn, "test", logger.Nop())

	ok, err := svc.Authenticate(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, client.Closed)
	assert.Empty(t, client.Commands)
}

func TestNodeCatalog(t *testing.T) {
	c := NewNodeCatalog([]string{"node01", "node02", "node01"})
	assert.Equal(t, []string{"node01", "node02"}, c.Nodes())
	assert.NoError(t, c.Validate("node02"))
	assert.True(t, utils.IsKind(c.Validate("node03"), utils.KindUnknownNode))
	assert.True(t, utils.IsKind(c.Validate("node01 && id"), utils.KindUnknownNode))

	nodes := c.Nodes()
	nodes[0] = "mutated"
	assert.Equal(t, "node01", c.Nodes()[0])
}
