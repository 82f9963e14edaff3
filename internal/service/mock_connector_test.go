package service

import (
	"context"
	"sync"

	"simlab-dashboard/internal/pkg/ssh"
)

// MockConnector records calls and hands out MockClients.
type MockConnector struct {
	ConnectFn func(ctx context.Context, username, password string) (RemoteClient, error)

	mu    sync.Mutex
	calls int
}

func (m *MockConnector) Connect(ctx context.Context, username, password string) (RemoteClient, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ConnectFn != nil {
		return m.ConnectFn(ctx, username, password)
	}
	return &MockClient{}, nil
}

func (m *MockConnector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type MockClient struct {
	ExecuteFn func(ctx context.Context, cmd string) (*ssh.CommandResult, error)

	Commands []string
	Closed   int
}

func (m *MockClient) ExecuteCommand(ctx context.Context, cmd string) (*ssh.CommandResult, error) {
	m.Commands = append(m.Commands, cmd)
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, cmd)
	}
	return &ssh.CommandResult{}, nil
}

func (m *MockClient) Close() error {
	m.Closed++
	return nil
}
