package service

import (
	"context"

	"go.uber.org/zap"
	"simlab-dashboard/internal/pkg/logger"
	"simlab-dashboard/pkg/utils"
)

type SSHService struct {
	connector Connector
	target    string
	logger    *logger.Logger
}

func NewSSHService(connector Connector, target string, logger *logger.Logger) *SSHService {
	return &SSHService{
		connector: connector,
		target:    target,
		logger:    logger,
	}
}

// Authenticate opens and immediately closes a connection with the given
// credentials. It reports false with an *utils.APIError of kind
// AuthenticationFailed or ConnectionFailed when the login is not accepted.
func (s *SSHService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return false, utils.NewValidationError("username", err)
	}
	if password == "" {
		return false, utils.NewValidationError("password", "empty")
	}

	s.logger.SSHConnectionAttempt("authenticate", s.target)

	client, err := s.connector.Connect(ctx, username, password)
	if err != nil {
		apiErr := classifyConnectError("", err)
		s.logger.Warn("authentication failed",
			zap.String("target", s.target),
			zap.String("kind", apiErr.Kind),
			zap.Error(err),
		)
		return false, apiErr
	}

	if err := client.Close(); err != nil {
		s.logger.Debug("closing probe connection", zap.Error(err))
	}

	s.logger.Info("authentication succeeded", zap.String("target", s.target))
	return true, nil
}
