package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

// NewLogger builds a zap logger. format "json" selects the production
// encoder; anything else gets the console encoder.
func NewLogger(level, format string) (*Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func (l *Logger) SSHConnectionAttempt(purpose, target string) {
	l.Info("SSH connection attempt",
		zap.String("type", "ssh_connection"),
		zap.String("purpose", purpose),
		zap.String("target", target),
	)
}

func (l *Logger) NodeQuery(node, state string) {
	l.Debug("node query transition",
		zap.String("type", "node_query"),
		zap.String("node", node),
		zap.String("state", state),
	)
}

func (l *Logger) NodeQueryFailed(node, kind string, err error) {
	l.Warn("node query failed",
		zap.String("type", "node_query"),
		zap.String("node", node),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

func (l *Logger) NodeQuerySuccess(node string) {
	l.Info("node query succeeded",
		zap.String("type", "node_query"),
		zap.String("node", node),
	)
}
