package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"simlab-dashboard/internal/model"
	"simlab-dashboard/internal/pkg/logger"
	"simlab-dashboard/internal/pkg/scontrol"
	"simlab-dashboard/internal/session"
	"simlab-dashboard/pkg/utils"
)

type QueryState int

const (
	StateIdle QueryState = iota
	StateConnecting
	StateQuerying
	StateParsed
	StateFailed
)

func (s QueryState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateQuerying:
		return "Querying"
	case StateParsed:
		return "Parsed"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("QueryState(%d)", int(s))
	}
}

const maxStderrDetail = 512

// MetricsService runs the diagnostic command for one node per call and
// turns its output into NodeMetrics.
type MetricsService struct {
	connector   Connector
	catalog     *NodeCatalog
	scontrolBin string
	logger      *logger.Logger

	// observe is called on every state change; tests hook into it.
	observe func(node string, state QueryState)
}

func NewMetricsService(connector Connector, catalog *NodeCatalog, scontrolBin string, logger *logger.Logger) *MetricsService {
	return &MetricsService{
		connector:   connector,
		catalog:     catalog,
		scontrolBin: scontrolBin,
		logger:      logger,
	}
}

func (s *MetricsService) Nodes() []string {
	return s.catalog.Nodes()
}

// QueryNode opens a connection with the carrier's credentials, runs
// `scontrol show node` for node, parses the output and closes the
// connection again. Errors are *utils.APIError values.
func (s *MetricsService) QueryNode(ctx context.Context, node string, carrier *session.Carrier) (*model.NodeMetrics, error) {
	s.enter(node, StateIdle)

	metrics, err := s.run(ctx, node, carrier)
	if err != nil {
		var apiErr *utils.APIError
		kind := "unknown"
		if errors.As(err, &apiErr) {
			kind = apiErr.Kind
		}
		s.enter(node, StateFailed)
		s.logger.NodeQueryFailed(node, kind, err)
		return nil, err
	}

	s.enter(node, StateParsed)
	s.logger.NodeQuerySuccess(node)
	return metrics, nil
}

func (s *MetricsService) run(ctx context.Context, node string, carrier *session.Carrier) (*model.NodeMetrics, error) {
	if carrier == nil {
		return nil, utils.NewNoSessionError()
	}
	if err := s.catalog.Validate(node); err != nil {
		return nil, err
	}

	s.enter(node, StateConnecting)
	client, err := s.connector.Connect(ctx, carrier.Username(), carrier.Password())
	if err != nil {
		return nil, classifyConnectError(node, err)
	}
	defer client.Close()

	s.enter(node, StateQuerying)
	result, err := client.ExecuteCommand(ctx, s.command(node))
	if err != nil {
		return nil, utils.NewExecutionError(node, err)
	}
	if result.ExitCode != 0 {
		return nil, utils.NewExecutionError(node,
			fmt.Errorf("exit status %d: %s", result.ExitCode, truncate(result.Stderr, maxStderrDetail)))
	}
	if strings.TrimSpace(result.Stdout) == "" {
		return nil, utils.NewExecutionError(node, errors.New("command returned no output"))
	}

	return model.NewNodeMetrics(node, scontrol.Parse(result.Stdout)), nil
}

func (s *MetricsService) command(node string) string {
	return fmt.Sprintf("%s show node %s", s.scontrolBin, utils.ShellQuote(node))
}

func (s *MetricsService) enter(node string, state QueryState) {
	s.logger.NodeQuery(node, state.String())
	if s.observe != nil {
		s.observe(node, state)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
