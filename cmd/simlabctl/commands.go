package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"simlab-dashboard/internal/config"
	"simlab-dashboard/internal/pkg/logger"
	"simlab-dashboard/internal/service"
	"simlab-dashboard/internal/session"
)

const passwordEnv = "SIMLAB_PASSWORD"

type options struct {
	username string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "simlabctl",
		Short: "Query SimLab cluster nodes from the command line",
		Long: `simlabctl uses the same configuration and services as the dashboard
server to check credentials and read node allocation over SSH.

The password is read from the terminal, or from SIMLAB_PASSWORD when set.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.username, "user", "u", os.Getenv("USER"), "cluster username")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log SSH activity to stderr")

	root.AddCommand(newProbeCmd(opts), newQueryCmd(opts), newNodesCmd())
	return root
}

func newProbeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the cluster accepts your credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			defer app.logger.Sync()

			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if _, err := app.ssh.Authenticate(cmd.Context(), opts.username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credentials accepted by %s\n", app.target)
			return nil
		},
	}
}

func newQueryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <node>",
		Short: "Print the allocation of one node as JSON",
		Example: `  simlabctl query node01
  SIMLAB_PASSWORD=... simlabctl -u alice query visu01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			defer app.logger.Sync()

			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			metrics, err := app.metrics.QueryNode(cmd.Context(), args[0], session.NewCarrier(opts.username, password))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(metrics)
		},
	}
}

func newNodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the configured nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfig()
			for _, n := range service.NewNodeCatalog(cfg.Cluster.Nodes).Nodes() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

type app struct {
	target  string
	logger  *logger.Logger
	ssh     *service.SSHService
	metrics *service.MetricsService
}

func newApp(opts *options) (*app, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l := logger.Nop()
	if opts.verbose {
		var err error
		if l, err = logger.NewLogger("debug", cfg.Logging.Format); err != nil {
			return nil, err
		}
	}

	connector := service.NewSSHConnector(cfg.RemoteTarget())
	catalog := service.NewNodeCatalog(cfg.Cluster.Nodes)
	return &app{
		target:  connector.Target(),
		logger:  l,
		ssh:     service.NewSSHService(connector, connector.Target(), l),
		metrics: service.NewMetricsService(connector, catalog, cfg.Cluster.ScontrolBin, l),
	}, nil
}

// readPassword prefers SIMLAB_PASSWORD, then prompts without echo when in
// is a terminal, and otherwise reads one line from in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

