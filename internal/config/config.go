package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"simlab-dashboard/internal/pkg/ssh"
	"simlab-dashboard/pkg/utils"
)

type Config struct {
	Server  ServerConfig
	Cluster ClusterConfig
	SSH     SSHConfig
	Session SessionConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Addr         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins []string
}

type ClusterConfig struct {
	Host        string
	Port        int
	Nodes       []string
	ScontrolBin string
}

type SSHConfig struct {
	ConnectTimeout        time.Duration
	CommandTimeout        time.Duration
	KnownHostsFile        string
	InsecureIgnoreHostKey bool
	ConfigFile            string
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

// DefaultNodes is the node set of the SimLab cluster.
func DefaultNodes() []string {
	nodes := make([]string, 0, 18)
	for i := 1; i <= 17; i++ {
		nodes = append(nodes, fmt.Sprintf("node%02d", i))
	}
	return append(nodes, "visu01")
}

// LoadConfig reads configuration from the environment, after loading a .env
// file when one exists.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:         getEnvAsString("SERVER_ADDR", "127.0.0.1"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 60*time.Second),
			AllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		},
		Cluster: ClusterConfig{
			Host:        getEnvAsString("CLUSTER_HOST", "simlab-cluster.um6p.ma"),
			Port:        getEnvAsInt("CLUSTER_PORT", 22),
			Nodes:       getEnvAsList("CLUSTER_NODES", DefaultNodes()),
			ScontrolBin: getEnvAsString("SCONTROL_BIN", "scontrol"),
		},
		SSH: SSHConfig{
			ConnectTimeout:        getEnvAsDuration("SSH_CONNECT_TIMEOUT", 10*time.Second),
			CommandTimeout:        getEnvAsDuration("SSH_COMMAND_TIMEOUT", 30*time.Second),
			KnownHostsFile:        getEnvAsString("SSH_KNOWN_HOSTS", defaultKnownHosts()),
			InsecureIgnoreHostKey: getEnvAsBool("SSH_INSECURE_IGNORE_HOST_KEY", false),
			ConfigFile:            getEnvAsString("SSH_CONFIG_FILE", ""),
		},
		Session: SessionConfig{
			Secret:       getEnvAsString("SESSION_SECRET", ""),
			TTL:          getEnvAsDuration("SESSION_TTL", 8*time.Hour),
			CookieName:   getEnvAsString("SESSION_COOKIE", "simlab_session"),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", true),
		},
		Logging: LoggingConfig{
			Level:  getEnvAsString("LOG_LEVEL", "info"),
			Format: getEnvAsString("LOG_FORMAT", "text"),
		},
	}
}

func (c *Config) Validate() error {
	var errs []error

	if err := utils.ValidatePort(c.Server.Port); err != nil {
		errs = append(errs, fmt.Errorf("SERVER_PORT: %w", err))
	}
	if c.Cluster.Host == "" {
		errs = append(errs, errors.New("CLUSTER_HOST must not be empty"))
	}
	if err := utils.ValidatePort(c.Cluster.Port); err != nil {
		errs = append(errs, fmt.Errorf("CLUSTER_PORT: %w", err))
	}
	if len(c.Cluster.Nodes) == 0 {
		errs = append(errs, errors.New("CLUSTER_NODES must list at least one node"))
	}
	for _, n := range c.Cluster.Nodes {
		if err := utils.ValidateNodeName(n); err != nil {
			errs = append(errs, fmt.Errorf("CLUSTER_NODES: %w", err))
		}
	}
	if c.Cluster.ScontrolBin == "" || strings.ContainsAny(c.Cluster.ScontrolBin, " ;&|`$()<>\"'") {
		errs = append(errs, fmt.Errorf("SCONTROL_BIN is not a plain path: %q", c.Cluster.ScontrolBin))
	}
	if c.SSH.ConnectTimeout <= 0 || c.SSH.CommandTimeout <= 0 {
		errs = append(errs, errors.New("SSH timeouts must be positive"))
	}
	if !c.SSH.InsecureIgnoreHostKey && c.SSH.KnownHostsFile == "" {
		errs = append(errs, errors.New("SSH_KNOWN_HOSTS is required unless SSH_INSECURE_IGNORE_HOST_KEY is set"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE must not be empty"))
	}

	return errors.Join(errs...)
}

// RemoteTarget is the SSH configuration shared by every query, without
// credentials.
func (c *Config) RemoteTarget() ssh.SSHConfig {
	return ssh.SSHConfig{
		Host:                  c.Cluster.Host,
		Port:                  c.Cluster.Port,
		ConnectTimeout:        c.SSH.ConnectTimeout,
		CommandTimeout:        c.SSH.CommandTimeout,
		KnownHostsFile:        c.SSH.KnownHostsFile,
		InsecureIgnoreHostKey: c.SSH.InsecureIgnoreHostKey,
		ConfigFile:            c.SSH.ConfigFile,
	}
}

func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}

func defaultKnownHosts() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("45s") or bare seconds ("45").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
