package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultSeedsFile is the default name of the file listing the seed nodes.
	DefaultSeedsFile = "seeds.json"

	// DefaultConfigFile is the default name of the configuration file read by
	// the CLI, without extension.
	DefaultConfigFile = "radix"
)

// Default configuration values.
const (
	DefaultLogLevel                   = "debug"
	DefaultServiceAddr                = "127.0.0.1:8000"
	DefaultUseTLS                     = false
	DefaultUniverseMagic              = 0
	DefaultQuarantineWindow           = net.DefaultQuarantineWindow
	DefaultDialTimeout                = net.DefaultDialTimeout
	DefaultRequestTimeout             = 10 * time.Second
	DefaultFindNodeTimeout            = 30 * time.Second
	DefaultMaxSimultaneousConnections = 2
	DefaultNodeInfoRetries            = 3
	DefaultPeerSelector               = "first"
	DefaultFallback                   = "any"
	DefaultStore                      = false
)

// Config contains all the configuration properties of a Radix client.
type Config struct {
	// DataDir is the top-level directory containing Radix configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// Seeds are host:port addresses of the nodes used to bootstrap discovery.
	// When empty, seeds are read from seeds.json in DataDir.
	Seeds []string `mapstructure:"seeds"`

	// UseTLS selects wss over ws for every node.
	UseTLS bool `mapstructure:"tls"`

	// UniverseMagic, when not zero, excludes the nodes of other universes.
	UniverseMagic int64 `mapstructure:"magic"`

	// QuarantineWindow is how long a failed node is not reconnected.
	QuarantineWindow time.Duration `mapstructure:"quarantine"`

	// DialTimeout bounds the WebSocket handshake.
	DialTimeout time.Duration `mapstructure:"dial-timeout"`

	// RequestTimeout bounds every RPC call.
	RequestTimeout time.Duration `mapstructure:"timeout"`

	// FindNodeTimeout is how long a node search runs before the fallback
	// decides.
	FindNodeTimeout time.Duration `mapstructure:"find-node-timeout"`

	// MaxSimultaneousConnections caps the nodes connected at the same time by
	// a single node search.
	MaxSimultaneousConnections int `mapstructure:"max-connections"`

	// NodeInfoRetries is the number of attempts at fetching the info and
	// universe of a node.
	NodeInfoRetries int `mapstructure:"node-info-retries"`

	// PeerSelector is the strategy used to pick among suitable nodes: "first"
	// or "random".
	PeerSelector string `mapstructure:"selector"`

	// Fallback decides when no suitable node was found in time: "any" picks
	// any ready node, "fail" gives up.
	Fallback string `mapstructure:"fallback"`

	// Store activates persistant storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:                    DefaultDataDir(),
		LogLevel:                   DefaultLogLevel,
		UseTLS:                     DefaultUseTLS,
		UniverseMagic:              DefaultUniverseMagic,
		QuarantineWindow:           DefaultQuarantineWindow,
		DialTimeout:                DefaultDialTimeout,
		RequestTimeout:             DefaultRequestTimeout,
		FindNodeTimeout:            DefaultFindNodeTimeout,
		MaxSimultaneousConnections: DefaultMaxSimultaneousConnections,
		NodeInfoRetries:            DefaultNodeInfoRetries,
		PeerSelector:               DefaultPeerSelector,
		Fallback:                   DefaultFallback,
		Store:                      DefaultStore,
		DatabaseDir:                DefaultDatabaseDir(),
		ServiceAddr:                DefaultServiceAddr,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level Radix directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely set
// it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// SeedsFile returns the full path of the seeds file.
func (c *Config) SeedsFile() string {
	return filepath.Join(c.DataDir, DefaultSeedsFile)
}

// WebSocketConfig returns the settings of node connections.
func (c *Config) WebSocketConfig() net.WebSocketConfig {
	conf := net.DefaultWebSocketConfig()
	if c.QuarantineWindow > 0 {
		conf.QuarantineWindow = c.QuarantineWindow
	}
	if c.DialTimeout > 0 {
		conf.DialTimeout = c.DialTimeout
	}
	if c.RequestTimeout > 0 {
		conf.WriteTimeout = c.RequestTimeout
	}
	return conf
}

// Logger returns a formatted logrus Entry, with prefix set to "radix".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "radix")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level Radix config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Radix")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Radix")
		} else {
			return filepath.Join(home, ".radix")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
