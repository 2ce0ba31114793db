package commands

import (
	"os"
	"path/filepath"

	"github.com/radixdlt/radix-go/src/config"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//CLIConfig contains configuration for the Run and Watch commands
type CLIConfig struct {
	Radix  config.Config `mapstructure:",squash"`
	LogDir string        `mapstructure:"log-dir"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Radix: *config.NewDefaultConfig(),
	}
}

//AddClientFlags adds the flags shared by the commands that start a client
func AddClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Radix.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Radix.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-dir", _config.LogDir, "Directory of the info and debug log files")

	// Network
	cmd.Flags().StringSlice("seeds", _config.Radix.Seeds, "Seed nodes host:port, defaults to seeds.json in datadir")
	cmd.Flags().Bool("tls", _config.Radix.UseTLS, "Connect to nodes with wss")
	cmd.Flags().Int64("magic", _config.Radix.UniverseMagic, "Only use nodes of the universe with this magic")
	cmd.Flags().Duration("quarantine", _config.Radix.QuarantineWindow, "Time before a failed node is retried")
	cmd.Flags().Duration("dial-timeout", _config.Radix.DialTimeout, "WebSocket handshake timeout")
	cmd.Flags().DurationP("timeout", "t", _config.Radix.RequestTimeout, "RPC timeout")
	cmd.Flags().Duration("find-node-timeout", _config.Radix.FindNodeTimeout, "Node search timeout")
	cmd.Flags().Int("max-connections", _config.Radix.MaxSimultaneousConnections, "Nodes connected at once by a node search")
	cmd.Flags().Int("node-info-retries", _config.Radix.NodeInfoRetries, "Attempts at fetching node info")
	cmd.Flags().String("selector", _config.Radix.PeerSelector, "first, random")
	cmd.Flags().String("fallback", _config.Radix.Fallback, "any, fail")

	// Service
	cmd.Flags().Bool("no-service", _config.Radix.NoService, "Disable HTTP service")
	cmd.Flags().StringP("service-listen", "s", _config.Radix.ServiceAddr, "Listen IP:Port for HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Radix.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.Radix.DatabaseDir, "Dabatabase directory")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.Radix.SetDataDir(_config.Radix.DataDir)

	if _config.LogDir != "" {
		addFileHooks(_config.Radix.Logger().Logger, _config.LogDir)
	}

	logFields := logrus.Fields{
		"radix.DataDir":                    _config.Radix.DataDir,
		"radix.LogLevel":                   _config.Radix.LogLevel,
		"radix.Seeds":                      _config.Radix.Seeds,
		"radix.UseTLS":                     _config.Radix.UseTLS,
		"radix.UniverseMagic":              _config.Radix.UniverseMagic,
		"radix.QuarantineWindow":           _config.Radix.QuarantineWindow,
		"radix.RequestTimeout":             _config.Radix.RequestTimeout,
		"radix.FindNodeTimeout":            _config.Radix.FindNodeTimeout,
		"radix.MaxSimultaneousConnections": _config.Radix.MaxSimultaneousConnections,
		"radix.PeerSelector":               _config.Radix.PeerSelector,
		"radix.Fallback":                   _config.Radix.Fallback,
		"radix.ServiceAddr":                _config.Radix.ServiceAddr,
		"radix.NoService":                  _config.Radix.NoService,
		"radix.Store":                      _config.Radix.Store,
	}

	if _config.Radix.Store {
		logFields["radix.DatabaseDir"] = _config.Radix.DatabaseDir
	}

	_config.Radix.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/radix.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigFile)
	viper.AddConfigPath(_config.Radix.DataDir)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Radix.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Radix.Logger().Debugf("No config file found in: %s", _config.Radix.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}

// addFileHooks writes info and debug logs to radix_info.log and
// radix_debug.log in dir.
func addFileHooks(logger *logrus.Logger, dir string) {
	pathMap := lfshook.PathMap{}

	for level, name := range map[logrus.Level]string{
		logrus.InfoLevel:  "radix_info.log",
		logrus.DebugLevel: "radix_debug.log",
	} {
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logger.Infof("Failed to open %s, using default stderr", path)
			continue
		}
		f.Close()

		pathMap[level] = path
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))
}
