package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names registered by BindFlags.
const (
	FlagConfig      = "config"
	FlagDB          = "db"
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"
	FlagLogFile     = "log-file"
	FlagHost        = "host"
	FlagPort        = "port"
	FlagTLS         = "tls"
	FlagMetricsAddr = "metrics-addr"
)

// BindFlags registers the configuration flags on fs. Their defaults are
// placeholders; only flags set on the command line override other sources.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.String(FlagDB, "", "path to the local cache database")
	fs.String(FlagLogLevel, "", "log level: debug, info, warn, error")
	fs.String(FlagLogFormat, "", "log format: text or json")
	fs.String(FlagLogFile, "", "write logs to this file, rotated by size")
	fs.String(FlagHost, "", "server host (saved to settings)")
	fs.Int(FlagPort, 0, "server port (saved to settings)")
	fs.Bool(FlagTLS, false, "use https (saved to settings)")
	fs.String(FlagMetricsAddr, "", "serve prometheus metrics on this address")
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{FlagDB, &cfg.DBPath},
		{FlagLogLevel, &cfg.Log.Level},
		{FlagLogFormat, &cfg.Log.Format},
		{FlagLogFile, &cfg.Log.File},
		{FlagMetricsAddr, &cfg.MetricsAddr},
	}
	for _, s := range strs {
		if !fs.Changed(s.name) {
			continue
		}
		v, err := fs.GetString(s.name)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", s.name, err)
		}
		*s.dst = v
	}

	if fs.Changed(FlagHost) {
		v, err := fs.GetString(FlagHost)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", FlagHost, err)
		}
		cfg.Server.Host = &v
	}
	if fs.Changed(FlagPort) {
		v, err := fs.GetInt(FlagPort)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", FlagPort, err)
		}
		cfg.Server.Port = &v
	}
	if fs.Changed(FlagTLS) {
		v, err := fs.GetBool(FlagTLS)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", FlagTLS, err)
		}
		cfg.Server.TLS = &v
	}
	return nil
}
