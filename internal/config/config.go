// Package config loads the startup configuration from a TOML file,
// environment, and command-line flags. Flags override file values. The
// resulting Config is immutable for the lifetime of the process.
package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/disktempd/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort         = 7634
	DefaultPollInterval = 60
	DefaultReadTimeout  = 10
	DefaultSeparator    = "|"
	DefaultUnit         = "C"
	DefaultLogLevel     = "warning"

	configName = "disktempd.conf"
	configDir  = "/etc"
	// Environment variable pointing at an explicit config file,
	// overriding the /etc lookup.
	configEnv = "DISKTEMPD_CONFIG"
)

type Config struct {
	// Devices are the positional arguments, in the order given. That
	// order determines the daemon's reply field ordering.
	Devices []string `mapstructure:"-"`

	Daemon       bool   `mapstructure:"daemon"`
	Foreground   bool   `mapstructure:"foreground"`
	Listen       string `mapstructure:"listen"`
	Port         int    `mapstructure:"port"`
	Separator    string `mapstructure:"separator"`
	Numeric      bool   `mapstructure:"numeric"`
	Quiet        bool   `mapstructure:"quiet"`
	Unit         string `mapstructure:"unit"`
	WakeUp       bool   `mapstructure:"wake_up"`
	PollInterval int    `mapstructure:"poll_interval"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	IPv4         bool   `mapstructure:"ipv4"`
	IPv6         bool   `mapstructure:"ipv6"`
	LogLevel     string `mapstructure:"log_level"`
}

// flagKeys maps flag names to config file keys where they differ.
var flagKeys = map[string]string{
	"min-interval": "poll_interval",
	"read-timeout": "read_timeout",
	"wake-up":      "wake_up",
	"log-level":    "log_level",
}

func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("disktempd", pflag.ContinueOnError)
	fs.BoolP("daemon", "d", false, "Run in TCP daemon mode")
	fs.BoolP("foreground", "F", false, "Stay in foreground in daemon mode")
	fs.StringP("listen", "l", "", "Listen address in daemon mode")
	fs.IntP("port", "p", DefaultPort, "TCP port in daemon mode")
	fs.StringP("separator", "s", DefaultSeparator, "Single-character field separator in daemon mode")
	fs.BoolP("numeric", "n", false, "Print only numeric temperature in direct mode")
	fs.BoolP("quiet", "q", false, "In numeric mode, print 0 for unreadable drives")
	fs.StringP("unit", "u", DefaultUnit, "Output unit (C or F)")
	fs.BoolP("wake-up", "w", false, "Allow smartctl to wake sleeping drives")
	fs.Int("min-interval", DefaultPollInterval, "Seconds between drive polls in daemon mode")
	fs.Int("read-timeout", DefaultReadTimeout, "Per-device smartctl timeout in seconds")
	fs.BoolP("ipv4", "4", false, "Use IPv4 sockets")
	fs.BoolP("ipv6", "6", false, "Use IPv6 sockets")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")

	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("listen", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("separator", DefaultSeparator)
	v.SetDefault("unit", DefaultUnit)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("read_timeout", DefaultReadTimeout)
	v.SetDefault("log_level", DefaultLogLevel)

	if path := os.Getenv(configEnv); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err).
					WithMessage("Failed to read config file")
			}
		}
	}

	// Flags the user actually set override file values.
	fs.Visit(func(f *pflag.Flag) {
		key := f.Name
		if mapped, ok := flagKeys[f.Name]; ok {
			key = mapped
		}

		switch f.Value.Type() {
		case "bool":
			val, _ := fs.GetBool(f.Name)
			v.Set(key, val)
		case "int":
			val, _ := fs.GetInt(f.Name)
			v.Set(key, val)
		default:
			v.Set(key, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	config.Unit = strings.ToUpper(config.Unit)
	config.Devices = fs.Args()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded configuration before anything runs.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if len(c.Devices) == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "at least one device is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errFactory.WithData(errors.ErrInvalidConfig, map[string]any{"port": c.Port})
	}
	if len(c.Separator) != 1 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "separator must be exactly one character")
	}
	if c.Unit != "C" && c.Unit != "F" {
		return errFactory.WithData(errors.ErrInvalidConfig, map[string]any{"unit": c.Unit})
	}
	if c.PollInterval < 1 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "min-interval must be >= 1")
	}
	if c.ReadTimeout < 1 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "read-timeout must be >= 1")
	}
	if c.IPv4 && c.IPv6 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "choose either ipv4 or ipv6, not both")
	}
	if c.Foreground && !c.Daemon {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "foreground requires daemon mode")
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "warn", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// Network returns the listen network for net.Listen based on the
// address-family selection.
func (c *Config) Network() string {
	switch {
	case c.IPv4:
		return "tcp4"
	case c.IPv6:
		return "tcp6"
	default:
		return "tcp"
	}
}
