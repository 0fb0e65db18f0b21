package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DefaultPort = 8080

	App1Greeting    = "Hello from App1"
	App2Greeting    = "Hello from App2"
	UnicornGreeting = "Thanks for buying a Unicorn 🦄"

	// undefinedHost is what the relay targets when APP_2 is missing.
	undefinedHost = "undefined"
)

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

func (pC PostgresConfig) Enabled() bool {
	return pC.Host != ""
}

type Config struct {
	Port      int            `mapstructure:"-"`
	App2      string         `mapstructure:"app2"`
	Greeting  string         `mapstructure:"greeting"`
	Variant   string         `mapstructure:"variant"`
	LogLevel  string         `mapstructure:"log_level"`
	LogFormat string         `mapstructure:"log_format"`
	Postgres  PostgresConfig `mapstructure:"psql"`

	// RejectedPort holds a non-empty Port value that was not a usable port.
	RejectedPort string `mapstructure:"-"`
}

// Load reads the process environment. Env names are bound verbatim, so
// "Port" is looked up with that exact case.
func Load() (*Config, error) {
	v := viper.New()

	bindings := map[string]string{
		"port":          "Port",
		"app2":          "APP_2",
		"greeting":      "GREETING",
		"variant":       "APP2_VARIANT",
		"log_level":     "LOG_LEVEL",
		"log_format":    "LOG_FORMAT",
		"psql.host":     "PSQL_HOST",
		"psql.port":     "PSQL_PORT",
		"psql.user":     "PSQL_USER",
		"psql.password": "PSQL_PASS",
		"psql.database": "PSQL_DB",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("psql.port", "5432")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.Port, cfg.RejectedPort = parsePort(v.GetString("port"))
	return cfg, nil
}

func parsePort(raw string) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPort, ""
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return DefaultPort, raw
	}
	return port, ""
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// TargetURL is the relay destination built from APP_2.
func (c *Config) TargetURL() string {
	host := c.App2
	if host == "" {
		host = undefinedHost
	}
	return "http://" + host
}

// App2Greeting resolves the greeting app2 answers with.
func (c *Config) App2Greeting() string {
	if c.Greeting != "" {
		return c.Greeting
	}
	if strings.EqualFold(c.Variant, "unicorn") {
		return UnicornGreeting
	}
	return App2Greeting
}

func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	logger.SetLevel(level)

	switch strings.ToLower(c.LogFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("unknown log format %q", c.LogFormat)
	}

	return logger, nil
}
