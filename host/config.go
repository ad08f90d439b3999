package host

import (
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"github.com/proxyscript/script-sdk/go/hostfuncs"
	sdklog "github.com/proxyscript/script-sdk/go/log"
)

// EnvPrefix is prepended to every config key read from the environment,
// e.g. SCRIPTHOST_SEND_TIMEOUT for send.timeout.
const EnvPrefix = "SCRIPTHOST"

// Config is the host configuration.
type Config struct {
	ScopeVars map[string]any `mapstructure:"scope_vars"`
	Log       LogConfig      `mapstructure:"log"`
	Proxy     ProxyConfig    `mapstructure:"proxy"`
	Findings  FindingsConfig `mapstructure:"findings"`
	Server    ServerConfig   `mapstructure:"server"`
	ScopeFile string         `mapstructure:"scope_file"`
	Send      SendConfig     `mapstructure:"send"`
}

// LogConfig selects the host log output.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SendConfig bounds requests sent on behalf of scripts.
type SendConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	InsecureTLS  bool          `mapstructure:"insecure_tls"`
}

// ProxyConfig names the upstream proxy requests are routed through.
type ProxyConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// FindingsConfig selects the findings store.
type FindingsConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite memory"`
	Path   string `mapstructure:"path" validate:"required_if=Driver sqlite"`
}

// ServerConfig configures the remote bridge listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// ConfigOption adjusts the defaults of a Config.
type ConfigOption func(*Config)

// WithLogLevel sets the default log level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		if level != "" {
			c.Log.Level = level
		}
	}
}

// WithFindings sets the default findings store.
func WithFindings(driver, path string) ConfigOption {
	return func(c *Config) {
		if driver != "" {
			c.Findings.Driver = driver
		}
		c.Findings.Path = path
	}
}

// WithServerAddr sets the default listen address of the bridge.
func WithServerAddr(addr string) ConfigOption {
	return func(c *Config) {
		if addr != "" {
			c.Server.Addr = addr
		}
	}
}

// WithSendTimeout sets the default send timeout.
func WithSendTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.Send.Timeout = d
		}
	}
}

// DefaultConfig returns the built-in defaults with opts applied.
func DefaultConfig(opts ...ConfigOption) *Config {
	cfg := &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Send:     SendConfig{Timeout: 30 * time.Second, MaxBodyBytes: 10 * 1024 * 1024},
		Findings: FindingsConfig{Driver: "sqlite", Path: "findings.db"},
		Server:   ServerConfig{Addr: "127.0.0.1:8420"},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadConfig reads the config file at path (optional) and SCRIPTHOST_*
// environment variables on top of the defaults, then validates the result.
func LoadConfig(v *viper.Viper, path string, opts ...ConfigOption) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	def := DefaultConfig(opts...)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("send.timeout", def.Send.Timeout)
	v.SetDefault("send.max_body_bytes", def.Send.MaxBodyBytes)
	v.SetDefault("send.insecure_tls", def.Send.InsecureTLS)
	v.SetDefault("proxy.url", def.Proxy.URL)
	v.SetDefault("scope_file", def.ScopeFile)
	v.SetDefault("findings.driver", def.Findings.Driver)
	v.SetDefault("findings.path", def.Findings.Path)
	v.SetDefault("server.addr", def.Server.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the proxy scheme.
func (c *Config) Validate() error {
	if err := sdk.ValidateStruct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Proxy.URL != "" {
		if _, err := c.proxyURL(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

func (c *Config) proxyURL() (*url.URL, error) {
	u, err := url.Parse(c.Proxy.URL)
	if err != nil {
		return nil, &errors.ValidationError{Field: "proxy.url", Err: err}
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
		return u, nil
	default:
		return nil, &errors.ValidationError{Field: "proxy.url", Err: stdErrors.New("scheme must be http, https, socks5 or socks5h")}
	}
}

// SendOptions translates the send and proxy sections into hostfuncs options.
func (c *Config) SendOptions() ([]hostfuncs.SendOption, error) {
	opts := []hostfuncs.SendOption{
		hostfuncs.WithSendTimeout(c.Send.Timeout),
		hostfuncs.WithSendMaxBodySize(c.Send.MaxBodyBytes),
		hostfuncs.WithSendInsecureTLS(c.Send.InsecureTLS),
	}
	if c.Proxy.URL != "" {
		u, err := c.proxyURL()
		if err != nil {
			return nil, err
		}
		opts = append(opts, hostfuncs.WithSendProxy(u))
	}
	return opts, nil
}

// NewLogger builds the host logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: sdklog.ParseLevel(c.Log.Level)}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
