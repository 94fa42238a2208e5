package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogPretty         bool          `mapstructure:"log_pretty" yaml:"log_pretty"`
	JWTSecret         string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer         string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience       string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL            time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
	MessageMaxLength  int           `mapstructure:"message_max_length" yaml:"message_max_length"`
	AuthRateLimit     int           `mapstructure:"auth_rate_limit" yaml:"auth_rate_limit"`
	AuthRateWindow    time.Duration `mapstructure:"auth_rate_window" yaml:"auth_rate_window"`
	TrustProxyHeaders bool          `mapstructure:"trust_proxy_headers" yaml:"trust_proxy_headers"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		DatabasePath:      "echoline.db",
		LogLevel:          "info",
		LogPretty:         true,
		JWTSecret:         "",
		JWTIssuer:         "echoline",
		JWTAudience:       "echoline-clients",
		JWTTTL:            24 * time.Hour,
		MessageMaxLength:  4096,
		AuthRateLimit:     30,
		AuthRateWindow:    time.Minute,
		TrustProxyHeaders: false,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}
