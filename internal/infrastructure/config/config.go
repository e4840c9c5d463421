package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the inference service.
type Config struct {
	HTTPPort         string   `yaml:"http_port"`
	GRPCPort         string   `yaml:"grpc_port"`
	TransformPath    string   `yaml:"transform_path"`
	ModelPath        string   `yaml:"model_path"`
	StrictValidation bool     `yaml:"strict_validation"`
	LogLevel         string   `yaml:"log_level"`
	LogFormat        string   `yaml:"log_format"`
	Environment      string   `yaml:"environment"`
	DatabaseURL      string   `yaml:"database_url"`
	MigrationsDir    string   `yaml:"migrations_dir"`
	KafkaBrokers     []string `yaml:"kafka_brokers"`
	KafkaTopic       string   `yaml:"kafka_topic"`
	OTLPEndpoint     string   `yaml:"otlp_endpoint"`
	JWTSecret        string   `yaml:"jwt_secret"`
	JWTPublicKeyFile string   `yaml:"jwt_public_key_file"`
	JWTIssuer        string   `yaml:"jwt_issuer"`
	GRPCTLSCertFile  string   `yaml:"grpc_tls_cert_file"`
	GRPCTLSKeyFile   string   `yaml:"grpc_tls_key_file"`
	GRPCReflection   bool     `yaml:"grpc_reflection"`
	RateLimitRPS     float64  `yaml:"rate_limit_rps"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		HTTPPort:      "8000",
		GRPCPort:      "9000",
		TransformPath: "models/preprocessor.json",
		ModelPath:     "models/stroke_dnn.json",
		LogLevel:      "info",
		LogFormat:     "json",
		Environment:   "development",
		MigrationsDir: "migrations",
		KafkaTopic:    "strokeguard.inference.events",
		JWTIssuer:     "strokeguard",
		RateLimitRPS:  50,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in that order. Environment
// variables win.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.GRPCPort = getEnv("GRPC_PORT", c.GRPCPort)
	c.TransformPath = getEnv("TRANSFORM_PATH", c.TransformPath)
	c.ModelPath = getEnv("MODEL_PATH", c.ModelPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.MigrationsDir = getEnv("MIGRATIONS_DIR", c.MigrationsDir)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTPublicKeyFile = getEnv("JWT_PUBLIC_KEY_FILE", c.JWTPublicKeyFile)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.GRPCTLSCertFile = getEnv("GRPC_TLS_CERT_FILE", c.GRPCTLSCertFile)
	c.GRPCTLSKeyFile = getEnv("GRPC_TLS_KEY_FILE", c.GRPCTLSKeyFile)

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		c.KafkaBrokers = splitList(v)
	}

	var err error
	if c.StrictValidation, err = getBool("STRICT_VALIDATION", c.StrictValidation); err != nil {
		return err
	}
	if c.GRPCReflection, err = getBool("GRPC_REFLECTION", c.GRPCReflection); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		rps, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fmt.Errorf("config: RATE_LIMIT_RPS: %w", perr)
		}
		c.RateLimitRPS = rps
	}
	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// AuthEnabled reports whether bearer tokens are required on predict.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" || c.JWTPublicKeyFile != ""
}

// TLSEnabled reports whether the gRPC listener serves TLS.
func (c *Config) TLSEnabled() bool {
	return c.GRPCTLSCertFile != "" && c.GRPCTLSKeyFile != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
