package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config holds server settings read from the environment
type Config struct {
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret         string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	JWTTTL            time.Duration `env:"JWT_TTL" envDefault:"24h"`
	ServerPort        string        `env:"SERVER_PORT" envDefault:"8080"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	InitialAdminEmail string        `env:"INITIAL_ADMIN_EMAIL"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"10"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"text"`
	DBConnectRetries  int           `env:"DB_CONNECT_RETRIES" envDefault:"5"`
	DBRetryInterval   time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"5s"`
}

// Load reads the server configuration from the process environment
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.DBConnectRetries < 1 {
		return errors.New("DB_CONNECT_RETRIES must be at least 1")
	}

	origins := c.AllowedOrigins[:0]
	for _, o := range c.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return errors.New("ALLOWED_ORIGINS must list explicit origins, wildcard is not accepted")
		}
		if o == "" {
			continue
		}
		if err := checkOrigin(o); err != nil {
			return err
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		return errors.New("ALLOWED_ORIGINS must contain at least one origin")
	}
	c.AllowedOrigins = origins
	c.InitialAdminEmail = strings.ToLower(strings.TrimSpace(c.InitialAdminEmail))
	return nil
}

// checkOrigin accepts scheme://host[:port] with an http or https scheme
func checkOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ALLOWED_ORIGINS entry %q must be an http:// or https:// origin", origin)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("ALLOWED_ORIGINS entry %q must not carry a path", origin)
	}
	return nil
}

// ClientConfig holds settings for the command line client
type ClientConfig struct {
	APIURL     string `env:"AUTH_API_URL" envDefault:"http://localhost:8080"`
	TokenStore string `env:"AUTH_TOKEN_STORE" envDefault:"file"`
	TokenPath  string `env:"AUTH_TOKEN_PATH"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadClient reads the client configuration from the process environment
func LoadClient() (*ClientConfig, error) {
	return loadClient(env.Options{})
}

func loadClient(opts env.Options) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.TokenStore {
	case "file", "sqlite":
	default:
		return nil, fmt.Errorf("unknown AUTH_TOKEN_STORE %q (want file or sqlite)", cfg.TokenStore)
	}

	if cfg.TokenPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		name := "token"
		if cfg.TokenStore == "sqlite" {
			name = "session.db"
		}
		cfg.TokenPath = filepath.Join(dir, "auth_gate", name)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}
