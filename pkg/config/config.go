package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist and reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type Configuration struct {
	// BaseURL is the platform API origin, e.g. https://api.nimbus-iot.com.
	BaseURL string `env:"NIMBUS_API_URL" envDefault:"https://api.nimbus-iot.com"`

	// Token is a static bearer token. When set it takes precedence over
	// the key/secret pair and no token endpoint is called.
	Token     string `env:"NIMBUS_TOKEN"`
	APIKey    string `env:"NIMBUS_API_KEY"`
	APISecret string `env:"NIMBUS_API_SECRET"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	PageSize    int           `env:"PAGE_SIZE" envDefault:"200"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"error"`

	logger *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return err
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(c.LogrusLogLevel())
	c.logger = logger
	return nil
}

func (c *Configuration) validate() error {
	base := strings.TrimSpace(c.BaseURL)
	if base != "" {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid NIMBUS_API_URL: %q", c.BaseURL)
		}
	}
	if c.PageSize < 1 || c.PageSize > 1000 {
		return fmt.Errorf("PAGE_SIZE must be within 1..1000, got %d", c.PageSize)
	}
	return nil
}
