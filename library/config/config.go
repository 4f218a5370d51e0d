package config

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/library-borrowing/pkg/kafka"
	"github.com/Astemirdum/library-borrowing/pkg/logger"
	"github.com/Astemirdum/library-borrowing/pkg/postgres"
	"github.com/Astemirdum/library-borrowing/pkg/session"
	"github.com/kelseyhightower/envconfig"
)

const envDevelopment = "development"

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
	CORSOrigins  []string      `yaml:"corsOrigins" envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

type Auth struct {
	Secret    string        `json:"-" envconfig:"JWT_SECRET" required:"true"`
	ExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"168h"`
	AppEnv    string        `envconfig:"APP_ENV" default:"production"`
}

// SecureCookie is false only in local development where TLS is absent.
func (a Auth) SecureCookie() bool {
	return !strings.EqualFold(a.AppEnv, envDevelopment)
}

type Config struct {
	Server   HTTPServer `yaml:"server"`
	Database postgres.DB
	Auth     Auth
	Redis    session.Config
	Kafka    kafka.Config
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment once; options set values the environment may override.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
