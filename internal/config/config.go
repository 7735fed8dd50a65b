// Package config assembles the process configuration from environment
// variables, optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/lifevault/internal/auth"
	"github.com/dmitrymomot/lifevault/internal/twofactor"
	"github.com/dmitrymomot/lifevault/internal/vault"
	"github.com/dmitrymomot/lifevault/pkg/httpserver"
	"github.com/dmitrymomot/lifevault/pkg/logger"
	"github.com/dmitrymomot/lifevault/pkg/pg"
	"github.com/dmitrymomot/lifevault/pkg/ratelimiter"
	"github.com/dmitrymomot/lifevault/pkg/redis"
	"github.com/dmitrymomot/lifevault/pkg/totp"
	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

var (
	ErrLoadEnvFile   = errors.New("config: failed to load env file")
	ErrParsingConfig = errors.New("config: failed to parse environment variables")
)

// Config is the full server configuration. Nested structs are owned by the
// packages that consume them.
type Config struct {
	Service string `env:"SERVICE_NAME" envDefault:"lifevault"`

	Log         logger.Config
	HTTP        httpserver.Config
	Postgres    pg.Config
	Redis       redis.Config
	VaultCrypto vaultcrypto.Config
	Vault       vault.Config
	TOTP        totp.Config
	Auth        auth.Config
	TwoFactor   twofactor.Config

	// Per-user second-factor attempts.
	VerifyLimit ratelimiter.Config
	// Per-client-IP calls to the second-factor login endpoint.
	LoginLimit ratelimiter.Config `envPrefix:"LOGIN_"`

	PendingKeyPrefix string `env:"TWOFACTOR_PENDING_KEY_PREFIX" envDefault:"2fa:pending:"`
}

// Load reads the given .env files (or ./.env when none are given and it
// exists) and parses the environment into Config. Variables already set in
// the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		// A missing default .env is normal outside local development.
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, errors.Join(ErrLoadEnvFile, err)
	}
	return Parse[Config]()
}

// MustLoad works like Load but panics on failure.
func MustLoad(files ...string) Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Parse fills any env-tagged struct from the current environment.
func Parse[T any]() (T, error) {
	v, err := env.ParseAs[T]()
	if err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}
