package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config - runtime settings, read from the environment
type Config struct {
	RPCURL         string        `env:"RPC_URL" envDefault:"https://api.devnet.solana.com"`
	WSURL          string        `env:"WS_URL"`
	Network        string        `env:"NETWORK" envDefault:"devnet"`
	ProgramID      string        `env:"PROGRAM_ID" envDefault:"AtaJqV58wFNzFEwWPnYsb4sgns7ePFsj5wKFx7qxcK1N"`
	DatabaseDSN    string        `env:"DATABASE_DSN"`
	Port           string        `env:"PORT" envDefault:"8081"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	ConfirmTimeout time.Duration `env:"CONFIRM_TIMEOUT" envDefault:"60s"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Used by the demo and client binaries
	PayerKeypair   string `env:"PAYER_KEYPAIR" envDefault:"~/.config/solana/id.json"`
	CollectionMint string `env:"COLLECTION_MINT"`
	APIURL         string `env:"API_URL" envDefault:"http://localhost:8081"`
}

var networks = map[string]bool{
	"mainnet":  true,
	"devnet":   true,
	"testnet":  true,
	"localnet": true,
}

// Load reads the process environment
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the given variables instead of the process environment
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !networks[cfg.Network] {
		return nil, fmt.Errorf("unknown network %q", cfg.Network)
	}
	if cfg.ConfirmTimeout <= 0 {
		return nil, fmt.Errorf("confirm timeout must be positive, got %s", cfg.ConfirmTimeout)
	}
	return &cfg, nil
}

// NewLogger builds a production zap logger at the configured level
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
