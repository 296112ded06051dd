package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/pkg/chains"
	contracts_abi "github.com/sherpas/supply/pkg/contracts-abi"
	"github.com/spf13/viper"
)

const (
	APP_NAME   = "sherpas-supply"
	PROJECT_ID = "9c7d72159a8c34139d1ec23b00c65536" // for WalletConnect integration
	ENV_PREFIX = "SUPPLY"
)

var DefaultChains = []string{"sepolia", "base", "mainnet", "baseSepolia"}

type ContractConfig struct {
	Address  string `mapstructure:"address" validate:"required,eth_addr"`
	Function string `mapstructure:"function" validate:"required"`
	// Chain the view reads from. Empty means the first configured chain.
	Chain string `mapstructure:"chain"`
}

type RetryConfig struct {
	Attempts uint          `mapstructure:"attempts" validate:"gte=1"`
	Delay    time.Duration `mapstructure:"delay"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

type TelemetryConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type EventBusConfig struct {
	BufferSize int `mapstructure:"buffer_size" validate:"gte=0"`
}

type Config struct {
	Environment  string            `mapstructure:"env"`
	AppName      string            `mapstructure:"app_name" validate:"required"`
	ProjectID    string            `mapstructure:"project_id"`
	Chains       []string          `mapstructure:"chains" validate:"required,min=1,dive,required"`
	SSR          bool              `mapstructure:"ssr"`
	RPC          map[string]string `mapstructure:"rpc"`
	Contract     ContractConfig    `mapstructure:"contract"`
	PollInterval time.Duration     `mapstructure:"poll_interval" validate:"gt=0"`
	ReadTimeout  time.Duration     `mapstructure:"read_timeout" validate:"gt=0"`
	Retry        RetryConfig       `mapstructure:"retry"`
	HTTP         HTTPConfig        `mapstructure:"http"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Log          LogConfig         `mapstructure:"log"`
	Telemetry    TelemetryConfig   `mapstructure:"telemetry"`
	EventBus     EventBusConfig    `mapstructure:"event_bus"`
}

// LoadEnv loads .env.<environment> and then .env into the process environment.
// Missing files are ignored, existing variables are never overridden.
func LoadEnv(environment string) error {
	files := []string{".env"}
	if environment != "" {
		files = append([]string{fmt.Sprintf(".env.%s", environment)}, files...)
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}
		log.Debug().Str("file", file).Msg("[Config] [LoadEnv] loaded environment file")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("app_name", APP_NAME)
	v.SetDefault("project_id", PROJECT_ID)
	v.SetDefault("chains", DefaultChains)
	v.SetDefault("ssr", true)
	for _, chain := range chains.Known() {
		v.SetDefault("rpc."+strings.ToLower(chain.Key), chain.DefaultRPC)
	}
	v.SetDefault("contract.address", contracts_abi.SupplyAddress)
	v.SetDefault("contract.function", contracts_abi.SupplyFunction)
	v.SetDefault("contract.chain", "")
	v.SetDefault("poll_interval", 15*time.Second)
	v.SetDefault("read_timeout", 10*time.Second)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", time.Second)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("event_bus.buffer_size", 16)
}

// Load builds the configuration from defaults, an optional config file and
// SUPPLY_* environment variables, in increasing priority.
func Load(environment string, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if environment != "" {
		v.Set("env", environment)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	// comma separated list from the environment
	if len(cfg.Chains) == 1 && strings.Contains(cfg.Chains[0], ",") {
		cfg.Chains = splitList(cfg.Chains[0])
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := chains.Resolve(c.Chains); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Contract.Chain != "" && !c.hasChain(c.Contract.Chain) {
		return fmt.Errorf("invalid config: contract chain %s is not in the configured chains", c.Contract.Chain)
	}
	return nil
}

func (c *Config) hasChain(key string) bool {
	for _, chain := range c.Chains {
		if strings.EqualFold(chain, key) {
			return true
		}
	}
	return false
}

// RPCUrl returns the endpoint configured for the chain key. Viper lower cases map keys.
func (c *Config) RPCUrl(key string) string {
	if url, ok := c.RPC[strings.ToLower(key)]; ok {
		return url
	}
	return ""
}

func (c *Config) IsLocal() bool {
	return c.Environment == "" || c.Environment == "local"
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
