package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	notes "github.com/goliatone/go-notes"
)

const (
	KeySigningKey      = "JWT_SECRET"
	KeyDatabase        = "DATABASE"
	KeyPort            = "PORT"
	KeyTokenTTL        = "TOKEN_TTL"
	KeyTokenIssuer     = "TOKEN_ISSUER"
	KeyBcryptCost      = "BCRYPT_COST"
	KeyTokenLookup     = "TOKEN_LOOKUP"
	KeyRequestTimeout  = "REQUEST_TIMEOUT"
	KeyAuditLog        = "AUDIT_LOG"
	KeyTokenRevocation = "TOKEN_REVOCATION"
	KeyPruneInterval   = "REVOCATION_PRUNE_INTERVAL"
	KeyDBDebug         = "DB_DEBUG"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogFormat       = "LOG_FORMAT"
)

// ErrMissingSecret is returned by Validate when JWT_SECRET is empty
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Config is the process configuration
type Config struct {
	SigningKey      string
	Database        string
	Port            int
	TokenTTL        time.Duration
	Issuer          string
	BcryptCost      int
	TokenLookup     string
	RequestTimeout  time.Duration
	AuditLog        bool
	TokenRevocation bool
	PruneInterval   time.Duration
	DBDebug         bool
	LogLevel        string
	LogFormat       string
}

var _ notes.ServerConfig = (*Config)(nil)

// New returns a viper instance with every default set and the environment bound
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeySigningKey, "")
	v.SetDefault(KeyDatabase, "file::memory:?cache=shared")
	v.SetDefault(KeyPort, 5000)
	v.SetDefault(KeyTokenTTL, 24*time.Hour)
	v.SetDefault(KeyTokenIssuer, "")
	v.SetDefault(KeyBcryptCost, notes.MinBcryptCost)
	v.SetDefault(KeyTokenLookup, "header:Authorization,header:auth-token")
	v.SetDefault(KeyRequestTimeout, 10*time.Second)
	v.SetDefault(KeyAuditLog, true)
	v.SetDefault(KeyTokenRevocation, true)
	v.SetDefault(KeyPruneInterval, time.Hour)
	v.SetDefault(KeyDBDebug, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.AutomaticEnv()
	return v
}

// Load reads the environment and, when envFile exists, a dotenv file.
// Environment variables win over the file.
func Load(envFile string) (*Config, error) {
	v := New()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("read config %s: %w", envFile, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes v into a Config and validates it
func FromViper(v *viper.Viper) (*Config, error) {
	durations := map[string]time.Duration{}
	for _, key := range []string{KeyTokenTTL, KeyRequestTimeout, KeyPruneInterval} {
		d, err := durationOf(v, key)
		if err != nil {
			return nil, err
		}
		durations[key] = d
	}

	cfg := &Config{
		SigningKey:      v.GetString(KeySigningKey),
		Database:        v.GetString(KeyDatabase),
		Port:            v.GetInt(KeyPort),
		TokenTTL:        durations[KeyTokenTTL],
		Issuer:          v.GetString(KeyTokenIssuer),
		BcryptCost:      v.GetInt(KeyBcryptCost),
		TokenLookup:     v.GetString(KeyTokenLookup),
		RequestTimeout:  durations[KeyRequestTimeout],
		AuditLog:        v.GetBool(KeyAuditLog),
		TokenRevocation: v.GetBool(KeyTokenRevocation),
		PruneInterval:   durations[KeyPruneInterval],
		DBDebug:         v.GetBool(KeyDBDebug),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports fatal configuration errors. A bcrypt cost below the
// minimum is raised rather than rejected.
func (c *Config) Validate() error {
	if c.SigningKey == "" {
		return ErrMissingSecret
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("%s must not be negative", KeyTokenTTL)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%s out of range: %d", KeyPort, c.Port)
	}
	if c.BcryptCost < notes.MinBcryptCost {
		c.BcryptCost = notes.MinBcryptCost
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) GetSigningKey() string            { return c.SigningKey }
func (c *Config) GetTokenTTL() time.Duration       { return c.TokenTTL }
func (c *Config) GetIssuer() string                { return c.Issuer }
func (c *Config) GetBcryptCost() int               { return c.BcryptCost }
func (c *Config) GetTokenLookup() string           { return c.TokenLookup }
func (c *Config) GetAuditLog() bool                { return c.AuditLog }
func (c *Config) GetTokenRevocation() bool         { return c.TokenRevocation }
func (c *Config) GetRequestTimeout() time.Duration { return c.RequestTimeout }

// durationOf reads key as a Go duration. A bare number other than 0 has no
// unit and is rejected, so TOKEN_TTL=3600 is not read as 3600ns.
func durationOf(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return raw, nil
	case string:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%s=%q is not a duration with a unit such as 3600s or 1h: %w", key, raw, err)
		}
		return d, nil
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		if v.GetFloat64(key) == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("%s=%v is missing a unit such as s or h", key, raw)
	default:
		return 0, fmt.Errorf("%s has unsupported value %v", key, raw)
	}
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
