package internal

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/obweb/internal/expiry"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/oid"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// maxTiers bounds cache.tiers.
const maxTiers = 16

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Data    DataConfig        `yaml:"data"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Cache   CacheConfig       `yaml:"cache"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig locates the documents the store is built from.
type DataConfig struct {
	Path     string `yaml:"path"`
	InitFile string `yaml:"init_file"`
	Watch    bool   `yaml:"watch"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.InitFile, validation.Required),
	)
}

// CatalogConfig holds the SQLite search catalog configuration.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CacheConfig tunes the knowledge store.
//
// TTLs lists, per tier, how long an entry may go unseen before a sweep
// evicts it. Sweeps run only when SweepSchedule is set.
type CacheConfig struct {
	Tiers           int             `yaml:"tiers"`
	DefaultPriority int             `yaml:"default_priority"`
	MaxObjects      int             `yaml:"max_objects"`
	TTLs            []time.Duration `yaml:"ttls"`
	SweepSchedule   string          `yaml:"sweep_schedule"`
	IDFloor         uint64          `yaml:"id_floor"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Tiers, validation.Required, validation.Min(1), validation.Max(maxTiers)),
		validation.Field(&c.DefaultPriority, validation.Min(math.MinInt8), validation.Max(math.MaxInt8)),
		validation.Field(&c.MaxObjects, validation.Min(0)),
		validation.Field(&c.TTLs, validation.Length(0, c.Tiers), validation.Each(validation.Min(time.Duration(0)))),
		validation.Field(&c.SweepSchedule, validation.By(func(any) error {
			if c.SweepSchedule == "" {
				return nil
			}
			_, err := expiry.ParseSchedule(c.SweepSchedule)
			return err
		})),
		validation.Field(&c.IDFloor, validation.Required),
	)
}

// StoreOptions converts the configuration into knowledge store options.
func (c *CacheConfig) StoreOptions() []knowledge.Option {
	return []knowledge.Option{
		knowledge.WithTiers(c.Tiers),
		knowledge.WithDefaultPriority(int8(c.DefaultPriority)),
		knowledge.WithMaxObjects(c.MaxObjects),
		knowledge.WithTTLs(c.TTLs...),
		knowledge.WithIDFloor(oid.FromUint64(c.IDFloor)),
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Path:     "./data",
			InitFile: "init.term",
			Watch:    true,
		},
		Catalog: CatalogConfig{
			Path: "./obweb.db",
		},
		Cache: CacheConfig{
			Tiers:   4,
			IDFloor: 1,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
