package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlatformConfig carries the tunable business settings that operators
// may adjust without a redeploy.
type PlatformConfig struct {
	Rating      RatingConfig      `mapstructure:"rating"`
	Certificate CertificateConfig `mapstructure:"certificate"`
	RateLimit   RateLimitConfig   `mapstructure:"rateLimit"`
}

type RatingConfig struct {
	// Minimum progress percentage a student needs before rating a course.
	MinProgressPercent float64 `mapstructure:"minProgressPercent"`
}

type CertificateConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	Issuer  string `mapstructure:"issuer"`
}

type RateLimitConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Rate       float64 `mapstructure:"rate"`
	Burst      int     `mapstructure:"burst"`
	TTLSeconds int     `mapstructure:"ttlSeconds"`
}

func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		Rating: RatingConfig{
			MinProgressPercent: 20,
		},
		Certificate: CertificateConfig{
			BaseURL: "/certificates",
			Issuer:  "EduHub",
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Rate:       10,
			Burst:      20,
			TTLSeconds: 60,
		},
	}
}

// PlatformConfigHolder keeps the latest platform settings and swaps them
// atomically when the config file changes on disk.
type PlatformConfigHolder struct {
	current atomic.Value // holds PlatformConfig
}

func NewPlatformConfigHolder() (*PlatformConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("platform")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/eduhub")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EDUHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PlatformConfigHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultPlatformConfig())
		return holder, nil
	}

	cfg, err := unmarshalPlatform(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := unmarshalPlatform(v)
		if err != nil {
			log.Printf("platform config reload failed: %v", err)
			return
		}
		holder.current.Store(next)
	})
	v.WatchConfig()

	return holder, nil
}

func (h *PlatformConfigHolder) Get() PlatformConfig {
	if v, ok := h.current.Load().(PlatformConfig); ok {
		return v
	}
	return DefaultPlatformConfig()
}

// Store replaces the current settings. Intended for tests.
func (h *PlatformConfigHolder) Store(cfg PlatformConfig) {
	h.current.Store(cfg)
}

func unmarshalPlatform(v *viper.Viper) (PlatformConfig, error) {
	cfg := DefaultPlatformConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return PlatformConfig{}, err
	}
	if cfg.Rating.MinProgressPercent < 0 || cfg.Rating.MinProgressPercent > 100 {
		cfg.Rating.MinProgressPercent = DefaultPlatformConfig().Rating.MinProgressPercent
	}
	return cfg, nil
}
