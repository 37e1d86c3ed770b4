package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformConfigHolder(t *testing.T) {
	t.Run("empty holder falls back to defaults", func(t *testing.T) {
		holder := &PlatformConfigHolder{}
		assert.Equal(t, DefaultPlatformConfig(), holder.Get())
	})

	t.Run("store replaces settings", func(t *testing.T) {
		holder := &PlatformConfigHolder{}
		cfg := DefaultPlatformConfig()
		cfg.Rating.MinProgressPercent = 50
		holder.Store(cfg)
		assert.Equal(t, 50.0, holder.Get().Rating.MinProgressPercent)
	})
}

func TestUnmarshalPlatform(t *testing.T) {
	t.Run("partial file keeps defaults for the rest", func(t *testing.T) {
		v := viper.New()
		v.Set("rating.minProgressPercent", 35)

		cfg, err := unmarshalPlatform(v)
		require.NoError(t, err)
		assert.Equal(t, 35.0, cfg.Rating.MinProgressPercent)
		assert.Equal(t, "/certificates", cfg.Certificate.BaseURL)
		assert.Equal(t, "EduHub", cfg.Certificate.Issuer)
		assert.True(t, cfg.RateLimit.Enabled)
	})

	t.Run("out-of-range threshold reverts to default", func(t *testing.T) {
		v := viper.New()
		v.Set("rating.minProgressPercent", 150)

		cfg, err := unmarshalPlatform(v)
		require.NoError(t, err)
		assert.Equal(t, 20.0, cfg.Rating.MinProgressPercent)
	})
}
