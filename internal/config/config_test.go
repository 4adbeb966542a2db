package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"facturatie/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FACTURATIE_CONFIG", "")
	t.Setenv("RATES_CACHE_TTL", "")
	t.Setenv("STRICT_NUMERIC_INPUT", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, time.Hour, cfg.RatesCacheTTL)
	assert.False(t, cfg.StrictNumericInput)
	assert.Equal(t, 7, cfg.Business.Reminders.DaysUntilFirst)
	assert.Equal(t, "38.5", cfg.Business.FallbackRates.EURToSRD.String())
	assert.Equal(t, "1300", cfg.Business.Accounts.Receivable)
}

func TestLoad_EnvironmentAndYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facturatie.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
reminders:
  days_until_first: 14
  max_reminders: 2
fallback_rates:
  usd_to_srd: 36.25
accounts:
  revenue: "8100"
`), 0o600))

	t.Setenv("FACTURATIE_CONFIG", path)
	t.Setenv("ALLOWED_ORIGINS", "https://app.facturatie.sr, https://admin.facturatie.sr")
	t.Setenv("STRICT_NUMERIC_INPUT", "true")
	t.Setenv("RATES_CACHE_TTL", "15m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.facturatie.sr", "https://admin.facturatie.sr"}, cfg.AllowedOrigins)
	assert.True(t, cfg.StrictNumericInput)
	assert.Equal(t, 15*time.Minute, cfg.RatesCacheTTL)

	b := cfg.Business
	assert.Equal(t, 14, b.Reminders.DaysUntilFirst)
	assert.Equal(t, 7, b.Reminders.DaysBetweenEscalations)
	assert.Equal(t, 2, b.Reminders.MaxReminders)
	assert.Equal(t, "38.5", b.FallbackRates.EURToSRD.String())
	assert.Equal(t, "36.25", b.FallbackRates.USDToSRD.String())
	assert.Equal(t, "8100", b.Accounts.Revenue)
	assert.Equal(t, "1600", b.Accounts.VATPayable)
}

func TestLoadBusiness_Errors(t *testing.T) {
	_, err := config.LoadBusiness(filepath.Join(t.TempDir(), "missing.yaml"), config.DefaultBusiness())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fallback_rates:\n  eur_to_srd: 0\n"), 0o600))
	_, err = config.LoadBusiness(path, config.DefaultBusiness())
	assert.Error(t, err)
}

func TestValidateServe(t *testing.T) {
	weak := config.Config{JWTSecret: "short", BackendURL: "http://backend"}
	assert.Error(t, weak.ValidateServe())

	strong := config.Config{JWTSecret: "0123456789abcdef0123456789abcdef", BackendURL: "http://backend"}
	assert.NoError(t, strong.ValidateServe())
}
