package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCOUNT_USERNAME_POLICY", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, UsernamePolicyReject, cfg.Accounts.UsernamePolicy)
	assert.True(t, cfg.Billing.FullPaymentTolerance.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 60, cfg.Billing.MaxInstallments)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "PGX")
	t.Setenv("ACCOUNT_USERNAME_POLICY", "suffix")
	t.Setenv("BILLING_FULL_PAYMENT_TOLERANCE", "0.50")
	t.Setenv("BILLING_MAX_INSTALLMENTS", "24")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")
	t.Setenv("DATABASE_URL", "postgres://app@db/studylab")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPGX, cfg.Database.Driver)
	assert.Equal(t, UsernamePolicySuffix, cfg.Accounts.UsernamePolicy)
	assert.Equal(t, "0.5", cfg.Billing.FullPaymentTolerance.String())
	assert.Equal(t, 24, cfg.Billing.MaxInstallments)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, "postgres://app@db/studylab", cfg.Database.URL)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func TestParseDecimalRejectsNegative(t *testing.T) {
	got := parseDecimal("-3", decimal.NewFromInt(1))
	assert.Equal(t, "1", got.String())
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
