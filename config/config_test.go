package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "edpharma", cfg.Mongo.DB)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, CartBackendMongo, cfg.Cart.Backend)
	assert.Equal(t, 0.08, cfg.Pricing.TaxRate)
	assert.Equal(t, 50.0, cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, 9.99, cfg.Pricing.FlatShippingFee)
	assert.False(t, cfg.Admin.RevenueIncludeCancelled)
	assert.Equal(t, []string{"*"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAILS", "boss@edpharma.test, ops@edpharma.test ,")
	t.Setenv("CART_BACKEND", "Redis")
	t.Setenv("REVENUE_INCLUDE_CANCELLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"boss@edpharma.test", "ops@edpharma.test"}, cfg.Auth.AdminEmails)
	assert.Equal(t, CartBackendRedis, cfg.Cart.Backend)
	assert.True(t, cfg.Admin.RevenueIncludeCancelled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "unknown cart backend",
			env:     map[string]string{"JWT_SECRET": "s", "CART_BACKEND": "sqlite"},
			wantErr: "unknown CART_BACKEND",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"JWT_SECRET": "s", "JWT_TTL": "forever"},
			wantErr: "JWT_TTL",
		},
		{
			name:    "negative fee",
			env:     map[string]string{"JWT_SECRET": "s", "FLAT_SHIPPING_FEE": "-1"},
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
