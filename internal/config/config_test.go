package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:              "8080",
		Env:               "development",
		VNPayMerchantCode: "VIETCHARM",
		VNPayHashSecret:   "secret",
		VNPayBaseURL:      "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		VNPayReturnURL:    "https://vietcharm.vn/thanh-toan/ket-qua",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingVNPayFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"merchant code", func(c *Config) { c.VNPayMerchantCode = "" }},
		{"hash secret", func(c *Config) { c.VNPayHashSecret = "" }},
		{"gateway url", func(c *Config) { c.VNPayBaseURL = "" }},
		{"return url", func(c *Config) { c.VNPayReturnURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	// No VNP_* env set in the test environment: Load must fail rather
	// than fall back to a default secret.
	t.Setenv("VNP_TMN_CODE", "")
	t.Setenv("VNP_HASH_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("VNP_TMN_CODE", "VIETCHARM")
	t.Setenv("VNP_HASH_SECRET", "supersecret")
	t.Setenv("VNP_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	t.Setenv("VNP_RETURN_URL", "http://localhost:3000/thanh-toan/ket-qua")
	t.Setenv("RATE_LIMIT_RPM", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "VIETCHARM", cfg.VNPayMerchantCode)
	assert.Equal(t, 30, cfg.RateLimitRPM)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.True(t, cfg.IsDevelopment())
}
