package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad_ValidConfig(t *testing.T) {
	// Создаем временный конфиг файл
	configContent := `
env: test
state_dir: /tmp/kinoteka-test
backend:
  base_url: "http://localhost:3000/api"
  timeout: 7s
http_server:
  addresshttp: "127.0.0.1:9090"
  timeouthttp: 30s
  idle_timeout: 60s
payment:
  gateway_token_param: "Ptrid"
  cancel_flag_key: "payment_status"
  cancel_flag_value: "cancelled"
  currency: "USD"
  public_base_url: "http://127.0.0.1:9090"
  return_path: "/payment/return"
  cancel_path: "/payment/cancel"
  confirmation_delay: 5s
`

	tmpFile, err := os.CreateTemp(t.TempDir(), "test_config_*.yaml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(configContent)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	t.Setenv("CONFIG_PATH", tmpFile.Name())

	cfg := MustLoad()

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "/tmp/kinoteka-test", cfg.StateDir)
	assert.Equal(t, "http://localhost:3000/api", cfg.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.TimeoutBackend)
	assert.Equal(t, "127.0.0.1:9090", cfg.AddressHTTP)
	assert.Equal(t, "Ptrid", cfg.GatewayTokenParam)
	assert.Equal(t, "payment_status", cfg.CancelFlagKey)
	assert.Equal(t, "cancelled", cfg.CancelFlagValue)
	assert.Equal(t, 5*time.Second, cfg.ConfirmationDelay)
}

func TestMustLoad_DefaultsApplied(t *testing.T) {
	configContent := `
env: test
state_dir: /tmp/kinoteka-test
backend:
  base_url: "http://localhost:3000/api"
payment:
  public_base_url: "http://127.0.0.1:8080"
`

	tmpFile, err := os.CreateTemp(t.TempDir(), "test_config_*.yaml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(configContent)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	t.Setenv("CONFIG_PATH", tmpFile.Name())

	cfg := MustLoad()

	assert.Equal(t, "Ptrid", cfg.GatewayTokenParam)
	assert.Equal(t, "payment_status", cfg.CancelFlagKey)
	assert.Equal(t, "cancelled", cfg.CancelFlagValue)
	assert.Equal(t, 10*time.Second, cfg.TimeoutBackend)
	assert.Equal(t, 5*time.Second, cfg.ConfirmationDelay)
	assert.Equal(t, "/payment/return", cfg.ReturnPath)
	assert.Equal(t, "/payment/cancel", cfg.CancelPath)
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{Env: "prod"}
	out := cfg.String()
	assert.Contains(t, out, "Env: prod")
	assert.Contains(t, out, "GatewayTokenParam:")
}
