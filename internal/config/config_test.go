package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BYBIT_API_KEY", "key")
	t.Setenv("BYBIT_API_SECRET", "secret")
}

func TestProcess_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Process()
	require.NoError(t, err)

	assert.Equal(t, "https://api-testnet.bybit.com", cfg.Bybit.BaseURL)
	assert.Equal(t, "5000", cfg.Bybit.RecvWindow)
	assert.Equal(t, "linear", cfg.Bybit.Category)
	assert.Equal(t, 10*time.Second, cfg.Bybit.Timeout)
	assert.Equal(t, ":4001", cfg.App.ListenAddr)
	assert.Equal(t, 0.02, cfg.Trading.StopLossPct)
	assert.True(t, cfg.Trading.StopLossEnabled)
	assert.Equal(t, 2*time.Second, cfg.Trading.SettleDelay)
	assert.Equal(t, "10", cfg.DefaultLeverage().String())

	creds := cfg.Credentials()
	assert.Equal(t, "key", creds.APIKey)
	assert.Equal(t, "secret", creds.APISecret)
}

func TestProcess_MissingCredentials(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "")
	t.Setenv("BYBIT_API_SECRET", "")

	_, err := Process()
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestProcess_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TRADING_STOP_LOSS_PCT", "0.05")
	t.Setenv("TRADING_SETTLE_DELAY", "500ms")
	t.Setenv("TRADING_DEFAULT_LEVERAGE", "3")
	t.Setenv("BYBIT_CATEGORY", "inverse")

	cfg, err := Process()
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Trading.StopLossPct)
	assert.Equal(t, 500*time.Millisecond, cfg.Trading.SettleDelay)
	assert.Equal(t, "3", cfg.DefaultLeverage().String())
	assert.Equal(t, "inverse", cfg.Bybit.Category)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "정상 설정", env: map[string]string{}},
		{name: "손절 비율 범위 초과", env: map[string]string{"TRADING_STOP_LOSS_PCT": "1.5"}, wantErr: true},
		{name: "손절 비율 0", env: map[string]string{"TRADING_STOP_LOSS_PCT": "0"}, wantErr: true},
		{name: "recv window 숫자 아님", env: map[string]string{"BYBIT_RECV_WINDOW": "abc"}, wantErr: true},
		{name: "레버리지 음수", env: map[string]string{"TRADING_DEFAULT_LEVERAGE": "-1"}, wantErr: true},
		{name: "레이트 리밋 0", env: map[string]string{"BYBIT_RATE_LIMIT": "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Process()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
