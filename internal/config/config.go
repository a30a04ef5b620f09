package config

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
)

type Config struct {
	// 바이비트 API 설정
	Bybit struct {
		APIKey      string        `envconfig:"BYBIT_API_KEY" required:"true"`
		APISecret   string        `envconfig:"BYBIT_API_SECRET" required:"true"`
		BaseURL     string        `envconfig:"BYBIT_BASE_URL" default:"https://api-testnet.bybit.com"`
		RecvWindow  string        `envconfig:"BYBIT_RECV_WINDOW" default:"5000"`
		Category    string        `envconfig:"BYBIT_CATEGORY" default:"linear"`
		AccountType string        `envconfig:"BYBIT_ACCOUNT_TYPE" default:"CONTRACT"`
		Timeout     time.Duration `envconfig:"BYBIT_TIMEOUT" default:"10s"`
		RateLimit   float64       `envconfig:"BYBIT_RATE_LIMIT" default:"10"`
		RateBurst   int           `envconfig:"BYBIT_RATE_BURST" default:"5"`
	}

	// 디스코드 웹훅 설정 (비어 있으면 알림 비활성화)
	Discord struct {
		TradeWebhook string `envconfig:"DISCORD_TRADE_WEBHOOK"`
		ErrorWebhook string `envconfig:"DISCORD_ERROR_WEBHOOK"`
	}

	// 애플리케이션 설정
	App struct {
		ListenAddr      string        `envconfig:"APP_LISTEN_ADDR" default:":4001"`
		ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`
		LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
		LogFile         string        `envconfig:"LOG_FILE"`
	}

	// 거래 설정
	Trading struct {
		DefaultLeverage string        `envconfig:"TRADING_DEFAULT_LEVERAGE" default:"10"`
		QuoteCoin       string        `envconfig:"TRADING_QUOTE_COIN" default:"USDT"`
		StopLossEnabled bool          `envconfig:"TRADING_STOP_LOSS_ENABLED" default:"true"`
		StopLossPct     float64       `envconfig:"TRADING_STOP_LOSS_PCT" default:"0.02"`
		SettleDelay     time.Duration `envconfig:"TRADING_SETTLE_DELAY" default:"2s"`
		HedgeMode       bool          `envconfig:"TRADING_HEDGE_MODE" default:"false"`
	}
}

// ConfigError는 시작 시점의 치명적인 설정 오류입니다
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("설정 오류: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Credentials는 서명 엔진에 전달할 불변 자격 증명을 반환합니다
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		APIKey:    c.Bybit.APIKey,
		APISecret: c.Bybit.APISecret,
	}
}

// DefaultLeverage는 기본 레버리지를 decimal로 반환합니다
func (c *Config) DefaultLeverage() decimal.Decimal {
	lev, err := decimal.NewFromString(c.Trading.DefaultLeverage)
	if err != nil {
		return decimal.NewFromInt(10)
	}
	return lev
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	if cfg.Bybit.APIKey == "" || cfg.Bybit.APISecret == "" {
		return fmt.Errorf("BYBIT_API_KEY와 BYBIT_API_SECRET은 필수입니다")
	}

	if _, err := strconv.ParseInt(cfg.Bybit.RecvWindow, 10, 64); err != nil {
		return fmt.Errorf("BYBIT_RECV_WINDOW는 정수(ms)여야 합니다: %q", cfg.Bybit.RecvWindow)
	}

	if cfg.Bybit.Timeout <= 0 {
		return fmt.Errorf("BYBIT_TIMEOUT은 0보다 커야 합니다")
	}

	if cfg.Bybit.RateLimit <= 0 || cfg.Bybit.RateBurst < 1 {
		return fmt.Errorf("BYBIT_RATE_LIMIT와 BYBIT_RATE_BURST는 양수여야 합니다")
	}

	lev, err := decimal.NewFromString(cfg.Trading.DefaultLeverage)
	if err != nil || !lev.IsPositive() {
		return fmt.Errorf("TRADING_DEFAULT_LEVERAGE는 0보다 큰 숫자여야 합니다: %q", cfg.Trading.DefaultLeverage)
	}

	if cfg.Trading.StopLossPct <= 0 || cfg.Trading.StopLossPct >= 1 {
		return fmt.Errorf("TRADING_STOP_LOSS_PCT는 0과 1 사이여야 합니다")
	}

	if cfg.Trading.SettleDelay < 0 {
		return fmt.Errorf("TRADING_SETTLE_DELAY는 음수일 수 없습니다")
	}

	return nil
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
func LoadConfig() (*Config, error) {
	// .env 파일은 선택 사항
	if err := godotenv.Load(); err != nil {
		log.Printf(".env 파일을 찾을 수 없어 환경변수만 사용합니다")
	}

	return Process()
}

// Process는 현재 환경변수를 구조체로 파싱하고 검증합니다.
func Process() (*Config, error) {
	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("환경변수 처리 실패: %w", err)}
	}

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("설정값 검증 실패: %w", err)}
	}

	return &cfg, nil
}
