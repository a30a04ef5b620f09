package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/bridge/internal/api"
	"github.com/assist-by/bridge/internal/config"
	"github.com/assist-by/bridge/internal/domain"
	eBybit "github.com/assist-by/bridge/internal/exchange/bybit"
	"github.com/assist-by/bridge/internal/logger"
	"github.com/assist-by/bridge/internal/notification"
	"github.com/assist-by/bridge/internal/notification/discord"
	pBybit "github.com/assist-by/bridge/internal/position/bybit"
)

func main() {
	// 설정 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "%v\n", cfgErr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 로그 설정
	log, err := logger.New(logger.Config{
		Level:      cfg.App.LogLevel,
		OutputFile: cfg.App.LogFile,
		Compress:   true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "로거 생성 실패: %v\n", err)
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"baseURL":  cfg.Bybit.BaseURL,
		"category": cfg.Bybit.Category,
		"apiKey":   logger.Mask(cfg.Bybit.APIKey),
	}).Info("브릿지 서버 시작...")

	// 알림 설정 (웹훅이 없으면 알림 비활성화)
	var notifier notification.Notifier = notification.Nop{}
	if cfg.Discord.TradeWebhook != "" || cfg.Discord.ErrorWebhook != "" {
		notifier = discord.NewClient(
			cfg.Discord.TradeWebhook,
			cfg.Discord.ErrorWebhook,
			discord.WithTimeout(10*time.Second),
		)
	}

	if err := notifier.SendInfo(fmt.Sprintf("🚀 브릿지 서버가 시작되었습니다. (%s)", cfg.Bybit.BaseURL)); err != nil {
		log.WithError(err).Warn("시작 알림 전송 실패")
	}

	category := domain.Category(cfg.Bybit.Category)

	// 바이비트 클라이언트 생성
	bybitClient := eBybit.NewClient(
		cfg.Credentials(),
		eBybit.WithBaseURL(cfg.Bybit.BaseURL),
		eBybit.WithTimeout(cfg.Bybit.Timeout),
		eBybit.WithRecvWindow(cfg.Bybit.RecvWindow),
		eBybit.WithCategory(category),
		eBybit.WithAccountType(cfg.Bybit.AccountType),
		eBybit.WithQuoteCoin(cfg.Trading.QuoteCoin),
		eBybit.WithRateLimit(cfg.Bybit.RateLimit, cfg.Bybit.RateBurst),
		eBybit.WithLogger(log.WithField("component", "bybit")),
	)

	// 포지션 매니저 생성
	positionManager := pBybit.NewManager(
		bybitClient,
		notifier,
		pBybit.WithLogger(log.WithField("component", "position")),
		pBybit.WithCategory(category),
		pBybit.WithHedgeMode(cfg.Trading.HedgeMode),
		pBybit.WithDefaultLeverage(cfg.DefaultLeverage()),
		pBybit.WithStopLoss(cfg.Trading.StopLossEnabled, decimal.NewFromFloat(cfg.Trading.StopLossPct)),
		pBybit.WithSettleDelay(cfg.Trading.SettleDelay),
	)

	server := api.NewServer(cfg, bybitClient, positionManager, log.WithField("component", "api"))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// 시그널 처리
	sigChan := make(chan os.Signal, 1)
	osSignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Infof("시스템 종료 신호 수신: %v", sig)
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("API 서버 실행 중 에러 발생")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("API 서버 종료 실패")
	}

	if err := notifier.SendInfo("👋 브릿지 서버가 정상적으로 종료되었습니다."); err != nil {
		log.WithError(err).Warn("종료 알림 전송 실패")
	}

	log.Info("프로그램을 종료합니다.")
}
