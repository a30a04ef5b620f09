package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/bridge/internal/config"
	"github.com/assist-by/bridge/internal/domain"
	"github.com/assist-by/bridge/internal/exchange"
	"github.com/assist-by/bridge/internal/position"
)

// Server는 UI에 제공하는 HTTP JSON API 서버입니다
type Server struct {
	exchange   exchange.Exchange
	manager    position.Manager
	resolver   *position.InstrumentResolver
	log        logrus.FieldLogger
	quoteCoin  string
	category   domain.Category
	addr       string
	httpServer *http.Server
}

// NewServer는 새로운 API 서버를 생성합니다
func NewServer(cfg *config.Config, ex exchange.Exchange, manager position.Manager, log logrus.FieldLogger) *Server {
	s := &Server{
		exchange:  ex,
		manager:   manager,
		resolver:  position.NewInstrumentResolver(ex),
		log:       log,
		quoteCoin: cfg.Trading.QuoteCoin,
		category:  domain.Category(cfg.Bybit.Category),
		addr:      cfg.App.ListenAddr,
	}

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router는 라우트가 등록된 핸들러를 반환합니다
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	api.GET("/tickers", s.handleTickers)
	api.GET("/balance", s.handleBalance)
	api.GET("/positions", s.handlePositions)
	api.POST("/order", s.handleOrder)
	api.POST("/place-order", s.handlePlaceOrder)
	api.POST("/close-position", s.handleClosePosition)
	api.GET("/closed-pnl", s.handleClosedPnL)
	api.GET("/instruments-info", s.handleInstrumentsInfo)
	api.GET("/check-symbol", s.handleCheckSymbol)

	// 이전 UI가 사용하는 경로
	api.GET("/v5/position/closed-pnl", s.handleClosedPnL)

	return r
}

// Start는 서버를 시작합니다. Shutdown으로 종료되면 nil을 반환합니다.
func (s *Server) Start() error {
	s.log.Infof("API 서버 시작: %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown은 진행 중인 요청을 기다린 뒤 서버를 종료합니다
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("API 서버 종료 중...")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger는 요청마다 메서드, 경로, 상태, 소요 시간을 기록합니다
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("요청 처리 실패")
			return
		}
		entry.Debug("요청 처리 완료")
	}
}

// cors는 브라우저 UI가 다른 포트에서 호출할 수 있도록 허용합니다
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
