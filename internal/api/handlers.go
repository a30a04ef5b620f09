package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
	"github.com/assist-by/bridge/internal/position"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// orderBody는 주문 요청 본문입니다. 숫자 필드는 문자열과 숫자 모두 허용합니다.
type orderBody struct {
	Symbol         string          `json:"symbol"`
	Side           string          `json:"side"`
	Type           string          `json:"type"`
	Qty            decimal.Decimal `json:"qty"` // USDT 금액
	Leverage       decimal.Decimal `json:"leverage"`
	LastPrice      decimal.Decimal `json:"lastPrice"`
	Price          decimal.Decimal `json:"price"`
	AdjustedAmount decimal.Decimal `json:"adjustedAmount"` // 승인한 조정 금액
	Confirmed      bool            `json:"confirmed"`
	ReduceOnly     bool            `json:"reduceOnly"`
	CloseOnTrigger bool            `json:"closeOnTrigger"`
}

type closeBody struct {
	Symbol string          `json:"symbol"`
	Qty    decimal.Decimal `json:"qty"`
}

type orderResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	*position.OrderResult
}

type closeResponse struct {
	RetCode int    `json:"retCode"`
	Message string `json:"message"`
	*position.CloseResult
}

func (s *Server) handleTickers(c *gin.Context) {
	category := domain.Category(c.DefaultQuery("category", string(domain.CategorySpot)))
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	baseCoin := strings.ToUpper(strings.TrimSpace(c.Query("baseCoin")))

	tickers, err := s.exchange.GetTickers(c.Request.Context(), category, symbol, baseCoin)
	if err != nil {
		writeError(c, "Failed to fetch tickers", err, nil)
		return
	}
	writeList(c, tickers)
}

func (s *Server) handleBalance(c *gin.Context) {
	balances, err := s.exchange.GetBalance(c.Request.Context())
	if err != nil {
		writeError(c, "Failed to fetch balance", err, nil)
		return
	}
	writeList(c, balances)
}

func (s *Server) handlePositions(c *gin.Context) {
	positions, err := s.manager.GetActivePositions(c.Request.Context())
	if err != nil {
		writeError(c, "Failed to fetch positions", err, nil)
		return
	}
	writeList(c, positions)
}

func (s *Server) handleOrder(c *gin.Context) {
	var body orderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, "Invalid order request", domain.NewValidationError("body", err.Error()), nil)
		return
	}
	s.openPosition(c, body)
}

// handlePlaceOrder는 이전 UI 경로입니다. reduceOnly 요청은 청산으로 처리합니다.
func (s *Server) handlePlaceOrder(c *gin.Context) {
	var body orderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, "Invalid order request", domain.NewValidationError("body", err.Error()), nil)
		return
	}

	if body.ReduceOnly {
		s.closePosition(c, closeBody{Symbol: body.Symbol, Qty: body.Qty})
		return
	}
	s.openPosition(c, body)
}

func (s *Server) openPosition(c *gin.Context, body orderBody) {
	side, err := domain.ParseSide(body.Side)
	if err != nil {
		writeError(c, "Invalid order request", err, nil)
		return
	}
	orderType, err := parseOrderType(body.Type)
	if err != nil {
		writeError(c, "Invalid order request", err, nil)
		return
	}

	req := &position.OpenRequest{
		Intent: domain.OrderIntent{
			Symbol:    domain.NormalizeSymbol(body.Symbol, s.quoteCoin),
			Side:      side,
			Notional:  body.Qty,
			Leverage:  body.Leverage,
			Confirmed: body.Confirmed,
		},
		Type:            orderType,
		LimitPrice:      body.Price,
		ClientPrice:     body.LastPrice,
		ConfirmedAmount: body.AdjustedAmount,
	}

	result, err := s.manager.OpenPosition(c.Request.Context(), req)
	if err != nil {
		var details any
		if result != nil {
			details = result
		}
		writeError(c, "Order placement failed", err, details)
		return
	}

	c.JSON(http.StatusOK, orderResponse{RetCode: 0, RetMsg: "OK", OrderResult: result})
}

func (s *Server) handleClosePosition(c *gin.Context) {
	var body closeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, "Invalid close request", domain.NewValidationError("body", err.Error()), nil)
		return
	}
	s.closePosition(c, body)
}

func (s *Server) closePosition(c *gin.Context, body closeBody) {
	req := &position.CloseRequest{
		Symbol: domain.NormalizeSymbol(body.Symbol, s.quoteCoin),
	}
	if !body.Qty.IsZero() {
		req.Qty = body.Qty.String()
	}

	result, err := s.manager.ClosePosition(c.Request.Context(), req)
	if err != nil {
		summary := "Failed to close position"
		if domain.IsVerificationFailure(err) {
			summary = "Close order submitted but position is still open"
		}
		writeError(c, summary, err, nil)
		return
	}

	message := "Position closed"
	if result.Status == domain.StatusAlreadyClosed {
		message = "Position already closed"
	}
	c.JSON(http.StatusOK, closeResponse{RetCode: 0, Message: message, CloseResult: result})
}

func (s *Server) handleClosedPnL(c *gin.Context) {
	category := domain.Category(c.DefaultQuery("category", string(s.category)))

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(c, "Invalid closed-pnl request",
				domain.NewValidationError("limit", "must be between 1 and 100"), nil)
			return
		}
		limit = n
	}

	records, err := s.exchange.GetClosedPnL(c.Request.Context(), category, limit)
	if err != nil {
		writeError(c, "Failed to fetch closed PnL", err, nil)
		return
	}
	writeList(c, records)
}

func (s *Server) handleInstrumentsInfo(c *gin.Context) {
	symbol, ok := s.symbolQuery(c)
	if !ok {
		return
	}

	spec, err := s.resolver.Resolve(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, "Failed to fetch instrument info", err, nil)
		return
	}
	writeList(c, []*domain.InstrumentSpec{spec})
}

func (s *Server) handleCheckSymbol(c *gin.Context) {
	symbol, ok := s.symbolQuery(c)
	if !ok {
		return
	}

	valid, err := s.resolver.Exists(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, "Failed to check symbol", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "valid": valid})
}

// symbolQuery는 symbol 쿼리를 정규화합니다. 비어있으면 400을 응답합니다.
func (s *Server) symbolQuery(c *gin.Context) (string, bool) {
	symbol := domain.NormalizeSymbol(c.Query("symbol"), s.quoteCoin)
	if symbol == "" {
		writeError(c, "Invalid request", domain.NewValidationError("symbol", "must not be empty"), nil)
		return "", false
	}
	return symbol, true
}

func parseOrderType(s string) (domain.OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "market":
		return domain.Market, nil
	case "limit":
		return domain.Limit, nil
	}
	return "", domain.NewValidationError("type", "must be Market or Limit")
}
