package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderIntent는 사용자가 요청한 거래 의도입니다 (USD 명목 금액 기준)
type OrderIntent struct {
	Symbol    string
	Side      OrderSide
	Notional  decimal.Decimal // 투입할 USDT 금액
	Leverage  decimal.Decimal // 요청 레버리지 (거래소 한도로 캡핑됨)
	Confirmed bool            // 최소 주문 금액 조정을 사용자가 승인했는지 여부
}

// Validate는 사이징 전에 의도를 검증합니다
func (i OrderIntent) Validate() error {
	if strings.TrimSpace(i.Symbol) == "" {
		return NewValidationError("symbol", "must not be empty")
	}
	if !i.Side.Valid() {
		return NewValidationError("side", "must be Buy or Sell")
	}
	if !i.Notional.IsPositive() {
		return NewValidationError("qty", "notional amount must be greater than 0")
	}
	if !i.Leverage.IsPositive() {
		return NewValidationError("leverage", "must be greater than 0")
	}
	return nil
}

// NormalizeSymbol은 심볼을 대문자로 바꾸고 견적 코인이 없으면 붙입니다.
// 예: "btc" -> "BTCUSDT"
func NormalizeSymbol(symbol, quoteCoin string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || quoteCoin == "" {
		return s
	}
	if strings.HasSuffix(s, strings.ToUpper(quoteCoin)) {
		return s
	}
	return s + strings.ToUpper(quoteCoin)
}

// ParseSide는 대소문자를 무시하고 주문 방향을 해석합니다
func ParseSide(s string) (OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return Buy, nil
	case "sell", "short":
		return Sell, nil
	}
	return "", NewValidationError("side", "must be Buy or Sell")
}
