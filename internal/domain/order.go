package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRequest는 주문 요청 정보를 표현합니다
type OrderRequest struct {
	Symbol           string           // 심볼 (예: BTCUSDT)
	Side             OrderSide        // 매수/매도
	Type             OrderType        // 주문 유형
	Quantity         string           // 수량 (qtyStep 정밀도로 포맷된 문자열)
	Price            string           // 지정가 (Limit 주문 시)
	TriggerPrice     string           // 조건부 주문 발동가 (손절 주문 시)
	TriggerDirection TriggerDirection // 발동 방향
	TimeInForce      string           // 주문 유효 기간 (GTC 등)
	PositionIdx      int              // 단방향 모드는 0
	ReduceOnly       bool             // 포지션 감소 전용
	CloseOnTrigger   bool             // 발동 시 청산
	OrderLinkID      string           // 클라이언트 측 주문 ID
}

// OrderResponse는 주문 응답을 표현합니다
type OrderResponse struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}

// Position은 거래소에서 조회한 포지션 스냅샷입니다
type Position struct {
	Symbol        string          `json:"symbol"`
	Side          OrderSide       `json:"side"`
	Size          decimal.Decimal `json:"size"`
	RawSize       string          `json:"-"` // 거래소가 기록한 그대로의 수량 문자열
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	MarkPrice     decimal.Decimal `json:"markPrice"`
	Leverage      decimal.Decimal `json:"leverage"`
	UnrealizedPnL decimal.Decimal `json:"unrealisedPnl"`
	PositionValue decimal.Decimal `json:"positionValue"`
	PositionIdx   int             `json:"positionIdx"`
	StopLoss      string          `json:"stopLoss,omitempty"`
	UpdatedTime   time.Time       `json:"updatedTime"`
}

// IsOpen은 포지션 수량이 0이 아닌지 확인합니다
func (p Position) IsOpen() bool {
	return !p.Size.Abs().IsZero()
}

// InstrumentSpec은 심볼의 거래 규칙입니다. 주문마다 새로 조회합니다.
type InstrumentSpec struct {
	Symbol        string          `json:"symbol"`
	Status        string          `json:"status"`
	QtyStep       decimal.Decimal `json:"qtyStep"`
	MinOrderQty   decimal.Decimal `json:"minOrderQty"`
	MaxOrderQty   decimal.Decimal `json:"maxOrderQty"`
	MinOrderValue decimal.Decimal `json:"minOrderValue"` // minNotionalValue
	TickSize      decimal.Decimal `json:"tickSize"`
	MinLeverage   decimal.Decimal `json:"minLeverage"`
	MaxLeverage   decimal.Decimal `json:"maxLeverage"`
}

// Ticker는 시세 스냅샷입니다
type Ticker struct {
	Symbol       string `json:"symbol"`
	LastPrice    string `json:"lastPrice"`
	Bid1Price    string `json:"bid1Price"`
	Ask1Price    string `json:"ask1Price"`
	PrevPrice24h string `json:"prevPrice24h"`
	Price24hPcnt string `json:"price24hPcnt"`
	HighPrice24h string `json:"highPrice24h"`
	LowPrice24h  string `json:"lowPrice24h"`
	Volume24h    string `json:"volume24h"`
	Turnover24h  string `json:"turnover24h"`
	MarkPrice    string `json:"markPrice,omitempty"`
}

// ClosedPnL은 청산된 거래의 손익 기록입니다
type ClosedPnL struct {
	Symbol        string `json:"symbol"`
	OrderID       string `json:"orderId"`
	Side          string `json:"side"`
	Qty           string `json:"qty"`
	OrderPrice    string `json:"orderPrice"`
	OrderType     string `json:"orderType"`
	ClosedSize    string `json:"closedSize"`
	AvgEntryPrice string `json:"avgEntryPrice"`
	AvgExitPrice  string `json:"avgExitPrice"`
	ClosedPnL     string `json:"closedPnl"`
	Leverage      string `json:"leverage"`
	CreatedTime   string `json:"createdTime"`
	UpdatedTime   string `json:"updatedTime"`
}
