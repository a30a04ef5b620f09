package position

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
)

// OpenRequest는 포지션 진입 요청 정보를 담습니다
type OpenRequest struct {
	Intent      domain.OrderIntent
	Type        domain.OrderType // 기본값 Market
	LimitPrice  decimal.Decimal  // Limit 주문가
	ClientPrice decimal.Decimal  // UI가 보낸 lastPrice (로그용, 사이징에는 거래소 가격을 사용)

	// ConfirmedAmount는 사용자가 승인한 adjustedAmount입니다.
	// 값이 있으면 다시 계산한 금액과 같을 때만 주문합니다.
	ConfirmedAmount decimal.Decimal
}

// StepResult는 주문 단계의 결과입니다
type StepResult struct {
	Status  string `json:"status"` // placed / failed / skipped / confirmation_required
	OrderID string `json:"orderId,omitempty"`
	Code    int    `json:"retCode,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OrderDetails는 요청 금액과 계산된 수량을 보여줍니다
type OrderDetails struct {
	Qty           string `json:"qty"`           // 요청 금액 (USDT)
	CalculatedQty string `json:"calculatedQty"` // 주문 수량
	Price         string `json:"price"`         // 사이징 기준가
}

// OrderResult는 진입 사가의 최종 결과입니다
type OrderResult struct {
	Symbol               string        `json:"symbol"`
	Side                 string        `json:"side"`
	Leverage             string        `json:"leverage,omitempty"`
	MainOrder            StepResult    `json:"mainOrder"`
	StopLoss             StepResult    `json:"stopLoss"`
	StopLossPrice        string        `json:"stopLossPrice,omitempty"`
	RequiresConfirmation bool          `json:"requiresConfirmation"`
	OriginalAmount       string        `json:"originalAmount,omitempty"`
	AdjustedAmount       string        `json:"adjustedAmount,omitempty"`
	OrderDetails         *OrderDetails `json:"orderDetails,omitempty"`
	Warnings             []string      `json:"warnings,omitempty"`
}

// CloseRequest는 포지션 청산 요청 정보를 담습니다
type CloseRequest struct {
	Symbol string
	Qty    string // UI가 보낸 수량 (참고용, 청산 수량은 거래소 기록을 사용)
}

// ClosedLeg는 청산한 포지션 한 쪽의 주문 정보입니다. 양방향 모드에서는 심볼당 두 개까지 있습니다.
type ClosedLeg struct {
	PositionIdx int              `json:"positionIdx"`
	Side        domain.OrderSide `json:"side"`
	Qty         string           `json:"qty"`
	OrderID     string           `json:"orderId"`
}

// CloseResult는 청산 사가의 최종 결과입니다. Side, Qty, OrderID는 첫 번째 청산 주문을 나타냅니다.
type CloseResult struct {
	Symbol  string           `json:"symbol"`
	Status  string           `json:"status"` // closed / already closed
	Side    domain.OrderSide `json:"side,omitempty"`
	Qty     string           `json:"qty,omitempty"`
	OrderID string           `json:"orderId,omitempty"`
	Legs    []ClosedLeg      `json:"legs,omitempty"`
}

// Manager는 포지션 관리를 담당하는 인터페이스입니다
type Manager interface {
	// OpenPosition은 요청 금액을 수량으로 변환해 새 포지션을 생성합니다
	OpenPosition(ctx context.Context, req *OpenRequest) (*OrderResult, error)

	// ClosePosition은 특정 심볼의 포지션을 기록된 수량 그대로 청산하고 결과를 확인합니다
	ClosePosition(ctx context.Context, req *CloseRequest) (*CloseResult, error)

	// GetActivePositions는 수량이 0이 아닌 포지션 목록을 반환합니다
	GetActivePositions(ctx context.Context) ([]domain.Position, error)
}
