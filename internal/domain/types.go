package domain

// OrderSide는 주문 방향을 정의합니다
type OrderSide string

const (
	Buy  OrderSide = "Buy"
	Sell OrderSide = "Sell"
)

// Valid는 거래소가 허용하는 주문 방향인지 확인합니다
func (s OrderSide) Valid() bool {
	return s == Buy || s == Sell
}

// Opposite는 반대 방향을 반환합니다 (청산 주문용)
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType은 주문 유형을 정의합니다
type OrderType string

const (
	Market OrderType = "Market"
	Limit  OrderType = "Limit"
)

// Category는 바이비트 V5 상품 카테고리입니다
type Category string

const (
	CategorySpot    Category = "spot"
	CategoryLinear  Category = "linear"
	CategoryInverse Category = "inverse"
	CategoryOption  Category = "option"
)

// PositionMode는 포지션 모드를 정의합니다
type PositionMode int

const (
	OneWayMode PositionMode = 0 // 단방향 (positionIdx 0)
	HedgeMode  PositionMode = 3 // 양방향
)

// TriggerDirection은 조건부 주문의 발동 방향입니다
type TriggerDirection int

const (
	TriggerNone  TriggerDirection = 0
	TriggerRises TriggerDirection = 1 // 가격이 상승하여 도달
	TriggerFalls TriggerDirection = 2 // 가격이 하락하여 도달
)

const (
	TimeInForceGTC = "GTC"

	// DefaultRecvWindow는 요청 유효 시간(ms)입니다
	DefaultRecvWindow = "5000"

	DefaultQuoteCoin   = "USDT"
	DefaultAccountType = "CONTRACT"
)

// Step 상태 문자열은 API 응답에 그대로 노출됩니다
const (
	StatusPlaced               = "placed"
	StatusFailed               = "failed"
	StatusSkipped              = "skipped"
	StatusConfirmationRequired = "confirmation_required"
	StatusClosed               = "closed"
	StatusAlreadyClosed        = "already closed"
)
