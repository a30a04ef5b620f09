package notification

import "github.com/assist-by/bridge/internal/domain"

const (
	ColorSuccess = 0x00FF00 // 녹색
	ColorError   = 0xFF0000 // 빨간색
	ColorInfo    = 0x0000FF // 파란색
	ColorWarning = 0xFFA500 // 주황색
)

// Notifier는 알림 전송 인터페이스를 정의합니다.
// 알림 실패는 거래 결과에 영향을 주지 않습니다.
type Notifier interface {
	// SendError는 에러 알림을 전송합니다
	SendError(err error) error

	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(message string) error

	// SendTradeInfo는 거래 실행 정보를 전송합니다
	SendTradeInfo(info TradeInfo) error

	// SendCloseInfo는 포지션 청산 정보를 전송합니다
	SendCloseInfo(info CloseInfo) error
}

// TradeInfo는 거래 실행 정보를 정의합니다
type TradeInfo struct {
	Symbol         string           // 심볼 (예: BTCUSDT)
	Side           domain.OrderSide // Buy / Sell
	Quantity       string           // 주문 수량
	EntryPrice     string           // 사이징 기준가
	Notional       string           // 주문 금액 (USDT)
	Leverage       string           // 적용 레버리지
	StopLoss       string           // 손절가 (없으면 빈 문자열)
	StopLossStatus string           // 손절 주문 상태
	OrderID        string
	Warnings       []string // 진행은 되었지만 실패한 단계
}

// CloseInfo는 포지션 청산 정보를 정의합니다
type CloseInfo struct {
	Symbol   string
	Side     domain.OrderSide // 청산 주문 방향
	Quantity string
	OrderID  string
	Status   string
}

// GetColorForSide는 주문 방향에 따른 색상을 반환합니다
func GetColorForSide(side domain.OrderSide) int {
	switch side {
	case domain.Buy:
		return ColorSuccess
	case domain.Sell:
		return ColorError
	default:
		return ColorInfo
	}
}

// Nop은 아무것도 전송하지 않는 Notifier입니다 (웹훅 미설정 시)
type Nop struct{}

func (Nop) SendError(error) error         { return nil }
func (Nop) SendInfo(string) error         { return nil }
func (Nop) SendTradeInfo(TradeInfo) error { return nil }
func (Nop) SendCloseInfo(CloseInfo) error { return nil }
