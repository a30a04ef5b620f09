// internal/exchange/exchange.go
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
)

// Exchange는 거래소와의 상호작용을 위한 인터페이스입니다.
// 모든 호출은 타임아웃이 있어야 하며 실패는 domain.TransportError 또는
// domain.ExchangeRejected로 구분됩니다.
type Exchange interface {
	// 시장 데이터 조회
	GetTickers(ctx context.Context, category domain.Category, symbol, baseCoin string) ([]domain.Ticker, error)
	GetInstrument(ctx context.Context, symbol string) (*domain.InstrumentSpec, error)

	// 계정 데이터 조회
	GetBalance(ctx context.Context) ([]domain.Balance, error)
	GetPositions(ctx context.Context, symbol string) ([]domain.Position, error)
	GetClosedPnL(ctx context.Context, category domain.Category, limit int) ([]domain.ClosedPnL, error)

	// 거래 기능
	PlaceOrder(ctx context.Context, order domain.OrderRequest) (*domain.OrderResponse, error)

	// 설정 기능
	SetLeverage(ctx context.Context, symbol string, leverage decimal.Decimal) error
	SetPositionMode(ctx context.Context, symbol string, mode domain.PositionMode) error
}
