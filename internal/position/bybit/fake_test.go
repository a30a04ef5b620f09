package bybit

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
	"github.com/assist-by/bridge/internal/notification"
)

// fakeExchange는 호출을 기록하는 테스트용 거래소입니다
type fakeExchange struct {
	mu sync.Mutex

	spec    *domain.InstrumentSpec
	specErr error

	tickers   []domain.Ticker
	tickerErr error

	// GetPositions 호출마다 순서대로 반환하며 마지막 응답은 반복됩니다
	positions    [][]domain.Position
	positionErrs []error

	modeErr     error
	leverageErr error
	orderErrs   []error // PlaceOrder 호출 순서별 에러

	orders        []domain.OrderRequest
	leverages     []decimal.Decimal
	modes         []domain.PositionMode
	positionCalls int
}

func (f *fakeExchange) GetTickers(ctx context.Context, category domain.Category, symbol, baseCoin string) ([]domain.Ticker, error) {
	if f.tickerErr != nil {
		return nil, f.tickerErr
	}
	return f.tickers, nil
}

func (f *fakeExchange) GetInstrument(ctx context.Context, symbol string) (*domain.InstrumentSpec, error) {
	if f.specErr != nil {
		return nil, f.specErr
	}
	return f.spec, nil
}

func (f *fakeExchange) GetBalance(ctx context.Context) ([]domain.Balance, error) {
	return nil, nil
}

func (f *fakeExchange) GetPositions(ctx context.Context, symbol string) ([]domain.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.positionCalls
	f.positionCalls++

	if idx < len(f.positionErrs) && f.positionErrs[idx] != nil {
		return nil, f.positionErrs[idx]
	}
	if len(f.positions) == 0 {
		return nil, nil
	}
	if idx >= len(f.positions) {
		idx = len(f.positions) - 1
	}
	return f.positions[idx], nil
}

func (f *fakeExchange) GetClosedPnL(ctx context.Context, category domain.Category, limit int) ([]domain.ClosedPnL, error) {
	return nil, nil
}

func (f *fakeExchange) PlaceOrder(ctx context.Context, order domain.OrderRequest) (*domain.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.orders)
	f.orders = append(f.orders, order)
	if idx < len(f.orderErrs) && f.orderErrs[idx] != nil {
		return nil, f.orderErrs[idx]
	}
	return &domain.OrderResponse{OrderID: "order-" + string(rune('1'+idx))}, nil
}

func (f *fakeExchange) SetLeverage(ctx context.Context, symbol string, leverage decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leverages = append(f.leverages, leverage)
	return f.leverageErr
}

func (f *fakeExchange) SetPositionMode(ctx context.Context, symbol string, mode domain.PositionMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
	return f.modeErr
}

// fakeNotifier는 전송된 알림을 기록합니다
type fakeNotifier struct {
	mu     sync.Mutex
	trades []notification.TradeInfo
	closes []notification.CloseInfo
	errors []error
}

func (n *fakeNotifier) SendError(err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, err)
	return nil
}

func (n *fakeNotifier) SendInfo(string) error { return nil }

func (n *fakeNotifier) SendTradeInfo(info notification.TradeInfo) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trades = append(n.trades, info)
	return nil
}

func (n *fakeNotifier) SendCloseInfo(info notification.CloseInfo) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closes = append(n.closes, info)
	return nil
}
