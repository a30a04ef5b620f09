package position

import (
	"context"
	"errors"
	"fmt"

	"github.com/assist-by/bridge/internal/domain"
	"github.com/assist-by/bridge/internal/exchange"
)

// InstrumentResolver는 심볼의 거래 규칙을 조회합니다. 규칙은 캐시하지 않고 요청마다 조회합니다.
type InstrumentResolver struct {
	exchange exchange.Exchange
}

// NewInstrumentResolver는 새로운 InstrumentResolver를 생성합니다
func NewInstrumentResolver(ex exchange.Exchange) *InstrumentResolver {
	return &InstrumentResolver{exchange: ex}
}

// Resolve는 심볼 규칙을 조회하고 사이징에 필요한 값이 있는지 확인합니다
func (r *InstrumentResolver) Resolve(ctx context.Context, symbol string) (*domain.InstrumentSpec, error) {
	spec, err := r.exchange.GetInstrument(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstrumentNotFound, symbol)
	}
	if !spec.QtyStep.IsPositive() {
		return nil, domain.NewValidationError("qtyStep", "instrument "+symbol+" has no lot size step")
	}
	return spec, nil
}

// Exists는 거래소에 심볼이 존재하는지 확인합니다.
// 심볼이 없으면 에러 없이 false를 반환합니다.
func (r *InstrumentResolver) Exists(ctx context.Context, symbol string) (bool, error) {
	_, err := r.exchange.GetInstrument(ctx, symbol)
	if errors.Is(err, domain.ErrInstrumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
