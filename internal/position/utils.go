package position

import (
	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
)

// GetOrderSideForExit는 포지션 청산을 위한 주문 사이드를 반환합니다
func GetOrderSideForExit(positionSide domain.OrderSide) domain.OrderSide {
	return positionSide.Opposite()
}

// GetPositionIdx는 포지션 모드와 방향에 맞는 positionIdx를 반환합니다.
// 단방향 모드는 0, 양방향 모드는 매수 1 / 매도 2 입니다.
func GetPositionIdx(mode domain.PositionMode, side domain.OrderSide) int {
	if mode != domain.HedgeMode {
		return 0
	}
	if side == domain.Buy {
		return 1
	}
	return 2
}

// StopLossPrice는 진입가 기준 손절가를 계산합니다.
// 롱은 진입가 아래, 숏은 진입가 위에 둡니다.
func StopLossPrice(side domain.OrderSide, entry, pct decimal.Decimal) decimal.Decimal {
	offset := entry.Mul(pct)
	if side == domain.Buy {
		return entry.Sub(offset)
	}
	return entry.Add(offset)
}

// StopLossTrigger는 손절 조건부 주문의 발동 방향을 반환합니다
func StopLossTrigger(side domain.OrderSide) domain.TriggerDirection {
	if side == domain.Buy {
		return domain.TriggerFalls
	}
	return domain.TriggerRises
}

// ClampLeverage는 요청 레버리지를 심볼 한도 안으로 맞춥니다.
// 최대값 초과는 에러 없이 최대값으로 캡핑됩니다.
func ClampLeverage(requested decimal.Decimal, spec *domain.InstrumentSpec) decimal.Decimal {
	lev := requested
	if spec == nil {
		return lev
	}
	if spec.MaxLeverage.IsPositive() && lev.GreaterThan(spec.MaxLeverage) {
		lev = spec.MaxLeverage
	}
	if spec.MinLeverage.IsPositive() && lev.LessThan(spec.MinLeverage) {
		lev = spec.MinLeverage
	}
	return lev
}
