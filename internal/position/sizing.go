package position

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
)

// SizedOrder는 명목 금액을 거래소 규칙에 맞는 수량으로 변환한 결과입니다.
// 생성 이후에는 변경하지 않습니다.
type SizedOrder struct {
	Symbol         string
	Side           domain.OrderSide
	Quantity       decimal.Decimal // qtyStep의 정수배
	QuantityText   string          // qtyStep 소수점 자릿수로 포맷된 주문 수량
	ReferencePrice decimal.Decimal // 사이징에 사용한 가격
	RawQuantity    decimal.Decimal // notional / price
	OriginalAmount decimal.Decimal // 요청한 USDT 금액
	AdjustedAmount decimal.Decimal // 최종 수량 * 가격
	Adjusted       bool            // 최소 수량/최소 주문 금액 때문에 금액이 증가했는지 여부
}

// AdjustedAmountText는 조정된 금액을 소수점 2자리로 반환합니다 (예: "50.00")
func (s *SizedOrder) AdjustedAmountText() string {
	return s.AdjustedAmount.StringFixed(2)
}

// SizeQuantity는 명목 금액과 가격, 심볼 규칙으로 주문 수량을 계산합니다.
//
//  1. rawQty = notional / price
//  2. qtyStep 단위로 내림/올림한 두 후보를 minOrderQty 이상으로 맞춤
//  3. 요청 금액과의 차이가 작은 후보 선택 (같으면 내림)
//  4. 명목 가치가 minOrderValue 미만이면 qtyStep 단위로 증가
func SizeQuantity(symbol string, side domain.OrderSide, notional, price decimal.Decimal, spec *domain.InstrumentSpec) (*SizedOrder, error) {
	if spec == nil {
		return nil, domain.NewValidationError("instrument", "missing instrument rules")
	}
	if !price.IsPositive() {
		return nil, domain.NewValidationError("price", "must be greater than 0")
	}
	if !notional.IsPositive() {
		return nil, domain.NewValidationError("qty", "notional amount must be greater than 0")
	}
	if !spec.QtyStep.IsPositive() {
		return nil, domain.NewValidationError("qtyStep", "must be greater than 0")
	}

	step := spec.QtyStep
	rawQty := notional.Div(price)

	// 1. 스텝 단위 후보 계산
	steps := rawQty.Div(step)
	floorQty := steps.Floor().Mul(step)
	ceilQty := steps.Ceil().Mul(step)

	// 2. 최소 수량 이상으로 보정 (요청 수량 자체가 최소 수량 미만이면 조정으로 간주)
	clamped := rawQty.LessThan(spec.MinOrderQty)
	floorQty = decimal.Max(floorQty, spec.MinOrderQty)
	ceilQty = decimal.Max(ceilQty, spec.MinOrderQty)

	// 3. 요청 금액에 더 가까운 후보 선택
	floorDiff := notional.Sub(floorQty.Mul(price)).Abs()
	ceilDiff := notional.Sub(ceilQty.Mul(price)).Abs()
	qty := floorQty
	if ceilDiff.LessThan(floorDiff) {
		qty = ceilQty
	}

	// 4. 최소 주문 금액 충족
	bumped := false
	if spec.MinOrderValue.IsPositive() && qty.Mul(price).LessThan(spec.MinOrderValue) {
		qty = bumpToMinValue(qty, step, price, spec.MinOrderValue)
		bumped = true
	}

	if spec.MaxOrderQty.IsPositive() && qty.GreaterThan(spec.MaxOrderQty) {
		return nil, domain.NewValidationError("qty", "quantity "+qty.String()+" exceeds max order qty "+spec.MaxOrderQty.String())
	}

	return &SizedOrder{
		Symbol:         symbol,
		Side:           side,
		Quantity:       qty,
		QuantityText:   qty.StringFixed(StepPlaces(step)),
		ReferencePrice: price,
		RawQuantity:    rawQty,
		OriginalAmount: notional,
		AdjustedAmount: qty.Mul(price),
		Adjusted:       clamped || bumped,
	}, nil
}

// bumpToMinValue는 qty * price >= minValue가 되는 가장 작은 qty + k*step을 반환합니다.
// 한 스텝씩 반복하는 대신 올림 나눗셈으로 k를 구한 뒤 경계만 확인합니다.
func bumpToMinValue(qty, step, price, minValue decimal.Decimal) decimal.Decimal {
	meets := func(k int64) bool {
		return qty.Add(step.Mul(decimal.NewFromInt(k))).Mul(price).GreaterThanOrEqual(minValue)
	}

	shortfall := minValue.Sub(qty.Mul(price))
	k := shortfall.Div(step.Mul(price)).Ceil().IntPart()
	if k < 1 {
		k = 1
	}
	for k > 1 && meets(k-1) {
		k--
	}
	for !meets(k) {
		k++
	}
	return qty.Add(step.Mul(decimal.NewFromInt(k)))
}

// StepPlaces는 스텝 값이 의미하는 소수점 자릿수를 반환합니다 (0.001 -> 3, 0.10 -> 1, 1 -> 0)
func StepPlaces(step decimal.Decimal) int32 {
	s := step.String()
	idx := strings.IndexByte(s, '.')
	if idx < 0 {
		return 0
	}
	return int32(len(s) - idx - 1)
}

// RoundToTick은 가격을 tickSize 단위로 반올림하고 tickSize 자릿수로 포맷합니다.
// tickSize가 없으면 원래 가격을 그대로 문자열로 만듭니다.
func RoundToTick(price, tickSize decimal.Decimal) string {
	if !tickSize.IsPositive() {
		return price.String()
	}
	rounded := price.Div(tickSize).Round(0).Mul(tickSize)
	return rounded.StringFixed(StepPlaces(tickSize))
}
