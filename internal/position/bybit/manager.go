package bybit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/bridge/internal/domain"
	"github.com/assist-by/bridge/internal/exchange"
	"github.com/assist-by/bridge/internal/notification"
	"github.com/assist-by/bridge/internal/position"
)

// BybitPositionManager는 바이비트에서 포지션 관리를 담당합니다
type BybitPositionManager struct {
	exchange        exchange.Exchange
	notifier        notification.Notifier
	resolver        *position.InstrumentResolver
	log             logrus.FieldLogger
	category        domain.Category
	mode            domain.PositionMode
	defaultLeverage decimal.Decimal
	stopLossEnabled bool
	stopLossPct     decimal.Decimal
	settleDelay     time.Duration
}

var _ position.Manager = (*BybitPositionManager)(nil)

// Option은 매니저 생성 옵션을 정의합니다
type Option func(*BybitPositionManager)

// WithLogger는 로거를 설정합니다
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *BybitPositionManager) {
		m.log = log
	}
}

// WithCategory는 시세 조회 카테고리를 설정합니다
func WithCategory(category domain.Category) Option {
	return func(m *BybitPositionManager) {
		m.category = category
	}
}

// WithHedgeMode는 양방향 포지션 모드 사용 여부를 설정합니다
func WithHedgeMode(enabled bool) Option {
	return func(m *BybitPositionManager) {
		if enabled {
			m.mode = domain.HedgeMode
		} else {
			m.mode = domain.OneWayMode
		}
	}
}

// WithDefaultLeverage는 레버리지 미지정 시 사용할 값을 설정합니다
func WithDefaultLeverage(leverage decimal.Decimal) Option {
	return func(m *BybitPositionManager) {
		m.defaultLeverage = leverage
	}
}

// WithStopLoss는 손절 주문 사용 여부와 진입가 대비 비율을 설정합니다
func WithStopLoss(enabled bool, pct decimal.Decimal) Option {
	return func(m *BybitPositionManager) {
		m.stopLossEnabled = enabled
		m.stopLossPct = pct
	}
}

// WithSettleDelay는 청산 주문 후 확인까지의 대기 시간을 설정합니다
func WithSettleDelay(delay time.Duration) Option {
	return func(m *BybitPositionManager) {
		m.settleDelay = delay
	}
}

// NewManager는 새로운 바이비트 포지션 매니저를 생성합니다
func NewManager(ex exchange.Exchange, notifier notification.Notifier, opts ...Option) *BybitPositionManager {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	m := &BybitPositionManager{
		exchange:        ex,
		notifier:        notifier,
		resolver:        position.NewInstrumentResolver(ex),
		log:             logrus.StandardLogger(),
		category:        domain.CategoryLinear,
		mode:            domain.OneWayMode,
		defaultLeverage: decimal.NewFromInt(10),
		stopLossEnabled: true,
		stopLossPct:     decimal.RequireFromString("0.02"),
		settleDelay:     2 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OpenPosition은 요청 금액을 주문 수량으로 변환해 포지션을 생성합니다.
//
// 단계: 심볼 규칙 조회 → 포지션 모드 → 레버리지 → 가격 조회 → 수량 계산 → (조정 확인) → 주문 → 손절.
// 모드/레버리지 실패는 경고로 남기고 진행하며, 손절 실패는 이미 체결된 주문을 되돌리지 않습니다.
func (m *BybitPositionManager) OpenPosition(ctx context.Context, req *position.OpenRequest) (*position.OrderResult, error) {
	if req == nil {
		return nil, domain.NewValidationError("", "empty order request")
	}

	intent := req.Intent
	intent.Symbol = strings.ToUpper(strings.TrimSpace(intent.Symbol))
	if intent.Leverage.IsZero() {
		intent.Leverage = m.defaultLeverage
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	orderType := req.Type
	if orderType == "" {
		orderType = domain.Market
	}
	if orderType == domain.Limit && !req.LimitPrice.IsPositive() {
		return nil, domain.NewValidationError("price", "limit order requires a price")
	}

	symbol := intent.Symbol
	log := m.log.WithFields(logrus.Fields{
		"symbol":   symbol,
		"side":     intent.Side,
		"notional": intent.Notional.String(),
	})
	if req.ClientPrice.IsPositive() {
		log = log.WithField("clientPrice", req.ClientPrice.String())
	}

	result := &position.OrderResult{
		Symbol:    symbol,
		Side:      string(intent.Side),
		MainOrder: position.StepResult{Status: domain.StatusSkipped},
		StopLoss:  position.StepResult{Status: domain.StatusSkipped},
	}
	positionIdx := position.GetPositionIdx(m.mode, intent.Side)

	var (
		spec  *domain.InstrumentSpec
		price decimal.Decimal
		sized *position.SizedOrder
		main  *domain.OrderResponse
	)

	saga := position.NewSaga("open", log).
		// 1. 심볼 규칙 조회 (레버리지 한도와 수량 단위)
		Step(position.OpResolveInstrument, position.AbortOnFailure, func(ctx context.Context) error {
			var err error
			spec, err = m.resolver.Resolve(ctx, symbol)
			return err
		}).
		// 2. 포지션 모드 설정 (이미 설정되어 있을 수 있음)
		Step(position.OpSetMode, position.ContinueOnFailure, func(ctx context.Context) error {
			return m.exchange.SetPositionMode(ctx, symbol, m.mode)
		}).
		// 3. 레버리지 설정 (한도 초과는 최대값으로 캡핑)
		Step(position.OpSetLeverage, position.ContinueOnFailure, func(ctx context.Context) error {
			leverage := position.ClampLeverage(intent.Leverage, spec)
			if !leverage.Equal(intent.Leverage) {
				log.Infof("요청 레버리지 %s 배를 %s 배로 조정합니다", intent.Leverage, leverage)
			}
			result.Leverage = leverage.String()
			return m.exchange.SetLeverage(ctx, symbol, leverage)
		}).
		// 4. 사이징 기준가 (지정가 주문은 주문가, 시장가는 최종 체결가)
		Step(position.OpFetchPrice, position.AbortOnFailure, func(ctx context.Context) error {
			var err error
			if orderType == domain.Limit {
				price, err = decimal.NewFromString(position.RoundToTick(req.LimitPrice, spec.TickSize))
				return err
			}
			price, err = m.fetchPrice(ctx, symbol)
			return err
		}).
		// 5. 주문 수량 계산
		Step(position.OpSizeQuantity, position.AbortOnFailure, func(ctx context.Context) error {
			var err error
			sized, err = position.SizeQuantity(symbol, intent.Side, intent.Notional, price, spec)
			if err != nil {
				return err
			}
			log.Infof("%s USDT -> %s %s (가격 %s, 수량 단위 %s)",
				intent.Notional, sized.QuantityText, symbol, price, spec.QtyStep)
			return nil
		}).
		// 6. 금액이 조정되었으면 사용자 확인 전까지 주문하지 않음
		Step(position.OpConfirm, position.AbortOnFailure, func(ctx context.Context) error {
			if !sized.Adjusted {
				return nil
			}
			if intent.Confirmed && confirmedMatches(req.ConfirmedAmount, sized) {
				return nil
			}
			if intent.Confirmed {
				log.Infof("승인한 금액 %s 과 다시 계산한 금액 %s 이 달라 재확인이 필요합니다",
					req.ConfirmedAmount.StringFixed(2), sized.AdjustedAmountText())
			} else {
				log.Infof("최소 주문 조건으로 금액이 %s 에서 %s 로 조정되어 확인이 필요합니다",
					intent.Notional, sized.AdjustedAmountText())
			}
			result.RequiresConfirmation = true
			result.MainOrder.Status = domain.StatusConfirmationRequired
			return position.ErrHalt
		}).
		// 7. 진입 주문
		Step(position.OpPlaceOrder, position.AbortOnFailure, func(ctx context.Context) error {
			order := domain.OrderRequest{
				Symbol:      symbol,
				Side:        intent.Side,
				Type:        orderType,
				Quantity:    sized.QuantityText,
				TimeInForce: domain.TimeInForceGTC,
				PositionIdx: positionIdx,
			}
			if orderType == domain.Limit {
				order.Price = position.RoundToTick(req.LimitPrice, spec.TickSize)
			}

			var err error
			main, err = m.exchange.PlaceOrder(ctx, order)
			if err != nil {
				return err
			}
			result.MainOrder = position.StepResult{Status: domain.StatusPlaced, OrderID: main.OrderID}
			return nil
		}).
		// 8. 손절 주문 (실패해도 진입 주문은 유지)
		Step(position.OpPlaceStopLoss, position.ContinueOnFailure, func(ctx context.Context) error {
			if !m.stopLossEnabled {
				return nil
			}
			stopPrice := position.RoundToTick(
				position.StopLossPrice(intent.Side, sized.ReferencePrice, m.stopLossPct), spec.TickSize)
			result.StopLossPrice = stopPrice

			resp, err := m.exchange.PlaceOrder(ctx, domain.OrderRequest{
				Symbol:           symbol,
				Side:             position.GetOrderSideForExit(intent.Side),
				Type:             domain.Market,
				Quantity:         sized.QuantityText,
				TriggerPrice:     stopPrice,
				TriggerDirection: position.StopLossTrigger(intent.Side),
				TimeInForce:      domain.TimeInForceGTC,
				PositionIdx:      positionIdx,
				ReduceOnly:       true,
				CloseOnTrigger:   true,
			})
			if err != nil {
				result.StopLoss = failedStep(err)
				return fmt.Errorf("%w: %v", position.ErrStopLossFail, err)
			}
			result.StopLoss = position.StepResult{Status: domain.StatusPlaced, OrderID: resp.OrderID}
			return nil
		})

	report := saga.Run(ctx)
	result.Warnings = partialFailures(report)

	if sized != nil {
		result.OriginalAmount = intent.Notional.String()
		result.AdjustedAmount = sized.AdjustedAmountText()
		result.OrderDetails = &position.OrderDetails{
			Qty:           intent.Notional.String(),
			CalculatedQty: sized.QuantityText,
			Price:         price.String(),
		}
	}

	if report.Aborted {
		if report.AbortedAt == position.OpPlaceOrder {
			result.MainOrder = failedStep(report.Err)
		}
		posErr := position.NewPositionError(symbol, report.AbortedAt, report.Err)
		m.notify(log, func() error { return m.notifier.SendError(posErr) })
		return result, posErr
	}

	if report.Halted {
		return result, nil
	}

	m.notify(log, func() error {
		return m.notifier.SendTradeInfo(notification.TradeInfo{
			Symbol:         symbol,
			Side:           intent.Side,
			Quantity:       sized.QuantityText,
			EntryPrice:     price.String(),
			Notional:       sized.AdjustedAmountText(),
			Leverage:       result.Leverage,
			StopLoss:       result.StopLossPrice,
			StopLossStatus: result.StopLoss.Status,
			OrderID:        result.MainOrder.OrderID,
			Warnings:       result.Warnings,
		})
	})

	return result, nil
}

// GetActivePositions는 수량이 0이 아닌 포지션 목록을 반환합니다
func (m *BybitPositionManager) GetActivePositions(ctx context.Context) ([]domain.Position, error) {
	positions, err := m.exchange.GetPositions(ctx, "")
	if err != nil {
		return nil, err
	}

	active := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		if p.IsOpen() {
			active = append(active, p)
		}
	}
	return active, nil
}

// fetchPrice는 시세의 최종 체결가를 조회합니다
func (m *BybitPositionManager) fetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	tickers, err := m.exchange.GetTickers(ctx, m.category, symbol, "")
	if err != nil {
		return decimal.Zero, err
	}
	for _, t := range tickers {
		if t.Symbol != "" && t.Symbol != symbol {
			continue
		}
		price, err := decimal.NewFromString(t.LastPrice)
		if err != nil || !price.IsPositive() {
			break
		}
		return price, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrPriceUnavailable, symbol)
}

// confirmedMatches는 승인한 금액이 없거나 조정 금액과 같으면 true입니다
func confirmedMatches(confirmed decimal.Decimal, sized *position.SizedOrder) bool {
	if confirmed.IsZero() {
		return true
	}
	return confirmed.StringFixed(2) == sized.AdjustedAmountText()
}

// notify는 알림을 전송하고 실패는 로그만 남깁니다
func (m *BybitPositionManager) notify(log logrus.FieldLogger, send func() error) {
	if err := send(); err != nil {
		log.WithError(err).Warn("알림 전송 실패")
	}
}

// partialFailures는 실패했지만 진행된 설정 단계(모드/레버리지)를 경고로 변환합니다.
// 손절 실패는 stopLoss 상태로 따로 보고됩니다.
func partialFailures(report position.SagaReport) []string {
	var warnings []string
	for _, s := range report.Steps {
		if s.Status != position.StepFailed || s.Policy != position.ContinueOnFailure {
			continue
		}
		if s.Name == position.OpPlaceStopLoss {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("%s: %v", s.Name, s.Err))
	}
	return warnings
}

// failedStep은 에러를 단계 결과로 변환합니다. 거래소 거부는 코드와 메시지를 그대로 보존합니다.
func failedStep(err error) position.StepResult {
	step := position.StepResult{Status: domain.StatusFailed, Error: err.Error()}
	if rejected, ok := domain.AsRejected(err); ok {
		step.Code = rejected.Code
		step.Error = rejected.Message
	}
	return step
}
