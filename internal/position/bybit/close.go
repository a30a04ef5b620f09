package bybit

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/bridge/internal/domain"
	"github.com/assist-by/bridge/internal/notification"
	"github.com/assist-by/bridge/internal/position"
)

// ClosePosition은 포지션을 거래소에 기록된 수량 그대로 청산합니다.
// 양방향 모드에서는 열린 쪽마다 positionIdx별로 청산 주문을 냅니다.
// 포지션이 없으면 주문 없이 "already closed"를 반환하고, 청산 후에도 수량이 남아있으면
// domain.VerificationFailure를 반환합니다.
func (m *BybitPositionManager) ClosePosition(ctx context.Context, req *position.CloseRequest) (*position.CloseResult, error) {
	if req == nil || strings.TrimSpace(req.Symbol) == "" {
		return nil, domain.NewValidationError("symbol", "must not be empty")
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	log := m.log.WithField("symbol", symbol)
	if req.Qty != "" {
		// UI 수량은 오래된 값일 수 있으므로 로그로만 남깁니다
		log = log.WithField("requestedQty", req.Qty)
	}

	// 1. 현재 포지션 조회
	open, err := m.openLegs(ctx, symbol)
	if err != nil {
		return nil, position.NewPositionError(symbol, position.OpFetchPosition, err)
	}
	if len(open) == 0 {
		log.Info("청산할 포지션이 없습니다")
		return &position.CloseResult{Symbol: symbol, Status: domain.StatusAlreadyClosed}, nil
	}

	// 2~3. 반대 방향, 기록된 수량 그대로 청산 주문
	legs := make([]position.ClosedLeg, 0, len(open))
	for _, current := range open {
		leg, err := m.closeLeg(ctx, symbol, current)
		if err != nil {
			posErr := position.NewPositionError(symbol, position.OpClose, err)
			m.notify(log, func() error { return m.notifier.SendError(posErr) })
			return nil, posErr
		}
		log.WithFields(logrus.Fields{
			"orderId":     leg.OrderID,
			"positionIdx": leg.PositionIdx,
		}).Infof("청산 주문 완료: %s %s", leg.Side, leg.Qty)
		legs = append(legs, leg)
	}

	// 4. 대기 후 청산 확인
	if err := m.verifyClosed(ctx, log, symbol, legs); err != nil {
		posErr := position.NewPositionError(symbol, position.OpVerify, err)
		m.notify(log, func() error { return m.notifier.SendError(posErr) })
		return nil, posErr
	}

	result := &position.CloseResult{
		Symbol:  symbol,
		Status:  domain.StatusClosed,
		Side:    legs[0].Side,
		Qty:     legs[0].Qty,
		OrderID: legs[0].OrderID,
		Legs:    legs,
	}

	for _, leg := range legs {
		m.notify(log, func() error {
			return m.notifier.SendCloseInfo(notification.CloseInfo{
				Symbol:   symbol,
				Side:     leg.Side,
				Quantity: leg.Qty,
				OrderID:  leg.OrderID,
				Status:   result.Status,
			})
		})
	}

	return result, nil
}

// closeLeg는 포지션 한 쪽을 reduce-only 시장가 주문으로 청산합니다
func (m *BybitPositionManager) closeLeg(ctx context.Context, symbol string, current domain.Position) (position.ClosedLeg, error) {
	closeSide := position.GetOrderSideForExit(current.Side)
	qty := current.RawSize
	if qty == "" {
		qty = current.Size.Abs().String()
	}
	qty = strings.TrimPrefix(qty, "-")

	resp, err := m.exchange.PlaceOrder(ctx, domain.OrderRequest{
		Symbol:         symbol,
		Side:           closeSide,
		Type:           domain.Market,
		Quantity:       qty,
		TimeInForce:    domain.TimeInForceGTC,
		PositionIdx:    current.PositionIdx,
		ReduceOnly:     true,
		CloseOnTrigger: true,
	})
	if err != nil {
		return position.ClosedLeg{}, err
	}

	return position.ClosedLeg{
		PositionIdx: current.PositionIdx,
		Side:        closeSide,
		Qty:         qty,
		OrderID:     resp.OrderID,
	}, nil
}

// verifyClosed는 정해진 시간만큼 기다린 뒤 청산한 positionIdx의 수량이 0인지 확인합니다.
// 대기 중 컨텍스트가 취소되면 확인하지 못한 것으로 보고합니다.
func (m *BybitPositionManager) verifyClosed(ctx context.Context, log logrus.FieldLogger, symbol string, legs []position.ClosedLeg) error {
	timer := time.NewTimer(m.settleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return &domain.VerificationFailure{Symbol: symbol, OrderID: legs[0].OrderID, Err: ctx.Err()}
	case <-timer.C:
	}

	after, err := m.openLegs(ctx, symbol)
	if err != nil {
		return &domain.VerificationFailure{Symbol: symbol, OrderID: legs[0].OrderID, Err: err}
	}

	for _, leg := range legs {
		for _, p := range after {
			if p.PositionIdx != leg.PositionIdx {
				continue
			}
			log.Warnf("청산 후에도 포지션이 남아있습니다: positionIdx %d, %s", p.PositionIdx, p.Size)
			return &domain.VerificationFailure{Symbol: symbol, OrderID: leg.OrderID, Remaining: p.Size.String()}
		}
	}
	return nil
}

// openLegs는 심볼의 열린 포지션을 모두 반환합니다. 단방향 모드에서는 최대 한 개입니다.
func (m *BybitPositionManager) openLegs(ctx context.Context, symbol string) ([]domain.Position, error) {
	positions, err := m.exchange.GetPositions(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var open []domain.Position
	for _, p := range positions {
		if p.Symbol == symbol && p.IsOpen() {
			open = append(open, p)
		}
	}
	return open, nil
}
