package bybit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
)

const positionListLimit = 50

// GetBalance는 계정의 잔고를 조회합니다
func (c *Client) GetBalance(ctx context.Context) ([]domain.Balance, error) {
	params := NewParams().
		Add("accountType", c.accountType).
		Add("coin", c.quoteCoin)

	var result struct {
		List []domain.Balance `json:"list"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpointWallet, params, &result); err != nil {
		return nil, fmt.Errorf("잔고 조회 실패: %w", err)
	}

	return result.List, nil
}

type positionInfo struct {
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Size          string `json:"size"`
	AvgPrice      string `json:"avgPrice"`
	MarkPrice     string `json:"markPrice"`
	Leverage      string `json:"leverage"`
	UnrealisedPnl string `json:"unrealisedPnl"`
	PositionValue string `json:"positionValue"`
	PositionIdx   int    `json:"positionIdx"`
	StopLoss      string `json:"stopLoss"`
	UpdatedTime   string `json:"updatedTime"`
}

func (p positionInfo) toDomain() domain.Position {
	pos := domain.Position{
		Symbol:        p.Symbol,
		Side:          domain.OrderSide(p.Side),
		Size:          parseDecimal(p.Size),
		RawSize:       p.Size,
		AvgPrice:      parseDecimal(p.AvgPrice),
		MarkPrice:     parseDecimal(p.MarkPrice),
		Leverage:      parseDecimal(p.Leverage),
		UnrealizedPnL: parseDecimal(p.UnrealisedPnl),
		PositionValue: parseDecimal(p.PositionValue),
		PositionIdx:   p.PositionIdx,
		StopLoss:      p.StopLoss,
	}
	if ms, err := strconv.ParseInt(p.UpdatedTime, 10, 64); err == nil {
		pos.UpdatedTime = time.UnixMilli(ms)
	}
	return pos
}

// GetPositions는 포지션을 조회합니다.
// symbol이 비어있으면 정산 코인 기준 전체 포지션을 조회합니다.
func (c *Client) GetPositions(ctx context.Context, symbol string) ([]domain.Position, error) {
	params := NewParams().Add("category", string(c.category))
	if symbol != "" {
		params.Add("symbol", symbol)
	} else {
		params.Add("settleCoin", c.quoteCoin)
	}
	params.AddInt("limit", positionListLimit)

	var result struct {
		Category string         `json:"category"`
		List     []positionInfo `json:"list"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpointPositions, params, &result); err != nil {
		return nil, fmt.Errorf("포지션 조회 실패: %w", err)
	}

	positions := make([]domain.Position, 0, len(result.List))
	for _, raw := range result.List {
		positions = append(positions, raw.toDomain())
	}
	return positions, nil
}

// GetClosedPnL은 청산 손익 기록을 조회합니다
func (c *Client) GetClosedPnL(ctx context.Context, category domain.Category, limit int) ([]domain.ClosedPnL, error) {
	if category == "" {
		category = c.category
	}
	if limit <= 0 {
		limit = positionListLimit
	}

	params := NewParams().
		Add("category", string(category)).
		AddInt("limit", limit)

	var result struct {
		List []domain.ClosedPnL `json:"list"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpointClosedPnL, params, &result); err != nil {
		return nil, fmt.Errorf("청산 손익 조회 실패: %w", err)
	}

	return result.List, nil
}

// SetPositionMode는 포지션 모드를 설정합니다.
// 이미 같은 모드인 경우 성공으로 처리합니다.
func (c *Client) SetPositionMode(ctx context.Context, symbol string, mode domain.PositionMode) error {
	params := NewParams().
		Add("category", string(c.category)).
		Add("symbol", symbol).
		AddInt("mode", int(mode))

	err := c.doRequest(ctx, http.MethodPost, endpointSwitchMode, params, nil)
	if rejected, ok := domain.AsRejected(err); ok && rejected.Code == retCodePositionModeNotModified {
		c.log.WithField("symbol", symbol).Debug("포지션 모드가 이미 설정되어 있습니다")
		return nil
	}
	if err != nil {
		return fmt.Errorf("포지션 모드 설정 실패: %w", err)
	}
	return nil
}

// SetLeverage는 레버리지를 설정합니다. 매수/매도 레버리지를 같은 값으로 맞춥니다.
// 이미 같은 레버리지인 경우 성공으로 처리합니다.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage decimal.Decimal) error {
	lev := leverage.String()
	params := NewParams().
		Add("category", string(c.category)).
		Add("symbol", symbol).
		Add("buyLeverage", lev).
		Add("sellLeverage", lev)

	err := c.doRequest(ctx, http.MethodPost, endpointSetLeverage, params, nil)
	if rejected, ok := domain.AsRejected(err); ok && rejected.Code == retCodeLeverageNotModified {
		c.log.WithField("symbol", symbol).Debug("레버리지가 이미 설정되어 있습니다")
		return nil
	}
	if err != nil {
		return fmt.Errorf("레버리지 설정 실패: %w", err)
	}
	return nil
}
