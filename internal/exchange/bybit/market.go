package bybit

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/assist-by/bridge/internal/domain"
)

// GetTickers는 시세를 조회합니다. symbol과 baseCoin은 비어있으면 생략됩니다.
func (c *Client) GetTickers(ctx context.Context, category domain.Category, symbol, baseCoin string) ([]domain.Ticker, error) {
	if category == "" {
		category = domain.CategorySpot
	}

	params := NewParams().Add("category", string(category))
	if symbol != "" {
		params.Add("symbol", symbol)
	}
	if baseCoin != "" {
		params.Add("baseCoin", baseCoin)
	}

	var result struct {
		Category string          `json:"category"`
		List     []domain.Ticker `json:"list"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpointTickers, params, &result); err != nil {
		return nil, fmt.Errorf("시세 조회 실패: %w", err)
	}

	return result.List, nil
}

type instrumentInfo struct {
	Symbol         string `json:"symbol"`
	Status         string `json:"status"`
	LeverageFilter struct {
		MinLeverage string `json:"minLeverage"`
		MaxLeverage string `json:"maxLeverage"`
	} `json:"leverageFilter"`
	PriceFilter struct {
		TickSize string `json:"tickSize"`
	} `json:"priceFilter"`
	LotSizeFilter struct {
		QtyStep          string `json:"qtyStep"`
		MinOrderQty      string `json:"minOrderQty"`
		MaxOrderQty      string `json:"maxOrderQty"`
		MinNotionalValue string `json:"minNotionalValue"`
		// 현물 카테고리 필드
		BasePrecision string `json:"basePrecision"`
		MinOrderAmt   string `json:"minOrderAmt"`
	} `json:"lotSizeFilter"`
}

// GetInstrument는 심볼의 거래 규칙을 조회합니다.
// 거래소가 빈 목록을 반환하면 domain.ErrInstrumentNotFound를 감싸서 반환합니다.
func (c *Client) GetInstrument(ctx context.Context, symbol string) (*domain.InstrumentSpec, error) {
	params := NewParams().
		Add("category", string(c.category)).
		Add("symbol", symbol)

	var result struct {
		Category string           `json:"category"`
		List     []instrumentInfo `json:"list"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpointInstruments, params, &result); err != nil {
		return nil, fmt.Errorf("심볼 정보 조회 실패: %w", err)
	}

	if len(result.List) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstrumentNotFound, symbol)
	}

	// 첫 번째(유일한) 심볼 정보 사용
	info := result.List[0]
	lot := info.LotSizeFilter

	qtyStep := firstNonEmpty(lot.QtyStep, lot.BasePrecision)
	minValue := firstNonEmpty(lot.MinNotionalValue, lot.MinOrderAmt)

	return &domain.InstrumentSpec{
		Symbol:        info.Symbol,
		Status:        info.Status,
		QtyStep:       parseDecimal(qtyStep),
		MinOrderQty:   parseDecimal(lot.MinOrderQty),
		MaxOrderQty:   parseDecimal(lot.MaxOrderQty),
		MinOrderValue: parseDecimal(minValue),
		TickSize:      parseDecimal(info.PriceFilter.TickSize),
		MinLeverage:   parseDecimal(info.LeverageFilter.MinLeverage),
		MaxLeverage:   parseDecimal(info.LeverageFilter.MaxLeverage),
	}, nil
}

// parseDecimal은 거래소 숫자 문자열을 변환합니다. 빈 값이나 잘못된 값은 0입니다.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
