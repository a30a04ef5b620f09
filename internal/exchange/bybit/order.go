package bybit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/assist-by/bridge/internal/domain"
)

// PlaceOrder는 새로운 주문을 생성합니다.
// 파라미터 순서는 고정되어 있으며 서명된 본문이 그대로 전송됩니다.
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (*domain.OrderResponse, error) {
	if order.Type == "" {
		order.Type = domain.Market
	}
	if order.TimeInForce == "" {
		order.TimeInForce = domain.TimeInForceGTC
	}
	if order.OrderLinkID == "" {
		order.OrderLinkID = uuid.NewString()
	}

	params := NewParams().
		Add("category", string(c.category)).
		Add("symbol", order.Symbol).
		Add("side", string(order.Side)).
		Add("orderType", string(order.Type)).
		Add("qty", order.Quantity)

	if order.Type == domain.Limit && order.Price != "" {
		params.Add("price", order.Price)
	}

	// 조건부 주문 (손절)
	if order.TriggerPrice != "" {
		params.Add("triggerPrice", order.TriggerPrice).
			AddInt("triggerDirection", int(order.TriggerDirection)).
			Add("triggerBy", "LastPrice")
	}

	params.Add("timeInForce", order.TimeInForce).
		AddInt("positionIdx", order.PositionIdx).
		AddBool("reduceOnly", order.ReduceOnly).
		AddBool("closeOnTrigger", order.CloseOnTrigger).
		Add("orderLinkId", order.OrderLinkID)

	var result domain.OrderResponse
	if err := c.doRequest(ctx, http.MethodPost, endpointCreateOrder, params, &result); err != nil {
		return nil, fmt.Errorf("주문 실패: %w", err)
	}

	if result.OrderLinkID == "" {
		result.OrderLinkID = order.OrderLinkID
	}
	return &result, nil
}
