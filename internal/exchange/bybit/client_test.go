package bybit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/bridge/internal/domain"
)

type capturedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
}

// newTestClient는 서명을 검증하는 가짜 거래소 서버와 클라이언트를 생성합니다
func newTestClient(t *testing.T, respond func(req capturedRequest) string, opts ...ClientOption) (*Client, *[]capturedRequest) {
	t.Helper()

	var captured []capturedRequest
	signer := testSigner()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := capturedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Body:     string(raw),
		}
		captured = append(captured, req)

		payload := req.RawQuery
		if r.Method == http.MethodPost {
			payload = req.Body
		}
		ts := r.Header.Get("X-BAPI-TIMESTAMP")
		recv := r.Header.Get("X-BAPI-RECV-WINDOW")
		expected := signer.sign(ts + r.Header.Get("X-BAPI-API-KEY") + recv + payload)

		if r.Header.Get("X-BAPI-SIGN") != expected {
			fmt.Fprint(w, `{"retCode":10004,"retMsg":"error sign!","result":{}}`)
			return
		}
		fmt.Fprint(w, respond(req))
	}))
	t.Cleanup(srv.Close)

	base := []ClientOption{
		WithBaseURL(srv.URL),
		WithClock(func() time.Time { return time.UnixMilli(testTimestamp) }),
		WithTimeout(2 * time.Second),
	}
	client := NewClient(domain.Credentials{APIKey: "test-key", APISecret: "test-secret"}, append(base, opts...)...)
	return client, &captured
}

func TestClient_GetInstrument(t *testing.T) {
	client, captured := newTestClient(t, func(req capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[{
			"symbol":"BTCUSDT","status":"Trading",
			"leverageFilter":{"minLeverage":"1","maxLeverage":"100.00","leverageStep":"0.01"},
			"priceFilter":{"minPrice":"0.10","maxPrice":"199999.80","tickSize":"0.10"},
			"lotSizeFilter":{"maxOrderQty":"100.000","minOrderQty":"0.001","qtyStep":"0.001","minNotionalValue":"5"}
		}]}}`
	})

	spec, err := client.GetInstrument(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", spec.Symbol)
	assert.Equal(t, "Trading", spec.Status)
	assert.True(t, spec.QtyStep.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, spec.MinOrderQty.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, spec.MinOrderValue.Equal(decimal.NewFromInt(5)))
	assert.True(t, spec.TickSize.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, spec.MaxLeverage.Equal(decimal.NewFromInt(100)))

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, endpointInstruments, req.Path)
	assert.Equal(t, "category=linear&symbol=BTCUSDT", req.RawQuery)
}

func TestClient_GetInstrumentNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[]}}`
	})

	_, err := client.GetInstrument(context.Background(), "NOPEUSDT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInstrumentNotFound))
}

func TestClient_PlaceOrderBody(t *testing.T) {
	client, captured := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"orderId":"1321003749386327552","orderLinkId":"link-1"}}`
	})

	resp, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol:      "BTCUSDT",
		Side:        domain.Buy,
		Type:        domain.Market,
		Quantity:    "0.002",
		OrderLinkID: "link-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "1321003749386327552", resp.OrderID)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, endpointCreateOrder, req.Path)
	assert.Equal(t,
		`{"category":"linear","symbol":"BTCUSDT","side":"Buy","orderType":"Market","qty":"0.002","timeInForce":"GTC","positionIdx":0,"reduceOnly":false,"closeOnTrigger":false,"orderLinkId":"link-1"}`,
		req.Body)
}

func TestClient_PlaceConditionalOrder(t *testing.T) {
	client, captured := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"orderId":"sl-1","orderLinkId":""}}`
	})

	resp, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol:           "BTCUSDT",
		Side:             domain.Sell,
		Quantity:         "0.002",
		TriggerPrice:     "29400.0",
		TriggerDirection: domain.TriggerFalls,
		ReduceOnly:       true,
		CloseOnTrigger:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "sl-1", resp.OrderID)
	assert.NotEmpty(t, resp.OrderLinkID, "생성된 orderLinkId가 채워져야 합니다")

	body := (*captured)[0].Body
	assert.Contains(t, body, `"orderType":"Market"`)
	assert.Contains(t, body, `"triggerPrice":"29400.0","triggerDirection":2,"triggerBy":"LastPrice"`)
	assert.Contains(t, body, `"reduceOnly":true,"closeOnTrigger":true`)
}

func TestClient_RejectedRetCode(t *testing.T) {
	client, _ := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":110007,"retMsg":"ab not enough for new order","result":{}}`
	})

	_, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol: "BTCUSDT", Side: domain.Buy, Quantity: "1",
	})
	require.Error(t, err)

	rejected, ok := domain.AsRejected(err)
	require.True(t, ok)
	assert.Equal(t, 110007, rejected.Code)
	assert.Equal(t, "ab not enough for new order", rejected.Message)
	assert.False(t, domain.IsTransport(err))
}

func TestClient_IdempotentSettings(t *testing.T) {
	tests := []struct {
		name    string
		retCode int
		call    func(c *Client) error
		wantErr bool
	}{
		{
			name:    "레버리지 변경 없음은 성공",
			retCode: retCodeLeverageNotModified,
			call: func(c *Client) error {
				return c.SetLeverage(context.Background(), "BTCUSDT", decimal.NewFromInt(10))
			},
		},
		{
			name:    "포지션 모드 변경 없음은 성공",
			retCode: retCodePositionModeNotModified,
			call: func(c *Client) error {
				return c.SetPositionMode(context.Background(), "BTCUSDT", domain.OneWayMode)
			},
		},
		{
			name:    "그 외 거부는 실패",
			retCode: 10001,
			call: func(c *Client) error {
				return c.SetLeverage(context.Background(), "BTCUSDT", decimal.NewFromInt(10))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(capturedRequest) string {
				return `{"retCode":` + strconv.Itoa(tt.retCode) + `,"retMsg":"not modified","result":{}}`
			})

			err := tt.call(client)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_SetLeverageBody(t *testing.T) {
	client, captured := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{}}`
	})

	require.NoError(t, client.SetLeverage(context.Background(), "BTCUSDT", decimal.NewFromInt(25)))
	assert.Equal(t,
		`{"category":"linear","symbol":"BTCUSDT","buyLeverage":"25","sellLeverage":"25"}`,
		(*captured)[0].Body)
}

func TestClient_GetPositions(t *testing.T) {
	client, captured := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[
			{"symbol":"ETHUSDT","side":"Sell","size":"0.50","avgPrice":"2000","markPrice":"1990",
			 "leverage":"10","unrealisedPnl":"5","positionValue":"1000","positionIdx":0,"updatedTime":"1700000000000"}
		]}}`
	})

	positions, err := client.GetPositions(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, positions, 1)

	p := positions[0]
	assert.Equal(t, domain.Sell, p.Side)
	assert.Equal(t, "0.50", p.RawSize)
	assert.True(t, p.Size.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, p.IsOpen())
	assert.Equal(t, time.UnixMilli(1700000000000), p.UpdatedTime)

	assert.Equal(t, "category=linear&settleCoin=USDT&limit=50", (*captured)[0].RawQuery)
}

func TestClient_GetTickersQuery(t *testing.T) {
	client, captured := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"category":"spot","list":[{"symbol":"BTCUSDT","lastPrice":"30000.5"}]}}`
	})

	tickers, err := client.GetTickers(context.Background(), "", "BTCUSDT", "")
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "30000.5", tickers[0].LastPrice)
	assert.Equal(t, "category=spot&symbol=BTCUSDT", (*captured)[0].RawQuery)
}

func TestClient_GetBalanceQuery(t *testing.T) {
	client, captured := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"list":[{"accountType":"CONTRACT","totalEquity":"100","coin":[{"coin":"USDT","walletBalance":"100"}]}]}}`
	})

	balances, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Len(t, balances[0].Coins, 1)
	assert.Equal(t, "USDT", balances[0].Coins[0].Coin)
	assert.Equal(t, "accountType=CONTRACT&coin=USDT", (*captured)[0].RawQuery)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(
		domain.Credentials{APIKey: "k", APISecret: "s"},
		WithBaseURL(srv.URL),
		WithTimeout(50*time.Millisecond),
	)

	_, err := client.GetTickers(context.Background(), domain.CategoryLinear, "BTCUSDT", "")
	require.Error(t, err)
	assert.True(t, domain.IsTransport(err))
	assert.False(t, strings.Contains(err.Error(), "retCode"))
}

func TestClient_RateLimitPerEndpoint(t *testing.T) {
	client, captured := newTestClient(t, func(capturedRequest) string {
		return `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`
	}, WithRateLimit(1, 1))

	ctx := context.Background()
	_, err := client.GetTickers(ctx, domain.CategoryLinear, "BTCUSDT", "")
	require.NoError(t, err)

	// 다른 엔드포인트는 토큰을 공유하지 않습니다
	start := time.Now()
	_, err = client.GetBalance(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// 같은 엔드포인트는 다음 토큰까지 기다려야 합니다
	shortCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = client.GetTickers(shortCtx, domain.CategoryLinear, "BTCUSDT", "")
	require.Error(t, err)
	assert.True(t, domain.IsTransport(err))
	assert.Len(t, *captured, 2)
}
