// internal/exchange/bybit/client.go
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/bridge/internal/domain"
	"github.com/assist-by/bridge/internal/logger"
)

const (
	MainnetURL = "https://api.bybit.com"
	TestnetURL = "https://api-testnet.bybit.com"
)

// V5 엔드포인트
const (
	endpointTickers     = "/v5/market/tickers"
	endpointInstruments = "/v5/market/instruments-info"
	endpointWallet      = "/v5/account/wallet-balance"
	endpointPositions   = "/v5/position/list"
	endpointClosedPnL   = "/v5/position/closed-pnl"
	endpointSwitchMode  = "/v5/position/switch-mode"
	endpointSetLeverage = "/v5/position/set-leverage"
	endpointCreateOrder = "/v5/order/create"
)

// 이미 원하는 상태인 경우 거래소가 반환하는 코드
const (
	retCodePositionModeNotModified = 110025
	retCodeLeverageNotModified     = 110043
)

// Client는 바이비트 V5 API 클라이언트를 구현합니다
type Client struct {
	signer      *Signer
	http        *resty.Client
	baseURL     string
	recvWindow  string
	category    domain.Category
	accountType string
	quoteCoin   string
	limiter     *endpointLimiter
	now         func() time.Time
	log         logrus.FieldLogger
}

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithBaseURL은 기본 URL을 설정합니다
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTestnet은 테스트넷 사용 여부를 설정합니다
func WithTestnet(useTestnet bool) ClientOption {
	return func(c *Client) {
		if useTestnet {
			c.baseURL = TestnetURL
		} else {
			c.baseURL = MainnetURL
		}
	}
}

// WithRecvWindow는 요청 유효 시간(ms)을 설정합니다
func WithRecvWindow(recvWindow string) ClientOption {
	return func(c *Client) {
		c.recvWindow = recvWindow
	}
}

// WithCategory는 파생상품 카테고리를 설정합니다 (기본값 linear)
func WithCategory(category domain.Category) ClientOption {
	return func(c *Client) {
		c.category = category
	}
}

// WithAccountType은 잔고 조회 계정 유형을 설정합니다
func WithAccountType(accountType string) ClientOption {
	return func(c *Client) {
		c.accountType = accountType
	}
}

// WithQuoteCoin은 정산 코인을 설정합니다
func WithQuoteCoin(coin string) ClientOption {
	return func(c *Client) {
		c.quoteCoin = coin
	}
}

// WithRateLimit은 엔드포인트별 초당 요청 수와 버스트를 설정합니다
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = newEndpointLimiter(perSecond, burst)
	}
}

// WithClock은 타임스탬프 생성 함수를 교체합니다 (테스트용)
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger는 로거를 설정합니다
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient는 새로운 바이비트 API 클라이언트를 생성합니다
func NewClient(creds domain.Credentials, opts ...ClientOption) *Client {
	c := &Client{
		signer:      NewSigner(creds),
		http:        resty.New().SetTimeout(10 * time.Second),
		baseURL:     TestnetURL,
		recvWindow:  domain.DefaultRecvWindow,
		category:    domain.CategoryLinear,
		accountType: domain.DefaultAccountType,
		quoteCoin:   domain.DefaultQuoteCoin,
		limiter:     newEndpointLimiter(10, 5),
		now:         time.Now,
		log:         logger.Discard(),
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}

	c.http.SetBaseURL(c.baseURL)
	return c
}

// Category는 클라이언트가 사용하는 카테고리를 반환합니다
func (c *Client) Category() domain.Category {
	return c.category
}

type apiResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
	Time    int64           `json:"time"`
}

// doRequest는 서명된 HTTP 요청을 실행하고 result 필드를 out에 디코딩합니다
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params *Params, out any) error {
	if params == nil {
		params = NewParams()
	}

	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return &domain.TransportError{Endpoint: endpoint, Err: err}
	}

	env := Envelope{
		Method:     method,
		Params:     params,
		Timestamp:  c.now().UnixMilli(),
		RecvWindow: c.recvWindow,
	}
	payload := env.Payload()
	signature := c.signer.Sign(env)

	c.log.WithFields(logrus.Fields{
		"endpoint":  endpoint,
		"apiKey":    logger.Mask(c.signer.APIKey()),
		"timestamp": env.Timestamp,
	}).Debugf("서명 payload: %s", payload)

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-BAPI-API-KEY", c.signer.APIKey()).
		SetHeader("X-BAPI-SIGN", signature).
		SetHeader("X-BAPI-SIGN-TYPE", "2").
		SetHeader("X-BAPI-TIMESTAMP", strconv.FormatInt(env.Timestamp, 10)).
		SetHeader("X-BAPI-RECV-WINDOW", c.recvWindow)

	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		// resty의 쿼리 파라미터는 키를 정렬하므로 서명한 문자열을 그대로 붙입니다
		target := endpoint
		if payload != "" {
			target += "?" + payload
		}
		resp, err = req.Get(target)
	case http.MethodPost:
		resp, err = req.
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post(endpoint)
	default:
		return fmt.Errorf("지원하지 않는 메서드: %s", method)
	}
	if err != nil {
		return &domain.TransportError{Endpoint: endpoint, Err: err}
	}

	var apiResp apiResponse
	if jsonErr := json.Unmarshal(resp.Body(), &apiResp); jsonErr != nil {
		if !resp.IsSuccess() {
			return &domain.TransportError{
				Endpoint: endpoint,
				Err:      fmt.Errorf("HTTP 에러(%d): %s", resp.StatusCode(), string(resp.Body())),
			}
		}
		return fmt.Errorf("응답 파싱 실패 [%s]: %w", endpoint, jsonErr)
	}

	if apiResp.RetCode != 0 {
		return &domain.ExchangeRejected{
			Endpoint: endpoint,
			Code:     apiResp.RetCode,
			Message:  apiResp.RetMsg,
		}
	}

	if !resp.IsSuccess() {
		return &domain.TransportError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("HTTP 에러(%d): %s", resp.StatusCode(), apiResp.RetMsg),
		}
	}

	if out == nil || len(apiResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(apiResp.Result, out); err != nil {
		return fmt.Errorf("result 파싱 실패 [%s]: %w", endpoint, err)
	}
	return nil
}
