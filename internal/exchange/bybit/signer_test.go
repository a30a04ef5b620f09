package bybit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assist-by/bridge/internal/domain"
)

const testTimestamp int64 = 1700000000000

func testSigner() *Signer {
	return NewSigner(domain.Credentials{APIKey: "test-key", APISecret: "test-secret"})
}

func TestSigner_KnownVectors(t *testing.T) {
	s := testSigner()

	tests := []struct {
		name      string
		env       Envelope
		canonical string
		signature string
	}{
		{
			name: "GET 삽입 순서 유지",
			env: Envelope{
				Method:     http.MethodGet,
				Params:     NewParams().Add("category", "linear").Add("symbol", "BTCUSDT"),
				Timestamp:  testTimestamp,
				RecvWindow: "5000",
			},
			canonical: "1700000000000test-key5000category=linear&symbol=BTCUSDT",
			signature: "9a7c8cfd6ba1a7c498aa4dd5a7f9cfbba01fcb6eebae734ffe0d775870a1a3fb",
		},
		{
			name: "GET 파라미터 없음은 빈 문자열",
			env: Envelope{
				Method:     http.MethodGet,
				Params:     NewParams(),
				Timestamp:  testTimestamp,
				RecvWindow: "5000",
			},
			canonical: "1700000000000test-key5000",
			signature: "d8d5e71d8f986368aa5c13405f059ab6adb4f41df59d2f11bb056226b63457d6",
		},
		{
			name: "POST 파라미터 없음은 {}",
			env: Envelope{
				Method:     http.MethodPost,
				Params:     nil,
				Timestamp:  testTimestamp,
				RecvWindow: "5000",
			},
			canonical: "1700000000000test-key5000{}",
			signature: "2a355c89d157d001223348e2fbb177f4de8f6e84474c1a6fd3c7eadb62ce3f07",
		},
		{
			name: "POST 레버리지 설정",
			env: Envelope{
				Method: http.MethodPost,
				Params: NewParams().
					Add("category", "linear").
					Add("symbol", "BTCUSDT").
					Add("buyLeverage", "10").
					Add("sellLeverage", "10"),
				Timestamp:  testTimestamp,
				RecvWindow: "5000",
			},
			canonical: `1700000000000test-key5000{"category":"linear","symbol":"BTCUSDT","buyLeverage":"10","sellLeverage":"10"}`,
			signature: "a9a76f99f50b90d77abb28814d0e644f578a6e39cc1299c62063531f6b3d49d5",
		},
		{
			name: "POST 주문 (숫자/불리언 값)",
			env: Envelope{
				Method: http.MethodPost,
				Params: NewParams().
					Add("category", "linear").
					Add("symbol", "BTCUSDT").
					Add("side", "Buy").
					Add("orderType", "Market").
					Add("qty", "0.002").
					Add("timeInForce", "GTC").
					AddInt("positionIdx", 0).
					AddBool("reduceOnly", false).
					AddBool("closeOnTrigger", false),
				Timestamp:  testTimestamp,
				RecvWindow: "5000",
			},
			canonical: `1700000000000test-key5000{"category":"linear","symbol":"BTCUSDT","side":"Buy","orderType":"Market","qty":"0.002","timeInForce":"GTC","positionIdx":0,"reduceOnly":false,"closeOnTrigger":false}`,
			signature: "225e7108f4da732e410db42f3809a0b68bf2f25c8a6052537523df5444028f93",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canonical, s.CanonicalString(tt.env))
			assert.Equal(t, tt.signature, s.Sign(tt.env))
		})
	}
}

func TestSigner_Deterministic(t *testing.T) {
	s := testSigner()
	build := func() Envelope {
		return Envelope{
			Method:     http.MethodGet,
			Params:     NewParams().Add("category", "linear").Add("settleCoin", "USDT").Add("limit", "50"),
			Timestamp:  testTimestamp,
			RecvWindow: "5000",
		}
	}

	assert.Equal(t, s.Sign(build()), s.Sign(build()))
}

func TestSigner_GetOrderMatters(t *testing.T) {
	s := testSigner()

	forward := Envelope{
		Method:     http.MethodGet,
		Params:     NewParams().Add("category", "linear").Add("symbol", "BTCUSDT"),
		Timestamp:  testTimestamp,
		RecvWindow: "5000",
	}
	reversed := Envelope{
		Method:     http.MethodGet,
		Params:     NewParams().Add("symbol", "BTCUSDT").Add("category", "linear"),
		Timestamp:  testTimestamp,
		RecvWindow: "5000",
	}

	assert.NotEqual(t, s.Sign(forward), s.Sign(reversed))
	assert.Equal(t, "28244d6ab97f40d66004fe04c721b4e53a4930eca12ad7ed0e1b3fc6a8aa7229", s.Sign(reversed))

	// 전송 문자열은 서명된 문자열과 동일한 순서여야 합니다
	assert.Equal(t, "symbol=BTCUSDT&category=linear", reversed.Payload())
}

func TestSigner_TimestampAndMethodChangeSignature(t *testing.T) {
	s := testSigner()
	params := NewParams().Add("symbol", "BTCUSDT")

	get := Envelope{Method: http.MethodGet, Params: params, Timestamp: testTimestamp, RecvWindow: "5000"}
	post := Envelope{Method: http.MethodPost, Params: params, Timestamp: testTimestamp, RecvWindow: "5000"}
	later := Envelope{Method: http.MethodGet, Params: params, Timestamp: testTimestamp + 1, RecvWindow: "5000"}

	assert.NotEqual(t, s.Sign(get), s.Sign(post))
	assert.NotEqual(t, s.Sign(get), s.Sign(later))
}
