package bybit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/assist-by/bridge/internal/domain"
)

// Envelope는 서명 대상 요청입니다
type Envelope struct {
	Method     string // GET 또는 POST
	Params     *Params
	Timestamp  int64 // ms
	RecvWindow string
}

// Payload는 서명과 전송에 똑같이 쓰이는 문자열입니다.
// GET은 쿼리 문자열, POST는 JSON 본문입니다.
func (e Envelope) Payload() string {
	if e.Method == http.MethodGet {
		return e.Params.Encode()
	}
	return e.Params.body()
}

// Signer는 바이비트 V5 요청 서명을 생성합니다
type Signer struct {
	apiKey string
	secret []byte
}

// NewSigner는 시작 시 로드된 자격 증명으로 서명기를 생성합니다
func NewSigner(creds domain.Credentials) *Signer {
	return &Signer{
		apiKey: creds.APIKey,
		secret: []byte(creds.APISecret),
	}
}

// APIKey는 X-BAPI-API-KEY 헤더 값을 반환합니다
func (s *Signer) APIKey() string {
	return s.apiKey
}

// CanonicalString은 timestamp + apiKey + recvWindow + payload 를 만듭니다
func (s *Signer) CanonicalString(env Envelope) string {
	return strconv.FormatInt(env.Timestamp, 10) + s.apiKey + env.RecvWindow + env.Payload()
}

// Sign은 정규 문자열의 HMAC-SHA256 서명을 소문자 hex로 반환합니다
func (s *Signer) Sign(env Envelope) string {
	return s.sign(s.CanonicalString(env))
}

func (s *Signer) sign(payload string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
