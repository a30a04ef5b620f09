package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInstrumentNotFound는 거래소가 심볼 정보를 반환하지 않은 경우입니다
	ErrInstrumentNotFound = errors.New("instrument not found")

	// ErrPriceUnavailable는 시세에 유효한 가격이 없는 경우입니다
	ErrPriceUnavailable = errors.New("price unavailable")
)

// ValidationError는 거래소 호출 전에 거부되는 잘못된 입력입니다
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid request: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError는 새로운 ValidationError를 생성합니다
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// TransportError는 거래소와의 네트워크/타임아웃 실패입니다
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s]: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExchangeRejected는 거래소가 응답했지만 retCode가 0이 아닌 경우입니다
type ExchangeRejected struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *ExchangeRejected) Error() string {
	return fmt.Sprintf("exchange rejected [%s] (retCode: %d): %s", e.Endpoint, e.Code, e.Message)
}

// VerificationFailure는 청산 주문 이후에도 포지션이 남아있는 경우입니다.
// 제출 실패와 구분되어야 하며 수동 확인이 필요할 수 있습니다.
type VerificationFailure struct {
	Symbol    string
	Remaining string
	OrderID   string
	Err       error
}

func (e *VerificationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("close verification failed for %s (order %s): %v", e.Symbol, e.OrderID, e.Err)
	}
	return fmt.Sprintf("position %s not fully closed after order %s: remaining size %s", e.Symbol, e.OrderID, e.Remaining)
}

func (e *VerificationFailure) Unwrap() error {
	return e.Err
}

// IsValidation은 에러 체인에 ValidationError가 있는지 확인합니다
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransport는 에러 체인에 TransportError가 있는지 확인합니다
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// AsRejected는 에러 체인에서 ExchangeRejected를 꺼냅니다
func AsRejected(err error) (*ExchangeRejected, bool) {
	var r *ExchangeRejected
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// IsVerificationFailure는 에러 체인에 VerificationFailure가 있는지 확인합니다
func IsVerificationFailure(err error) bool {
	var v *VerificationFailure
	return errors.As(err, &v)
}
