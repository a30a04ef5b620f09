package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assist-by/bridge/internal/domain"
)

// listResult는 거래소 응답과 같은 {retCode, retMsg, result:{list}} 형태입니다
type listResult struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List any `json:"list"`
	} `json:"result"`
}

// ErrorResponse는 에러 응답 본문입니다
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	RetCode int    `json:"retCode,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeList(c *gin.Context, list any) {
	var body listResult
	body.RetMsg = "OK"
	body.Result.List = list
	c.JSON(http.StatusOK, body)
}

// statusFor는 에러 종류를 HTTP 상태 코드로 변환합니다
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsVerificationFailure(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInstrumentNotFound):
		return http.StatusNotFound
	}
	if _, ok := domain.AsRejected(err); ok {
		return http.StatusBadRequest
	}
	if domain.IsTransport(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError는 에러를 분류해 응답합니다. 거래소 거부는 코드와 메시지를 그대로 전달합니다.
func writeError(c *gin.Context, summary string, err error, details any) {
	body := ErrorResponse{
		Error:   summary,
		Message: err.Error(),
		Details: details,
	}
	if rejected, ok := domain.AsRejected(err); ok && !domain.IsVerificationFailure(err) {
		body.RetCode = rejected.Code
		body.Message = rejected.Message
	}
	c.JSON(statusFor(err), body)
}
