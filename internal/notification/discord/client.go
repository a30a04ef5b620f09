package discord

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const footerText = "Assist by Trading Bridge 🤖"

// Client는 Discord 웹훅 클라이언트입니다
type Client struct {
	tradeWebhook string
	errorWebhook string
	http         *resty.Client
}

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 웹훅 요청 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// NewClient는 새로운 Discord 클라이언트를 생성합니다.
// 에러 웹훅이 비어있으면 거래 웹훅으로 에러를 보냅니다.
func NewClient(tradeWebhook, errorWebhook string, opts ...ClientOption) *Client {
	if errorWebhook == "" {
		errorWebhook = tradeWebhook
	}
	c := &Client{
		tradeWebhook: tradeWebhook,
		errorWebhook: errorWebhook,
		http:         resty.New().SetTimeout(5 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sendToWebhook은 메시지를 웹훅으로 전송합니다. URL이 비어있으면 전송하지 않습니다.
func (c *Client) sendToWebhook(webhookURL string, msg WebhookMessage) error {
	if webhookURL == "" {
		return nil
	}

	resp, err := c.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(webhookURL)
	if err != nil {
		return fmt.Errorf("웹훅 전송 실패: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("웹훅 응답 에러(%d): %s", resp.StatusCode(), resp.String())
	}
	return nil
}
