package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/assist-by/bridge/internal/notification"
)

// SendError는 에러 알림을 전송합니다
func (c *Client) SendError(err error) error {
	embed := NewEmbed().
		SetTitle("에러 발생").
		SetDescription(fmt.Sprintf("```%v```", err)).
		SetColor(notification.ColorError).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.errorWebhook, msg)
}

// SendInfo는 일반 정보 알림을 전송합니다
func (c *Client) SendInfo(message string) error {
	embed := NewEmbed().
		SetDescription(message).
		SetColor(notification.ColorInfo).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.tradeWebhook, msg)
}

// SendTradeInfo는 거래 실행 정보를 전송합니다
func (c *Client) SendTradeInfo(info notification.TradeInfo) error {
	stopLoss := "-"
	if info.StopLoss != "" {
		stopLoss = fmt.Sprintf("$%s (%s)", info.StopLoss, info.StopLossStatus)
	}

	embed := NewEmbed().
		SetTitle(fmt.Sprintf("거래 실행: %s %s", info.Side, info.Symbol)).
		SetDescription(fmt.Sprintf(
			"**수량**: %s\n**가격**: $%s\n**금액**: %s USDT\n**레버리지**: %sx\n**손절가**: %s",
			info.Quantity, info.EntryPrice, info.Notional, info.Leverage, stopLoss,
		)).
		SetColor(notification.GetColorForSide(info.Side)).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	if info.OrderID != "" {
		embed.AddField("주문 ID", info.OrderID, false)
	}
	if len(info.Warnings) > 0 {
		embed.AddField("경고", strings.Join(info.Warnings, "\n"), false)
		embed.SetColor(notification.ColorWarning)
	}

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.tradeWebhook, msg)
}

// SendCloseInfo는 포지션 청산 정보를 전송합니다
func (c *Client) SendCloseInfo(info notification.CloseInfo) error {
	embed := NewEmbed().
		SetTitle(fmt.Sprintf("포지션 청산: %s", info.Symbol)).
		SetDescription(fmt.Sprintf("**상태**: %s\n**방향**: %s\n**수량**: %s",
			info.Status, info.Side, info.Quantity)).
		SetColor(notification.ColorInfo).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	if info.OrderID != "" {
		embed.AddField("주문 ID", info.OrderID, false)
	}

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.tradeWebhook, msg)
}
