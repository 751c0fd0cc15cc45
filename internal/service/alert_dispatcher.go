package service

import (
	"context"
	_ "embed"
	"errors"
	"strconv"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/telegram"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
)

// ConsolidatedLabel 合并告警在投递端使用的账户标识
const ConsolidatedLabel = "CONSOLIDATED"

// AlertPayload 告警内容，金额均为归一化后的显示币种
type AlertPayload struct {
	AccountNumber   *string // nil 表示合并告警
	DrawdownPercent float64
	CurrentBalance  float64
	PeakBalance     float64
}

func (p AlertPayload) Label() string {
	if p.AccountNumber == nil {
		return ConsolidatedLabel
	}
	return *p.AccountNumber
}

// AlertDispatcher 告警投递，返回 nil 表示投递成功
type AlertDispatcher interface {
	Send(ctx context.Context, userID string, payload AlertPayload, currency string, alertType models.AlertType) error
}

//go:embed templates/drawdown_alert.md
var drawdownAlertTemplate string

// RenderAlertMessage 渲染 Telegram MarkdownV2 告警消息
func RenderAlertMessage(userID string, payload AlertPayload, currency string, alertType models.AlertType) string {
	esc := telegram.EscapeMarkdownV2
	replacements := map[string]interface{}{
		"account":    esc(payload.Label()),
		"alert_type": esc(string(alertType)),
		"percent":    esc(strconv.FormatFloat(payload.DrawdownPercent, 'f', 2, 64)),
		"peak":       esc(strconv.FormatFloat(payload.PeakBalance, 'f', 2, 64)),
		"current":    esc(strconv.FormatFloat(payload.CurrentBalance, 'f', 2, 64)),
		"currency":   esc(currency),
		"user_id":    esc(userID),
	}

	tmpl := fasttemplate.New(drawdownAlertTemplate, "{{", "}}")
	return tmpl.ExecuteString(replacements)
}

// Notifier 消息通道
type Notifier interface {
	Notify(chatId, msg string) error
}

// TelegramDispatcher 通过 Telegram 投递告警
type TelegramDispatcher struct {
	logger   *zap.Logger
	notifier Notifier
	chatID   string
}

func NewTelegramDispatcher(logger *zap.Logger, notifier Notifier, chatID string) *TelegramDispatcher {
	return &TelegramDispatcher{
		logger:   logger,
		notifier: notifier,
		chatID:   chatID,
	}
}

func (d *TelegramDispatcher) Send(ctx context.Context, userID string, payload AlertPayload, currency string, alertType models.AlertType) error {
	if d.chatID == "" {
		return errors.New("telegram chat id not configured")
	}
	return d.notifier.Notify(d.chatID, RenderAlertMessage(userID, payload, currency, alertType))
}

// LogDispatcher 未配置投递通道时仅记录日志
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, userID string, payload AlertPayload, currency string, alertType models.AlertType) error {
	d.logger.Warn("drawdown alert",
		zap.String("user_id", userID),
		zap.String("account", payload.Label()),
		zap.String("alert_type", string(alertType)),
		zap.Float64("drawdown_percent", payload.DrawdownPercent),
		zap.Float64("peak_balance", payload.PeakBalance),
		zap.Float64("current_balance", payload.CurrentBalance),
		zap.String("currency", currency))
	return nil
}
