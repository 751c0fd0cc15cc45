package service

import (
	"context"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"go.uber.org/zap"
)

// AlertPolicy 告警限流策略：窗口内最多 MaxPerWindow 条，已有告警时与最近一条至少间隔 MinSpacing
type AlertPolicy struct {
	Window       time.Duration
	MaxPerWindow int
	MinSpacing   time.Duration
}

func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{
		Window:       config.DefaultAlertWindowHours * time.Hour,
		MaxPerWindow: config.DefaultAlertMaxPerWindow,
		MinSpacing:   config.DefaultAlertMinSpacingHours * time.Hour,
	}
}

func NewAlertPolicy(conf *config.Config) AlertPolicy {
	return AlertPolicy{
		Window:       conf.Drawdown.AlertWindow(),
		MaxPerWindow: conf.Drawdown.AlertMaxPerWindow,
		MinSpacing:   conf.Drawdown.AlertMinSpacing(),
	}
}

// Allow sent 为窗口内已发送时间，最新的在前
// 首次告警不受间隔限制
func (p AlertPolicy) Allow(now time.Time, sent []time.Time) bool {
	var (
		count  int
		latest time.Time
	)
	for _, t := range sent {
		if now.Sub(t) >= p.Window {
			continue
		}
		count++
		if t.After(latest) {
			latest = t
		}
	}

	if count >= p.MaxPerWindow {
		return false
	}
	if count > 0 && now.Sub(latest) < p.MinSpacing {
		return false
	}
	return true
}

// AlertGate 基于告警流水的限流判断，只读不写
type AlertGate struct {
	logger *zap.Logger
	ledger AlertLedger
	policy AlertPolicy
	now    func() time.Time
}

func NewAlertGate(logger *zap.Logger, ledger AlertLedger, policy AlertPolicy) *AlertGate {
	return &AlertGate{
		logger: logger,
		ledger: ledger,
		policy: policy,
		now:    time.Now,
	}
}

// CanSendAlert 判断 (userID, accountNumber, alertType) 当前是否允许发送告警
// 读取流水失败时拒绝发送
func (g *AlertGate) CanSendAlert(ctx context.Context, userID string, accountNumber *string, alertType models.AlertType) bool {
	now := g.now()
	rows, err := g.ledger.FindSentSince(ctx, userID, accountNumber, alertType, now.Add(-g.policy.Window))
	if err != nil {
		g.logger.Warn("failed to read drawdown alert history, alert suppressed",
			zap.String("user_id", userID),
			zap.String("alert_type", string(alertType)),
			zap.Error(err))
		return false
	}

	sent := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		sent = append(sent, row.SentAt)
	}
	return g.policy.Allow(now, sent)
}
