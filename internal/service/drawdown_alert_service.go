package service

import (
	"context"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/pkg/nostd"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertRequest 一次回撤越限
type AlertRequest struct {
	UserID          string
	AlertType       models.AlertType
	DrawdownPercent int64 // 百分比×100
	Payload         AlertPayload
	Currency        string
}

// DrawdownAlertService 单账户与合并告警共用的 限流→投递→记流水 流程
type DrawdownAlertService struct {
	logger     *zap.Logger
	gate       *AlertGate
	dispatcher AlertDispatcher
	ledger     AlertLedger
	locks      *nostd.KeyedMutex
	now        func() time.Time
}

func NewDrawdownAlertService(logger *zap.Logger, gate *AlertGate, dispatcher AlertDispatcher, ledger AlertLedger) *DrawdownAlertService {
	return &DrawdownAlertService{
		logger:     logger,
		gate:       gate,
		dispatcher: dispatcher,
		ledger:     ledger,
		locks:      nostd.NewKeyedMutex(),
		now:        time.Now,
	}
}

// Trigger 限流允许时投递告警，投递成功后追加流水；返回是否已发送
// 投递失败只记录日志，不写流水，下一次计算仍可重试
func (s *DrawdownAlertService) Trigger(ctx context.Context, req AlertRequest) bool {
	accountNumber := req.Payload.AccountNumber
	unlock := s.locks.Lock(alertKey(req.UserID, accountNumber, req.AlertType))
	defer unlock()

	if !s.gate.CanSendAlert(ctx, req.UserID, accountNumber, req.AlertType) {
		s.logger.Debug("drawdown alert rate limited",
			zap.String("user_id", req.UserID),
			zap.String("account", req.Payload.Label()),
			zap.String("alert_type", string(req.AlertType)))
		return false
	}

	if err := s.dispatcher.Send(ctx, req.UserID, req.Payload, req.Currency, req.AlertType); err != nil {
		s.logger.Warn("failed to dispatch drawdown alert",
			zap.String("user_id", req.UserID),
			zap.String("account", req.Payload.Label()),
			zap.String("alert_type", string(req.AlertType)),
			zap.Error(err))
		return false
	}

	row := &models.DrawdownAlertHistory{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		AccountNumber:   accountNumber,
		AlertType:       req.AlertType,
		DrawdownPercent: req.DrawdownPercent,
		SentAt:          s.now(),
	}
	if err := s.ledger.Append(ctx, row); err != nil {
		s.logger.Error("failed to record drawdown alert",
			zap.String("user_id", req.UserID),
			zap.String("account", req.Payload.Label()),
			zap.Error(err))
	}

	s.logger.Info("drawdown alert sent",
		zap.String("user_id", req.UserID),
		zap.String("account", req.Payload.Label()),
		zap.String("alert_type", string(req.AlertType)),
		zap.Float64("drawdown_percent", req.Payload.DrawdownPercent))
	return true
}

func alertKey(userID string, accountNumber *string, alertType models.AlertType) string {
	label := ConsolidatedLabel
	if accountNumber != nil {
		label = *accountNumber
	}
	return userID + "|" + label + "|" + string(alertType)
}
