package service

import (
	"context"
	"errors"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/xe"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserSettingsStore interface {
	FindByUserID(ctx context.Context, userID string) (models.UserDrawdownSettings, error)
	Upsert(ctx context.Context, m *models.UserDrawdownSettings) error
}

// UserSettingsService 用户回撤告警阈值
type UserSettingsService struct {
	logger   *zap.Logger
	settings UserSettingsStore
	fallback decimal.Decimal
}

// NewUserSettingsService 创建用户配置服务
func NewUserSettingsService(logger *zap.Logger, conf *config.Config, settings UserSettingsStore) *UserSettingsService {
	return &UserSettingsService{
		logger:   logger,
		settings: settings,
		fallback: conf.Drawdown.DefaultThreshold(),
	}
}

// ThresholdPercent 用户未配置时返回默认阈值
func (s *UserSettingsService) ThresholdPercent(ctx context.Context, userID string) (decimal.Decimal, error) {
	m, err := s.settings.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.fallback, nil
		}
		return decimal.Zero, err
	}
	return m.ThresholdPercent, nil
}

// SetThresholdPercent 设置用户阈值，必须大于 0
func (s *UserSettingsService) SetThresholdPercent(ctx context.Context, userID string, threshold decimal.Decimal) error {
	if userID == "" || !threshold.IsPositive() {
		return xe.ErrInvalidParams
	}

	m := &models.UserDrawdownSettings{
		UserID:           userID,
		ThresholdPercent: threshold.Round(2),
	}
	if err := s.settings.Upsert(ctx, m); err != nil {
		return xe.Unavailable("save drawdown settings", err)
	}

	s.logger.Info("drawdown threshold updated",
		zap.String("user_id", userID),
		zap.String("threshold_percent", m.ThresholdPercent.String()))
	return nil
}
