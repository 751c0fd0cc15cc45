package service

import (
	"context"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/xe"
	"go.uber.org/zap"
)

// SweepResult 一次批量计算的统计
type SweepResult struct {
	Accounts int `json:"accounts"`
	Users    int `json:"users"`
	Failures int `json:"failures"`
}

// DrawdownSweeper 为外部调度器提供的批量计算入口，本身不做调度
type DrawdownSweeper struct {
	logger       *zap.Logger
	accounts     AccountDirectory
	account      *AccountDrawdownService
	consolidated *ConsolidatedDrawdownService
}

func NewDrawdownSweeper(logger *zap.Logger, accounts AccountDirectory,
	account *AccountDrawdownService, consolidated *ConsolidatedDrawdownService) *DrawdownSweeper {
	return &DrawdownSweeper{
		logger:       logger,
		accounts:     accounts,
		account:      account,
		consolidated: consolidated,
	}
}

// Sweep 依次计算每个用户的所有活跃账户回撤和合并回撤
// 单个账户或用户失败只记录并计数，不中断整个批次
func (s *DrawdownSweeper) Sweep(ctx context.Context, date time.Time, period models.Period) (*SweepResult, error) {
	if !period.Valid() {
		return nil, xe.ErrInvalidPeriod
	}

	userIDs, err := s.accounts.FindActiveUserIDs(ctx)
	if err != nil {
		return nil, xe.Unavailable("find active users", err)
	}

	result := &SweepResult{}
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		accounts, err := s.accounts.FindActiveByUser(ctx, userID)
		if err != nil {
			s.logger.Warn("failed to list active accounts", zap.String("user_id", userID), zap.Error(err))
			result.Failures++
			continue
		}

		for _, account := range accounts {
			if _, err := s.account.ComputeAccountDrawdown(ctx, account.ID, userID, date, period); err != nil {
				s.logger.Warn("failed to compute account drawdown",
					zap.String("user_id", userID),
					zap.String("account_id", account.ID),
					zap.Error(err))
				result.Failures++
				continue
			}
			result.Accounts++
		}

		if _, err := s.consolidated.ComputeConsolidatedDrawdown(ctx, userID, date, period); err != nil {
			s.logger.Warn("failed to compute consolidated drawdown", zap.String("user_id", userID), zap.Error(err))
			result.Failures++
			continue
		}
		result.Users++
	}

	s.logger.Info("drawdown sweep finished",
		zap.String("date", date.Format(BucketLayout)),
		zap.String("period", string(period)),
		zap.Int("accounts", result.Accounts),
		zap.Int("users", result.Users),
		zap.Int("failures", result.Failures))
	return result, nil
}
