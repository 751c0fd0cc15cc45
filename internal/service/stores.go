package service

import (
	"context"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/shopspring/decimal"
)

// 回撤引擎依赖的外部存储。查询不到记录时统一返回 gorm.ErrRecordNotFound。

type AccountDirectory interface {
	FindAccount(ctx context.Context, id string) (models.TradingAccount, error)
	FindActiveByUser(ctx context.Context, userID string) ([]models.TradingAccount, error)
	FindActiveUserIDs(ctx context.Context) ([]string, error)
}

type BalanceHistoryStore interface {
	FindInRange(ctx context.Context, accountID string, start, end time.Time) ([]models.BalanceHistory, error)
}

type AccountDrawdownStore interface {
	FindByKey(ctx context.Context, accountID, bucket string, period models.Period) (models.AccountDrawdown, error)
	UpsertIfGreater(ctx context.Context, m *models.AccountDrawdown) (models.AccountDrawdown, error)
	FindRange(ctx context.Context, accountID, startBucket, endBucket string, period models.Period) ([]models.AccountDrawdown, error)
}

type ConsolidatedDrawdownStore interface {
	FindByKey(ctx context.Context, userID, bucket string, period models.Period) (models.ConsolidatedDrawdown, error)
	UpsertIfGreater(ctx context.Context, m *models.ConsolidatedDrawdown) (models.ConsolidatedDrawdown, error)
	FindRange(ctx context.Context, userID, startBucket, endBucket string, period models.Period) ([]models.ConsolidatedDrawdown, error)
}

// AlertLedger 告警流水，只读和追加
type AlertLedger interface {
	FindSentSince(ctx context.Context, userID string, accountNumber *string, alertType models.AlertType, since time.Time) ([]models.DrawdownAlertHistory, error)
	Append(ctx context.Context, row *models.DrawdownAlertHistory) error
}

type ThresholdProvider interface {
	ThresholdPercent(ctx context.Context, userID string) (decimal.Decimal, error)
}
