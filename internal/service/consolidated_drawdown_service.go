package service

import (
	"context"
	"errors"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/xe"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConsolidatedDrawdownService 用户全部活跃账户的合并回撤
type ConsolidatedDrawdownService struct {
	logger *zap.Logger

	accounts     AccountDirectory
	histories    BalanceHistoryStore
	consolidated ConsolidatedDrawdownStore
	thresholds   ThresholdProvider
	alerts       *DrawdownAlertService

	defaultCurrency string
}

// NewConsolidatedDrawdownService 创建合并回撤服务
func NewConsolidatedDrawdownService(logger *zap.Logger, conf *config.Config,
	accounts AccountDirectory, histories BalanceHistoryStore, consolidated ConsolidatedDrawdownStore,
	thresholds ThresholdProvider, alerts *DrawdownAlertService) *ConsolidatedDrawdownService {
	return &ConsolidatedDrawdownService{
		logger:          logger,
		accounts:        accounts,
		histories:       histories,
		consolidated:    consolidated,
		thresholds:      thresholds,
		alerts:          alerts,
		defaultCurrency: conf.Drawdown.DefaultCurrency,
	}
}

// ComputeConsolidatedDrawdown 汇总用户所有活跃账户的周期回撤
// 每个账户的回撤单独截断为非负后再求和，盈利账户不能抵消其他账户的亏损
func (s *ConsolidatedDrawdownService) ComputeConsolidatedDrawdown(ctx context.Context, userID string, date time.Time, period models.Period) (*ConsolidatedView, error) {
	w, bucket, err := ResolveWindow(date, period)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accounts.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, xe.Unavailable("find active accounts", err)
	}
	if len(accounts) == 0 {
		return &ConsolidatedView{UserID: userID, PeriodBucket: bucket, Period: period}, nil
	}

	snapshots := make([]balanceSnapshot, 0, len(accounts))
	for _, account := range accounts {
		// 不走单账户计算入口，避免重复触发单账户告警
		snapshot, err := loadSnapshot(ctx, s.histories, account, w)
		if err != nil {
			return nil, xe.Unavailable("find balance history", err)
		}
		snapshots = append(snapshots, snapshot.Normalize(account.AccountType))
	}
	totals := consolidate(snapshots)

	computed := models.ConsolidatedDrawdown{
		ID:                   ulid.Make().String(),
		UserID:               userID,
		PeriodBucket:         bucket,
		Period:               period,
		TotalPeakBalance:     totals.Peak,
		TotalCurrentBalance:  totals.Current,
		TotalDrawdownAmount:  totals.Amount,
		TotalDrawdownPercent: totals.Percent(),
		AccountCount:         len(accounts),
	}

	var existing *models.ConsolidatedDrawdown
	stored, err := s.consolidated.FindByKey(ctx, userID, bucket, period)
	switch {
	case err == nil:
		existing = &stored
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, xe.Unavailable("find consolidated drawdown", err)
	}

	final := keepWorst(existing, computed)

	threshold, err := s.thresholds.ThresholdPercent(ctx, userID)
	if err != nil {
		return nil, xe.Unavailable("find drawdown threshold", err)
	}
	if reachesThreshold(final.TotalDrawdownPercent, threshold) {
		s.alerts.Trigger(ctx, AlertRequest{
			UserID:          userID,
			AlertType:       models.AlertTypeConsolidated,
			DrawdownPercent: final.TotalDrawdownPercent,
			Payload: AlertPayload{
				DrawdownPercent: decodePercent(final.TotalDrawdownPercent),
				CurrentBalance:  final.TotalCurrentBalance,
				PeakBalance:     final.TotalPeakBalance,
			},
			Currency: s.currencyOf(accounts),
		})
	}

	saved, err := s.consolidated.UpsertIfGreater(ctx, &computed)
	if err != nil {
		return nil, xe.Unavailable("save consolidated drawdown", err)
	}

	view := NewConsolidatedView(saved)
	return &view, nil
}

// GetConsolidatedDrawdown 只读已存记录，不存在时返回 nil
func (s *ConsolidatedDrawdownService) GetConsolidatedDrawdown(ctx context.Context, userID string, date time.Time, period models.Period) (*ConsolidatedView, error) {
	_, bucket, err := ResolveWindow(date, period)
	if err != nil {
		return nil, err
	}

	stored, err := s.consolidated.FindByKey(ctx, userID, bucket, period)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, xe.Unavailable("find consolidated drawdown", err)
	}
	view := NewConsolidatedView(stored)
	return &view, nil
}

// GetConsolidatedDrawdownHistory 查询 [startDate, endDate] 内各 bucket 的合并回撤
func (s *ConsolidatedDrawdownService) GetConsolidatedDrawdownHistory(ctx context.Context, userID string, startDate, endDate time.Time, period models.Period) ([]ConsolidatedView, error) {
	if !period.Valid() {
		return nil, xe.ErrInvalidPeriod
	}
	if endDate.Before(startDate) {
		return nil, xe.ErrInvalidParams
	}

	records, err := s.consolidated.FindRange(ctx, userID, startDate.Format(BucketLayout), endDate.Format(BucketLayout), period)
	if err != nil {
		return nil, xe.Unavailable("find consolidated drawdown history", err)
	}

	views := make([]ConsolidatedView, 0, len(records))
	for _, record := range records {
		views = append(views, NewConsolidatedView(record))
	}
	return views, nil
}

// currencyOf 所有账户币种一致时使用该币种，否则使用默认币种
func (s *ConsolidatedDrawdownService) currencyOf(accounts []models.TradingAccount) string {
	currency := ""
	for _, account := range accounts {
		if account.Currency == "" {
			continue
		}
		if currency != "" && currency != account.Currency {
			return s.defaultCurrency
		}
		currency = account.Currency
	}
	if currency == "" {
		return s.defaultCurrency
	}
	return currency
}
