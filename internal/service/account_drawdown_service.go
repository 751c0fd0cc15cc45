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

// AccountDrawdownService 单账户周期回撤计算
type AccountDrawdownService struct {
	logger *zap.Logger

	accounts   AccountDirectory
	histories  BalanceHistoryStore
	drawdowns  AccountDrawdownStore
	thresholds ThresholdProvider
	alerts     *DrawdownAlertService

	defaultCurrency string
}

// NewAccountDrawdownService 创建单账户回撤服务
func NewAccountDrawdownService(logger *zap.Logger, conf *config.Config,
	accounts AccountDirectory, histories BalanceHistoryStore, drawdowns AccountDrawdownStore,
	thresholds ThresholdProvider, alerts *DrawdownAlertService) *AccountDrawdownService {
	return &AccountDrawdownService{
		logger:          logger,
		accounts:        accounts,
		histories:       histories,
		drawdowns:       drawdowns,
		thresholds:      thresholds,
		alerts:          alerts,
		defaultCurrency: conf.Drawdown.DefaultCurrency,
	}
}

// ComputeAccountDrawdown 计算账户在 date 所在周期的回撤，与已存记录取较深者后写回
// 超过用户阈值时尝试发送单账户告警
func (s *AccountDrawdownService) ComputeAccountDrawdown(ctx context.Context, accountID, userID string, date time.Time, period models.Period) (*DrawdownView, error) {
	w, bucket, err := ResolveWindow(date, period)
	if err != nil {
		return nil, err
	}

	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, xe.ErrAccountNotFound
	}

	computed, err := s.compute(ctx, account, w, bucket, period)
	if err != nil {
		return nil, err
	}

	var existing *models.AccountDrawdown
	stored, err := s.drawdowns.FindByKey(ctx, accountID, bucket, period)
	switch {
	case err == nil:
		existing = &stored
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, xe.Unavailable("find account drawdown", err)
	}

	final := keepWorst(existing, computed)

	threshold, err := s.thresholds.ThresholdPercent(ctx, userID)
	if err != nil {
		return nil, xe.Unavailable("find drawdown threshold", err)
	}
	if reachesThreshold(final.DrawdownPercent, threshold) {
		s.alert(ctx, account, final)
	}

	// 存储层原子地保留较大值，返回写入后的记录
	saved, err := s.drawdowns.UpsertIfGreater(ctx, &computed)
	if err != nil {
		return nil, xe.Unavailable("save account drawdown", err)
	}

	view := NewDrawdownView(saved)
	return &view, nil
}

// GetAccountDrawdown 读取已存回撤；不存在时实时计算但不写入、不告警
// 账户不存在时返回 nil
func (s *AccountDrawdownService) GetAccountDrawdown(ctx context.Context, accountID string, date time.Time, period models.Period) (*DrawdownView, error) {
	w, bucket, err := ResolveWindow(date, period)
	if err != nil {
		return nil, err
	}

	stored, err := s.drawdowns.FindByKey(ctx, accountID, bucket, period)
	if err == nil {
		view := NewDrawdownView(stored)
		return &view, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xe.Unavailable("find account drawdown", err)
	}

	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		if xe.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	computed, err := s.compute(ctx, account, w, bucket, period)
	if err != nil {
		return nil, err
	}
	view := NewDrawdownView(computed)
	return &view, nil
}

// GetAccountDrawdownHistory 查询 [startDate, endDate] 内各 bucket 的回撤记录
func (s *AccountDrawdownService) GetAccountDrawdownHistory(ctx context.Context, accountID string, startDate, endDate time.Time, period models.Period) ([]DrawdownView, error) {
	if !period.Valid() {
		return nil, xe.ErrInvalidPeriod
	}
	if endDate.Before(startDate) {
		return nil, xe.ErrInvalidParams
	}

	records, err := s.drawdowns.FindRange(ctx, accountID, startDate.Format(BucketLayout), endDate.Format(BucketLayout), period)
	if err != nil {
		return nil, xe.Unavailable("find account drawdown history", err)
	}

	views := make([]DrawdownView, 0, len(records))
	for _, record := range records {
		views = append(views, NewDrawdownView(record))
	}
	return views, nil
}

func (s *AccountDrawdownService) findAccount(ctx context.Context, accountID string) (models.TradingAccount, error) {
	account, err := s.accounts.FindAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TradingAccount{}, xe.ErrAccountNotFound
		}
		return models.TradingAccount{}, xe.Unavailable("find trading account", err)
	}
	return account, nil
}

// compute 计算本次周期回撤（原始计价单位）
func (s *AccountDrawdownService) compute(ctx context.Context, account models.TradingAccount, w Window, bucket string, period models.Period) (models.AccountDrawdown, error) {
	snapshot, err := loadSnapshot(ctx, s.histories, account, w)
	if err != nil {
		return models.AccountDrawdown{}, xe.Unavailable("find balance history", err)
	}

	amount := snapshot.Amount()
	return models.AccountDrawdown{
		ID:              ulid.Make().String(),
		AccountID:       account.ID,
		UserID:          account.UserID,
		PeriodBucket:    bucket,
		Period:          period,
		PeakBalance:     snapshot.Peak,
		CurrentBalance:  snapshot.Current,
		DrawdownAmount:  amount,
		DrawdownPercent: encodePercent(amount, snapshot.Peak),
		IsCentAccount:   account.IsCent(),
	}, nil
}

func (s *AccountDrawdownService) alert(ctx context.Context, account models.TradingAccount, final models.AccountDrawdown) {
	accountNumber := account.AccountNumber
	currency := account.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	s.alerts.Trigger(ctx, AlertRequest{
		UserID:          account.UserID,
		AlertType:       models.AlertTypeIndividual,
		DrawdownPercent: final.DrawdownPercent,
		Payload: AlertPayload{
			AccountNumber:   &accountNumber,
			DrawdownPercent: decodePercent(final.DrawdownPercent),
			CurrentBalance:  normalizeBalance(final.CurrentBalance, account.AccountType),
			PeakBalance:     normalizeBalance(final.PeakBalance, account.AccountType),
		},
		Currency: currency,
	})
}
