package repo

import (
	"context"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewAccountDrawdownRepo(db *gorm.DB) *AccountDrawdownRepo {
	return &AccountDrawdownRepo{
		Repository: orz.NewRepository[models.AccountDrawdown, string](db),
	}
}

type AccountDrawdownRepo struct {
	orz.Repository[models.AccountDrawdown, string]
}

// FindByKey 按 (account_id, period_bucket, period) 查找，不存在时返回 gorm.ErrRecordNotFound
func (r AccountDrawdownRepo) FindByKey(ctx context.Context, accountID, bucket string, period models.Period) (m models.AccountDrawdown, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("account_id = ? AND period_bucket = ? AND period = ?", accountID, bucket, period).
		First(&m).Error
	return m, err
}

// UpsertIfGreater 写入回撤记录，已存在时仅当新值不小于已存回撤才覆盖，返回写入后的记录
func (r AccountDrawdownRepo) UpsertIfGreater(ctx context.Context, m *models.AccountDrawdown) (models.AccountDrawdown, error) {
	db := r.GetDB(ctx)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "period_bucket"}, {Name: "period"}},
		DoNothing: true,
	}).Create(m)
	if result.Error != nil {
		return models.AccountDrawdown{}, result.Error
	}

	if result.RowsAffected == 0 {
		err := db.Model(&models.AccountDrawdown{}).
			Where("account_id = ? AND period_bucket = ? AND period = ? AND drawdown_percent <= ?",
				m.AccountID, m.PeriodBucket, m.Period, m.DrawdownPercent).
			Updates(map[string]interface{}{
				"user_id":          m.UserID,
				"peak_balance":     m.PeakBalance,
				"current_balance":  m.CurrentBalance,
				"drawdown_amount":  m.DrawdownAmount,
				"drawdown_percent": m.DrawdownPercent,
				"is_cent_account":  m.IsCentAccount,
			}).Error
		if err != nil {
			return models.AccountDrawdown{}, err
		}
	}

	return r.FindByKey(ctx, m.AccountID, m.PeriodBucket, m.Period)
}

// FindRange 查询 bucket 在 [startBucket, endBucket] 内的记录，按 bucket 升序
func (r AccountDrawdownRepo) FindRange(ctx context.Context, accountID, startBucket, endBucket string, period models.Period) ([]models.AccountDrawdown, error) {
	var records []models.AccountDrawdown
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("account_id = ? AND period = ? AND period_bucket >= ? AND period_bucket <= ?", accountID, period, startBucket, endBucket).
		Order("period_bucket ASC").
		Find(&records).Error
	return records, err
}
