package repo

import (
	"context"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewConsolidatedDrawdownRepo(db *gorm.DB) *ConsolidatedDrawdownRepo {
	return &ConsolidatedDrawdownRepo{
		Repository: orz.NewRepository[models.ConsolidatedDrawdown, string](db),
	}
}

type ConsolidatedDrawdownRepo struct {
	orz.Repository[models.ConsolidatedDrawdown, string]
}

// FindByKey 按 (user_id, period_bucket, period) 查找
func (r ConsolidatedDrawdownRepo) FindByKey(ctx context.Context, userID, bucket string, period models.Period) (m models.ConsolidatedDrawdown, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("user_id = ? AND period_bucket = ? AND period = ?", userID, bucket, period).
		First(&m).Error
	return m, err
}

// UpsertIfGreater 同 AccountDrawdownRepo.UpsertIfGreater
func (r ConsolidatedDrawdownRepo) UpsertIfGreater(ctx context.Context, m *models.ConsolidatedDrawdown) (models.ConsolidatedDrawdown, error) {
	db := r.GetDB(ctx)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "period_bucket"}, {Name: "period"}},
		DoNothing: true,
	}).Create(m)
	if result.Error != nil {
		return models.ConsolidatedDrawdown{}, result.Error
	}

	if result.RowsAffected == 0 {
		err := db.Model(&models.ConsolidatedDrawdown{}).
			Where("user_id = ? AND period_bucket = ? AND period = ? AND total_drawdown_percent <= ?",
				m.UserID, m.PeriodBucket, m.Period, m.TotalDrawdownPercent).
			Updates(map[string]interface{}{
				"total_peak_balance":     m.TotalPeakBalance,
				"total_current_balance":  m.TotalCurrentBalance,
				"total_drawdown_amount":  m.TotalDrawdownAmount,
				"total_drawdown_percent": m.TotalDrawdownPercent,
				"account_count":          m.AccountCount,
			}).Error
		if err != nil {
			return models.ConsolidatedDrawdown{}, err
		}
	}

	return r.FindByKey(ctx, m.UserID, m.PeriodBucket, m.Period)
}

// FindRange 查询 bucket 在 [startBucket, endBucket] 内的记录，按 bucket 升序
func (r ConsolidatedDrawdownRepo) FindRange(ctx context.Context, userID, startBucket, endBucket string, period models.Period) ([]models.ConsolidatedDrawdown, error) {
	var records []models.ConsolidatedDrawdown
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ? AND period = ? AND period_bucket >= ? AND period_bucket <= ?", userID, period, startBucket, endBucket).
		Order("period_bucket ASC").
		Find(&records).Error
	return records, err
}
