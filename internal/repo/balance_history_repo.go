package repo

import (
	"context"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewBalanceHistoryRepo(db *gorm.DB) *BalanceHistoryRepo {
	return &BalanceHistoryRepo{
		Repository: orz.NewRepository[models.BalanceHistory, string](db),
	}
}

type BalanceHistoryRepo struct {
	orz.Repository[models.BalanceHistory, string]
}

// FindInRange 查询账户在 [start, end) 内的余额历史
func (r BalanceHistoryRepo) FindInRange(ctx context.Context, accountID string, start, end time.Time) ([]models.BalanceHistory, error) {
	var histories []models.BalanceHistory
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("account_id = ? AND timestamp >= ? AND timestamp < ?", accountID, start.UTC(), end.UTC()).
		Order("timestamp ASC").
		Find(&histories).Error
	return histories, err
}
