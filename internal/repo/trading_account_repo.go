package repo

import (
	"context"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewTradingAccountRepo(db *gorm.DB) *TradingAccountRepo {
	return &TradingAccountRepo{
		Repository: orz.NewRepository[models.TradingAccount, string](db),
	}
}

type TradingAccountRepo struct {
	orz.Repository[models.TradingAccount, string]
}

// FindAccount 根据ID查找账户，不存在时返回 gorm.ErrRecordNotFound
func (r TradingAccountRepo) FindAccount(ctx context.Context, id string) (m models.TradingAccount, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("id = ?", id).
		First(&m).Error
	return m, err
}

// FindActiveByUser 查找用户的所有活跃账户
func (r TradingAccountRepo) FindActiveByUser(ctx context.Context, userID string) ([]models.TradingAccount, error) {
	var accounts []models.TradingAccount
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("account_number ASC").
		Find(&accounts).Error
	return accounts, err
}

// FindActiveUserIDs 查找至少拥有一个活跃账户的用户
func (r TradingAccountRepo) FindActiveUserIDs(ctx context.Context) ([]string, error) {
	var userIDs []string
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("is_active = ?", true).
		Order("user_id ASC").
		Distinct().
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}
