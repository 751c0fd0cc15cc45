package repo

import (
	"context"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewUserDrawdownSettingsRepo(db *gorm.DB) *UserDrawdownSettingsRepo {
	return &UserDrawdownSettingsRepo{
		Repository: orz.NewRepository[models.UserDrawdownSettings, string](db),
	}
}

type UserDrawdownSettingsRepo struct {
	orz.Repository[models.UserDrawdownSettings, string]
}

// FindByUserID 查找用户配置，不存在时返回 gorm.ErrRecordNotFound
func (r UserDrawdownSettingsRepo) FindByUserID(ctx context.Context, userID string) (m models.UserDrawdownSettings, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("user_id = ?", userID).
		First(&m).Error
	return m, err
}

// Upsert 新增或更新用户阈值
func (r UserDrawdownSettingsRepo) Upsert(ctx context.Context, m *models.UserDrawdownSettings) error {
	db := r.GetDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"threshold_percent", "updated_at"}),
	}).Create(m).Error
}
