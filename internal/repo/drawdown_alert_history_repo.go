package repo

import (
	"context"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewDrawdownAlertHistoryRepo(db *gorm.DB) *DrawdownAlertHistoryRepo {
	return &DrawdownAlertHistoryRepo{
		Repository: orz.NewRepository[models.DrawdownAlertHistory, string](db),
	}
}

type DrawdownAlertHistoryRepo struct {
	orz.Repository[models.DrawdownAlertHistory, string]
}

// FindSentSince 查询 (user_id, account_number, alert_type) 在 since 之后发送的告警，最新的在前
// accountNumber 为 nil 时匹配合并告警
func (r DrawdownAlertHistoryRepo) FindSentSince(ctx context.Context, userID string, accountNumber *string, alertType models.AlertType, since time.Time) ([]models.DrawdownAlertHistory, error) {
	var rows []models.DrawdownAlertHistory
	db := r.GetDB(ctx)
	query := db.Table(r.GetTableName()).
		Where("user_id = ? AND alert_type = ? AND sent_at > ?", userID, alertType, since.UTC())
	if accountNumber == nil {
		query = query.Where("account_number IS NULL")
	} else {
		query = query.Where("account_number = ?", *accountNumber)
	}
	err := query.Order("sent_at DESC").Find(&rows).Error
	return rows, err
}

// Append 追加一条告警流水
func (r DrawdownAlertHistoryRepo) Append(ctx context.Context, row *models.DrawdownAlertHistory) error {
	row.SentAt = row.SentAt.UTC()
	return r.Create(ctx, row)
}
