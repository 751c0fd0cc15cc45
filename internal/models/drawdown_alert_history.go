package models

import "time"

// AlertType 回撤告警类型
type AlertType string

const (
	AlertTypeIndividual   AlertType = "individual"
	AlertTypeConsolidated AlertType = "consolidated"
)

// DrawdownAlertHistory 告警发送流水，只插入不修改，用于限流判断
type DrawdownAlertHistory struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string    `gorm:"type:varchar(36);not null;index:idx_drawdown_alert_lookup,priority:1" json:"user_id"`
	AccountNumber   *string   `gorm:"type:varchar(64);index:idx_drawdown_alert_lookup,priority:2" json:"account_number"` // NULL 表示合并告警
	AlertType       AlertType `gorm:"type:varchar(16);not null;index:idx_drawdown_alert_lookup,priority:3" json:"alert_type"`
	DrawdownPercent int64     `gorm:"not null" json:"drawdown_percent"`
	SentAt          time.Time `gorm:"not null;index:idx_drawdown_alert_lookup,priority:4" json:"sent_at"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (DrawdownAlertHistory) TableName() string {
	return "drawdown_alert_histories"
}
