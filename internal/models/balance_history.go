package models

import "time"

// BalanceHistory 账户余额历史点，只追加，由外部采集链路写入
type BalanceHistory struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	AccountID string    `gorm:"type:varchar(26);not null;index:idx_balance_histories_account_ts,priority:1" json:"account_id"`
	Balance   float64   `gorm:"type:decimal(20,8);not null" json:"balance"` // 账户原始计价单位
	Timestamp time.Time `gorm:"not null;index:idx_balance_histories_account_ts,priority:2" json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (BalanceHistory) TableName() string {
	return "balance_histories"
}
