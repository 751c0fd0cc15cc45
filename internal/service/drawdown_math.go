package service

import (
	"context"
	"math"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/shopspring/decimal"
)

const (
	percentScale = 10000 // 比例 → 百分比×100
	centDivisor  = 100
)

var hundred = decimal.NewFromInt(100)

// balanceSnapshot 单账户在周期内的峰值与当前余额（原始计价单位）
type balanceSnapshot struct {
	Peak    float64
	Current float64
}

func (s balanceSnapshot) Amount() float64 {
	return drawdownAmount(s.Peak, s.Current)
}

// Normalize 美分账户 ÷100
func (s balanceSnapshot) Normalize(t models.AccountType) balanceSnapshot {
	return balanceSnapshot{
		Peak:    normalizeBalance(s.Peak, t),
		Current: normalizeBalance(s.Current, t),
	}
}

// loadSnapshot 账户回撤与合并回撤共用的计算路径，不触发任何告警
func loadSnapshot(ctx context.Context, histories BalanceHistoryStore, account models.TradingAccount, w Window) (balanceSnapshot, error) {
	points, err := histories.FindInRange(ctx, account.ID, w.Start, w.End)
	if err != nil {
		return balanceSnapshot{}, err
	}
	inWindow := make([]models.BalanceHistory, 0, len(points))
	for _, p := range points {
		if w.Contains(p.Timestamp) {
			inWindow = append(inWindow, p)
		}
	}
	return deriveSnapshot(account.Balance, inWindow), nil
}

// deriveSnapshot 实时余额总是参与峰值计算，覆盖历史为空或滞后的情况
func deriveSnapshot(live float64, points []models.BalanceHistory) balanceSnapshot {
	current, _ := sanitizeBalance(live)
	peak := current
	for _, p := range points {
		v, ok := sanitizeBalance(p.Balance)
		if !ok {
			continue
		}
		if v > peak {
			peak = v
		}
	}
	return balanceSnapshot{Peak: peak, Current: current}
}

// sanitizeBalance NaN/Inf 视为无效；负数按 0 处理
func sanitizeBalance(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return v, true
}

func drawdownAmount(peak, current float64) float64 {
	return math.Max(0, peak-current)
}

func normalizeBalance(v float64, t models.AccountType) float64 {
	if t == models.AccountTypeCent {
		return v / centDivisor
	}
	return v
}

// encodePercent round(amount / peak × 10000)，peak 不为正时为 0
func encodePercent(amount, peak float64) int64 {
	if peak <= 0 || amount <= 0 {
		return 0
	}
	return decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(peak)).
		Mul(decimal.NewFromInt(percentScale)).
		Round(0).
		IntPart()
}

// decodePercent 1667 → 16.67
func decodePercent(p int64) float64 {
	return decimal.New(p, -2).InexactFloat64()
}

func reachesThreshold(percent int64, threshold decimal.Decimal) bool {
	return decimal.NewFromInt(percent).Div(hundred).GreaterThanOrEqual(threshold)
}

// keepWorst 只保留更深的回撤；相等时使用新计算的值
func keepWorst[T interface{ Percent() int64 }](existing *T, computed T) T {
	if existing != nil && (*existing).Percent() > computed.Percent() {
		return *existing
	}
	return computed
}

// consolidatedTotals 归一化后的合并结果
type consolidatedTotals struct {
	Peak    float64
	Current float64
	Amount  float64
}

// consolidate 回撤金额为各账户各自截断后的回撤之和，而不是 Σpeak - Σcurrent
func consolidate(snapshots []balanceSnapshot) consolidatedTotals {
	var t consolidatedTotals
	for _, s := range snapshots {
		t.Peak += s.Peak
		t.Current += s.Current
		t.Amount += s.Amount()
	}
	return t
}

func (t consolidatedTotals) Percent() int64 {
	return encodePercent(t.Amount, t.Peak)
}
