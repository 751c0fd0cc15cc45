package service

import (
	"strings"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/xe"
)

const BucketLayout = "2006-01-02"

// Window 周期时间窗口 [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ResolveWindow 计算 date 所在周期的时间窗口和记录键
// 日：当天；周：周日至周六；月：自然月。bucket 始终是 date 本身的日期字符串，
// 周期类型单独存储，因此同一天可以分别作为日、周、月记录的键。
func ResolveWindow(date time.Time, period models.Period) (Window, string, error) {
	loc := date.Location()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	var w Window
	switch period {
	case models.PeriodDaily:
		w = Window{Start: day, End: day.AddDate(0, 0, 1)}
	case models.PeriodWeekly:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		w = Window{Start: start, End: start.AddDate(0, 0, 7)}
	case models.PeriodMonthly:
		start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, loc)
		w = Window{Start: start, End: start.AddDate(0, 1, 0)}
	default:
		return Window{}, "", xe.ErrInvalidPeriod
	}
	return w, day.Format(BucketLayout), nil
}

// ParsePeriod 解析周期参数
func ParsePeriod(s string) (models.Period, error) {
	p := models.Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", xe.ErrInvalidPeriod
	}
	return p, nil
}

// ParseBucketDate 在指定时区解析 2006-01-02 格式日期
func ParseBucketDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(BucketLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, xe.ErrInvalidParams
	}
	return t, nil
}
