// Package timeutil 固定时区下的日期换算与显示格式化。
//
// 用户输入的日期（无时间部分）统一解释为配置时区的当天 00:00，
// 存储为绝对时间；反向换算与列表显示也都经由同一时区，
// 与查看者本地时区无关，保证所有用户的日界一致。
package timeutil

import (
	"fmt"
	"time"
)

// 显示与输入格式
const (
	InputLayout    = "2006-01-02"
	DisplayLayout  = "2006/01/02"
	DateTimeLayout = "2006/01/02 15:04"
)

// DefaultTimezone 默认业务时区
const DefaultTimezone = "Asia/Tokyo"

// Clock 绑定业务时区的时钟
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock 创建时钟；loc 为 nil 时使用 LoadLocation(DefaultTimezone)，失败则退化为固定 +09:00
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = defaultLocation()
	}
	return &Clock{loc: loc, now: time.Now}
}

// WithNow 返回使用固定当前时间的副本（测试用）
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{loc: c.loc, now: now}
}

// Location 业务时区
func (c *Clock) Location() *time.Location { return c.loc }

// Now 业务时区下的当前时间
func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// ParseDate 将 "YYYY-MM-DD" 解释为业务时区当天 00:00
func (c *Clock) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(InputLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式无效 %q: %w", s, err)
	}
	return t, nil
}

// FormatDateForInput 绝对时间 → 业务时区下的 "YYYY-MM-DD"
func (c *Clock) FormatDateForInput(t time.Time) string {
	return t.In(c.loc).Format(InputLayout)
}

// FormatDate 绝对时间 → 业务时区下的 "YYYY/MM/DD"
func (c *Clock) FormatDate(t time.Time) string {
	return t.In(c.loc).Format(DisplayLayout)
}

// FormatDateTime 绝对时间 → 业务时区下的 "YYYY/MM/DD HH:MM"
func (c *Clock) FormatDateTime(t time.Time) string {
	return t.In(c.loc).Format(DateTimeLayout)
}

// StartOfDay t 所在业务日的 00:00
func (c *Clock) StartOfDay(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// MonthRange 指定年月的 [1日 00:00:00, 月末 23:59:59]，两端均含
func (c *Clock) MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, c.loc)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// WeekRange t 所在周（周日开始）的 [周日 00:00, 周六 23:59:59.999]，两端均含
func (c *Clock) WeekRange(t time.Time) (time.Time, time.Time) {
	day := c.StartOfDay(t)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// YearRange 指定年份的 [1/1 00:00:00, 12/31 23:59:59]
func (c *Clock) YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, c.loc)
	end := start.AddDate(1, 0, 0).Add(-time.Second)
	return start, end
}

// DaysInMonth 指定年月的天数
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsWeekend 周六、周日
func IsWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}
