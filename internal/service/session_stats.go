package service

import (
	"sort"
	"time"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/model"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

// recentSessionLimit 最近记录条数
const recentSessionLimit = 5

// AggregateSessions 汇总一组学习记录
//
// 平均时长向下取整；科目统计按时长降序（同时长按科目名升序）；
// 最近记录按日期降序（同日期按创建时间降序）最多 5 条。空输入返回全零结果。
func AggregateSessions(sessions []model.StudySession, clock *timeutil.Clock) dto.SessionStats {
	stats := dto.SessionStats{
		Subjects:       []string{},
		SubjectStats:   []dto.SubjectStat{},
		RecentSessions: []dto.StudySessionResponse{},
		DailyStats:     map[string]int{},
	}

	index := make(map[string]int)
	for i := range sessions {
		s := &sessions[i]
		stats.TotalDuration += s.Duration
		stats.TotalSessions++

		pos, ok := index[s.Subject]
		if !ok {
			pos = len(stats.SubjectStats)
			index[s.Subject] = pos
			stats.Subjects = append(stats.Subjects, s.Subject)
			stats.SubjectStats = append(stats.SubjectStats, dto.SubjectStat{Subject: s.Subject})
		}
		stats.SubjectStats[pos].Sessions++
		stats.SubjectStats[pos].Duration += s.Duration

		stats.DailyStats[clock.FormatDateForInput(s.Date)] += s.Duration
	}

	if stats.TotalSessions > 0 {
		stats.AverageDuration = stats.TotalDuration / stats.TotalSessions
	}

	sort.SliceStable(stats.SubjectStats, func(i, j int) bool {
		a, b := stats.SubjectStats[i], stats.SubjectStats[j]
		if a.Duration != b.Duration {
			return a.Duration > b.Duration
		}
		return a.Subject < b.Subject
	})

	for _, s := range RecentSessions(sessions, recentSessionLimit) {
		stats.RecentSessions = append(stats.RecentSessions, toStudySessionResponse(&s, clock))
	}

	return stats
}

// RecentSessions 按日期降序返回最多 limit 条（不修改入参）
func RecentSessions(sessions []model.StudySession, limit int) []model.StudySession {
	sorted := make([]model.StudySession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// FilterSessions 返回 [from, to]（两端均含）内的记录
func FilterSessions(sessions []model.StudySession, from, to time.Time) []model.StudySession {
	out := make([]model.StudySession, 0, len(sessions))
	for _, s := range sessions {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out
}

// SumMinutes 合计时长（分钟）
func SumMinutes(sessions []model.StudySession) int {
	total := 0
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// MonthlyBreakdown 按业务时区月份分成 12 个桶；不属于 year 的记录忽略
func MonthlyBreakdown(sessions []model.StudySession, year int, clock *timeutil.Clock) []dto.MonthBucket {
	buckets := make([]dto.MonthBucket, 12)
	for i := range buckets {
		buckets[i].Month = i + 1
	}
	for _, s := range sessions {
		local := s.Date.In(clock.Location())
		if local.Year() != year {
			continue
		}
		b := &buckets[int(local.Month())-1]
		b.Sessions++
		b.Duration += s.Duration
	}
	return buckets
}

func toStudySessionResponse(s *model.StudySession, clock *timeutil.Clock) dto.StudySessionResponse {
	return dto.StudySessionResponse{
		ID:          s.SessionID,
		Subject:     s.Subject,
		Duration:    s.Duration,
		Date:        clock.FormatDateForInput(s.Date),
		DisplayDate: clock.FormatDate(s.Date),
		Memo:        s.Memo,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
