package service

import (
	"errors"
	"math"
	"time"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/model"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

// ErrExamNotFound 考试代码不在目录中（已保存的目标引用了未知考试时同样返回）
var ErrExamNotFound = errors.New("考试不存在")

// 进度类型
const (
	GoalProgressMonthly = "monthly"
	GoalProgressExam    = "exam"
)

const examPassedMessage = "試験日が過ぎています"

// DaysUntil 距 target 的天数，向上取整；target 已到或已过时返回值 ≤ 0
func DaysUntil(target, now time.Time) int {
	return int(math.Ceil(float64(target.Sub(now)) / float64(24*time.Hour)))
}

// DayBreakdown 剩余天数拆分结果
type DayBreakdown struct {
	Weeks         int
	RemainingDays int
	Weekdays      int
	Weekends      int
}

// SplitDays 将 days 拆成整周与余数；余数部分从 start 当天起逐日按星期判断平日/周末
func SplitDays(days int, start time.Time) DayBreakdown {
	b := DayBreakdown{
		Weeks:         days / 7,
		RemainingDays: days % 7,
	}
	b.Weekdays = b.Weeks * 5
	b.Weekends = b.Weeks * 2
	for i := 0; i < b.RemainingDays; i++ {
		if timeutil.IsWeekend(start.AddDate(0, 0, i).Weekday()) {
			b.Weekends++
		} else {
			b.Weekdays++
		}
	}
	return b
}

// ComputeStudyPlan 根据考试目标与累计学习时长计算学习计划
//
// completedMinutes 为用户全部历史记录的合计，不限于目标设置之后。
func ComputeStudyPlan(goal model.ExamGoal, completedMinutes int64, clock *timeutil.Clock) (*dto.StudyPlanResponse, error) {
	exam, ok := GetExamByCode(goal.ExamCode)
	if !ok {
		return nil, ErrExamNotFound
	}

	now := clock.Now()
	plan := &dto.StudyPlanResponse{
		ExamInfo:          toExamResponse(exam),
		ExamDate:          clock.FormatDateForInput(goal.ExamDate),
		WeekdayStudyHours: goal.WeekdayStudyHours,
		WeekendStudyHours: goal.WeekendStudyHours,
	}

	days := DaysUntil(goal.ExamDate, now)
	if days <= 0 {
		plan.IsExamPassed = true
		plan.Message = examPassedMessage
		return plan, nil
	}

	b := SplitDays(days, now)
	plan.DaysUntilExam = days
	plan.Weeks = b.Weeks
	plan.RemainingDays = b.RemainingDays
	plan.TotalWeekdays = b.Weekdays
	plan.TotalWeekends = b.Weekends

	plan.TotalAvailableHours = float64(b.Weekdays)*goal.WeekdayStudyHours +
		float64(b.Weekends)*goal.WeekendStudyHours
	if b.Weeks > 0 {
		plan.WeeklyAverageHours = plan.TotalAvailableHours / float64(b.Weeks)
	} else {
		plan.WeeklyAverageHours = plan.TotalAvailableHours
	}

	recommended := float64(exam.RecommendedHours)
	plan.CompletedHours = float64(completedMinutes) / 60
	plan.RemainingHours = math.Max(recommended-plan.CompletedHours, 0)
	plan.ProgressPercentage = clampPercent(float64(completedMinutes) * 100 / (recommended * 60))
	plan.IsOnTrack = plan.TotalAvailableHours >= plan.RemainingHours

	return plan, nil
}

// ComputeGoalProgress 计算目标进度
//
// 考试目标四项不全时返回月度进度（monthly），否则返回考试进度（exam）。
// sessions 为用户全部学习记录。
func ComputeGoalProgress(user *model.User, sessions []model.StudySession, clock *timeutil.Clock, monthlyTargetMinutes int) (*dto.GoalProgressResponse, error) {
	now := clock.Now()

	goal, ok := user.ExamGoal()
	if !ok {
		start, end := clock.MonthRange(now.Year(), now.Month())
		minutes := SumMinutes(FilterSessions(sessions, start, end))

		progress := 0
		if monthlyTargetMinutes > 0 {
			progress = roundPercent(float64(minutes) * 100 / float64(monthlyTargetMinutes))
		}

		return &dto.GoalProgressResponse{
			Type:               GoalProgressMonthly,
			HasExamSettings:    false,
			ProgressPercentage: progress,
			MonthlyGoalProgress: &dto.MonthlyGoalProgress{
				ThisMonthDuration:    minutes,
				MonthlyTargetMinutes: monthlyTargetMinutes,
				DaysInMonth:          timeutil.DaysInMonth(now.Year(), now.Month()),
				CurrentDay:           now.Day(),
			},
		}, nil
	}

	exam, found := GetExamByCode(goal.ExamCode)
	if !found {
		return nil, ErrExamNotFound
	}

	totalMinutes := SumMinutes(sessions)
	target := exam.RecommendedHours
	studiedHours := float64(totalMinutes) / 60

	weekStart, weekEnd := clock.WeekRange(now)
	weekHours := float64(SumMinutes(FilterSessions(sessions, weekStart, weekEnd))) / 60
	weeklyTarget := goal.WeekdayStudyHours*5 + goal.WeekendStudyHours*2

	weeklyProgress := 0
	if weeklyTarget > 0 {
		weeklyProgress = roundPercent(weekHours * 100 / weeklyTarget)
	}

	days := DaysUntil(goal.ExamDate, now)

	return &dto.GoalProgressResponse{
		Type:               GoalProgressExam,
		HasExamSettings:    true,
		ProgressPercentage: roundPercent(float64(totalMinutes) * 100 / float64(target*60)),
		ExamGoalProgress: &dto.ExamGoalProgress{
			ExamInfo:                 toExamResponse(exam),
			ExamDate:                 clock.FormatDateForInput(goal.ExamDate),
			DaysUntilExam:            max(days, 0),
			IsExamPassed:             days <= 0,
			TotalStudiedHours:        studiedHours,
			TargetHours:              target,
			RemainingHours:           math.Max(float64(target)-studiedHours, 0),
			ThisWeekHours:            weekHours,
			WeeklyTargetHours:        weeklyTarget,
			WeeklyProgressPercentage: weeklyProgress,
			WeekdayStudyHours:        goal.WeekdayStudyHours,
			WeekendStudyHours:        goal.WeekendStudyHours,
		},
	}, nil
}

// clampPercent 限制在 [0, 100]
func clampPercent(p float64) float64 {
	return math.Min(math.Max(p, 0), 100)
}

// roundPercent 四舍五入后限制在 [0, 100]
func roundPercent(p float64) int {
	return int(clampPercent(math.Round(p)))
}
