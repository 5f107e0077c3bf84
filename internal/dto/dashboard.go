package dto

// ── 统计模块 DTO ──

// MonthlyStatsRequest 月度统计查询参数（缺省为当月）
type MonthlyStatsRequest struct {
	Year  int `form:"year"  binding:"omitempty,min=2000,max=2100"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}

// YearlyStatsRequest 年度统计查询参数（缺省为当年）
type YearlyStatsRequest struct {
	Year int `form:"year" binding:"omitempty,min=2000,max=2100"`
}

// SubjectStat 单科目汇总
type SubjectStat struct {
	Subject  string `json:"subject"`
	Sessions int    `json:"sessions"`
	Duration int    `json:"duration"`
}

// SessionStats 学习记录聚合结果
type SessionStats struct {
	TotalDuration   int                    `json:"total_duration"`
	TotalSessions   int                    `json:"total_sessions"`
	AverageDuration int                    `json:"average_duration"`
	Subjects        []string               `json:"subjects"`
	SubjectStats    []SubjectStat          `json:"subject_stats"`
	RecentSessions  []StudySessionResponse `json:"recent_sessions"`
	DailyStats      map[string]int         `json:"daily_stats"` // YYYY-MM-DD -> 分钟
}

// MonthlyStatsResponse 月度统计
type MonthlyStatsResponse struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	SessionStats
}

// WeeklyStatsResponse 本周统计（周日开始）
type WeeklyStatsResponse struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	SessionStats
}

// MonthBucket 年度统计中的单月汇总
type MonthBucket struct {
	Month    int `json:"month"`
	Sessions int `json:"sessions"`
	Duration int `json:"duration"`
}

// YearlyStatsResponse 年度统计
type YearlyStatsResponse struct {
	Year             int           `json:"year"`
	MonthlyBreakdown []MonthBucket `json:"monthly_breakdown"`
	SessionStats
}

// GoalProgressResponse 目标进度
//
// Type 为 "monthly" 时只带 MonthlyGoalProgress 字段，为 "exam" 时只带
// ExamGoalProgress 字段；两个嵌入结构体不能出现同名字段。
type GoalProgressResponse struct {
	Type               string `json:"type"`
	HasExamSettings    bool   `json:"has_exam_settings"`
	ProgressPercentage int    `json:"progress_percentage"`
	*MonthlyGoalProgress
	*ExamGoalProgress
}

// MonthlyGoalProgress 未设置考试目标时的月度进度
type MonthlyGoalProgress struct {
	ThisMonthDuration    int `json:"this_month_duration"`
	MonthlyTargetMinutes int `json:"monthly_target_minutes"`
	DaysInMonth          int `json:"days_in_month"`
	CurrentDay           int `json:"current_day"`
}

// ExamGoalProgress 考试目标进度
type ExamGoalProgress struct {
	ExamInfo                 ExamResponse `json:"exam_info"`
	ExamDate                 string       `json:"exam_date"`
	DaysUntilExam            int          `json:"days_until_exam"`
	IsExamPassed             bool         `json:"is_exam_passed"`
	TotalStudiedHours        float64      `json:"total_studied_hours"`
	TargetHours              int          `json:"target_hours"`
	RemainingHours           float64      `json:"remaining_hours"`
	ThisWeekHours            float64      `json:"this_week_hours"`
	WeeklyTargetHours        float64      `json:"weekly_target_hours"`
	WeeklyProgressPercentage int          `json:"weekly_progress_percentage"`
	WeekdayStudyHours        float64      `json:"weekday_study_hours"`
	WeekendStudyHours        float64      `json:"weekend_study_hours"`
}
