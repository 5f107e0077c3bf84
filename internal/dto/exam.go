package dto

// ── 考试模块 DTO ──

// ExamResponse 考试定义
type ExamResponse struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	ShortName        string `json:"short_name"`
	Level            string `json:"level"`
	LevelLabel       string `json:"level_label"`
	MinHours         int    `json:"min_hours"`
	MaxHours         int    `json:"max_hours"`
	RecommendedHours int    `json:"recommended_hours"`
	Description      string `json:"description"`
	ExamTimes        string `json:"exam_times"`
}

// ExamListRequest 考试列表查询参数
type ExamListRequest struct {
	Level string `form:"level" binding:"omitempty,oneof=basic advanced expert"`
}

// UpdateExamSettingsRequest 设置考试目标（四项必须同时提供）
type UpdateExamSettingsRequest struct {
	TargetExam        string   `json:"target_exam"`
	ExamDate          string   `json:"exam_date"` // YYYY-MM-DD
	WeekdayStudyHours *float64 `json:"weekday_study_hours"`
	WeekendStudyHours *float64 `json:"weekend_study_hours"`
}

// ExamSettingsResponse 考试目标设置
type ExamSettingsResponse struct {
	HasExamSettings   bool          `json:"has_exam_settings"`
	TargetExam        *string       `json:"target_exam"`
	ExamDate          *string       `json:"exam_date"`
	WeekdayStudyHours *float64      `json:"weekday_study_hours"`
	WeekendStudyHours *float64      `json:"weekend_study_hours"`
	Exam              *ExamResponse `json:"exam,omitempty"`
}

// StudyPlanResponse 学习计划
// IsExamPassed 为 true 时只有 ExamInfo / ExamDate / Message 有意义
type StudyPlanResponse struct {
	ExamInfo            ExamResponse `json:"exam_info"`
	ExamDate            string       `json:"exam_date"`
	DaysUntilExam       int          `json:"days_until_exam"`
	IsExamPassed        bool         `json:"is_exam_passed"`
	Message             string       `json:"message,omitempty"`
	Weeks               int          `json:"weeks"`
	RemainingDays       int          `json:"remaining_days"`
	TotalWeekdays       int          `json:"total_weekdays"`
	TotalWeekends       int          `json:"total_weekends"`
	WeekdayStudyHours   float64      `json:"weekday_study_hours"`
	WeekendStudyHours   float64      `json:"weekend_study_hours"`
	TotalAvailableHours float64      `json:"total_available_hours"`
	WeeklyAverageHours  float64      `json:"weekly_average_hours"`
	CompletedHours      float64      `json:"completed_hours"`
	RemainingHours      float64      `json:"remaining_hours"`
	ProgressPercentage  float64      `json:"progress_percentage"`
	IsOnTrack           bool         `json:"is_on_track"`
}
