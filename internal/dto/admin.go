package dto

// ── 管理模块 DTO ──

// AdminUserListRequest 用户列表查询参数
type AdminUserListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=100"` // 邮箱或昵称模糊匹配
}

// AdminUserResponse 用户列表项
type AdminUserResponse struct {
	UserResponse
	SessionCount int64 `json:"session_count"`
}

// AdminUserDetailResponse 用户详情（含全部学习记录）
type AdminUserDetailResponse struct {
	UserResponse
	ExamSettings  ExamSettingsResponse   `json:"exam_settings"`
	TotalMinutes  int                    `json:"total_minutes"`
	StudySessions []StudySessionResponse `json:"study_sessions"`
}

// AdminStatsResponse 全站统计
type AdminStatsResponse struct {
	UserCount     int64 `json:"user_count"`
	SessionCount  int64 `json:"session_count"`
	TotalDuration int64 `json:"total_duration"`
}
