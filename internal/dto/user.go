package dto

// ── 用户模块 DTO ──

// UpdateNicknameRequest 修改昵称请求（长度在 Service 层按去除首尾空白后校验）
type UpdateNicknameRequest struct {
	Nickname string `json:"nickname" binding:"required"`
}

// ProfileResponse 个人资料（GET /users/me）
type ProfileResponse struct {
	UserResponse
	ExamSettings ExamSettingsResponse `json:"exam_settings"`
	SessionCount int64                `json:"session_count"`
	TotalMinutes int64                `json:"total_minutes"`
}
