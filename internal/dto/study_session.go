package dto

// ── 学习记录模块 DTO ──

// CreateStudySessionRequest 新增学习记录请求
// 日期为业务时区下的日历日（YYYY-MM-DD），字段级校验在 Service 层完成
type CreateStudySessionRequest struct {
	Subject  string  `json:"subject"`
	Duration int     `json:"duration"` // 分钟
	Date     string  `json:"date"`
	Memo     *string `json:"memo"`
}

// UpdateStudySessionRequest 修改学习记录请求
// 除日期外整体替换；未带日期时保留原日期
type UpdateStudySessionRequest struct {
	Subject  string  `json:"subject"`
	Duration int     `json:"duration"`
	Date     string  `json:"date"`
	Memo     *string `json:"memo"`
}

// StudySessionListRequest 学习记录列表查询参数
type StudySessionListRequest struct {
	PaginationRequest
	From    string `form:"from"`    // YYYY-MM-DD，含当天
	To      string `form:"to"`      // YYYY-MM-DD，含当天
	Subject string `form:"subject" binding:"omitempty,max=100"`
}

// StudySessionResponse 学习记录响应
type StudySessionResponse struct {
	ID          string  `json:"id"`
	Subject     string  `json:"subject"`
	Duration    int     `json:"duration"`
	Date        string  `json:"date"`         // YYYY-MM-DD
	DisplayDate string  `json:"display_date"` // YYYY/MM/DD
	Memo        *string `json:"memo"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
