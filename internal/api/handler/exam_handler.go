package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/service"
	"github.com/taisuke86/akiramehende/pkg/response"
)

// ExamHandler 考试目录与考试目标 HTTP 处理器
type ExamHandler struct {
	examSvc service.ExamService
}

// NewExamHandler 创建 ExamHandler
func NewExamHandler(examSvc service.ExamService) *ExamHandler {
	return &ExamHandler{examSvc: examSvc}
}

// ListExams 考试列表
// GET /api/v1/exams?level=basic
func (h *ExamHandler) ListExams(c *gin.Context) {
	var req dto.ExamListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	response.OK(c, gin.H{"list": h.examSvc.List(req.Level)})
}

// GetExam 考试详情
// GET /api/v1/exams/:code
func (h *ExamHandler) GetExam(c *gin.Context) {
	exam, err := h.examSvc.Get(c.Param("code"))
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, exam)
}

// GetSettings 获取考试目标
// GET /api/v1/exam-settings
func (h *ExamHandler) GetSettings(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	settings, err := h.examSvc.GetSettings(c.Request.Context(), userID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, settings)
}

// UpdateSettings 设置考试目标（四项同时写入）
// PUT /api/v1/exam-settings
func (h *ExamHandler) UpdateSettings(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateExamSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	settings, err := h.examSvc.UpdateSettings(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, settings)
}

// ClearSettings 清除考试目标（四项同时清空）
// DELETE /api/v1/exam-settings
func (h *ExamHandler) ClearSettings(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	settings, err := h.examSvc.ClearSettings(c.Request.Context(), userID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, settings)
}

// GetStudyPlan 学习计划
// GET /api/v1/exam-settings/study-plan
func (h *ExamHandler) GetStudyPlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	plan, err := h.examSvc.GetStudyPlan(c.Request.Context(), userID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, plan)
}

// handleExamError 统一处理考试模块业务错误
func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	if writeValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 14001, "考试不存在")
	case errors.Is(err, service.ErrExamSettingsNotFound):
		response.NotFound(c, 14002, "尚未设置考试目标")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}
