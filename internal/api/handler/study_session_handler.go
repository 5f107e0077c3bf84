package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/service"
	"github.com/taisuke86/akiramehende/pkg/response"
)

// StudySessionHandler 学习记录模块 HTTP 处理器
type StudySessionHandler struct {
	sessionSvc service.StudySessionService
}

// NewStudySessionHandler 创建 StudySessionHandler
func NewStudySessionHandler(sessionSvc service.StudySessionService) *StudySessionHandler {
	return &StudySessionHandler{sessionSvc: sessionSvc}
}

// Create 新增学习记录
// POST /api/v1/study-sessions
func (h *StudySessionHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateStudySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleStudySessionError(c, err)
		return
	}

	response.Created(c, session)
}

// List 学习记录列表（日期降序，分页）
// GET /api/v1/study-sessions
func (h *StudySessionHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.StudySessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.sessionSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleStudySessionError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 学习记录详情
// GET /api/v1/study-sessions/:id
func (h *StudySessionHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	session, err := h.sessionSvc.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.handleStudySessionError(c, err)
		return
	}

	response.OK(c, session)
}

// Update 修改学习记录
// PUT /api/v1/study-sessions/:id
func (h *StudySessionHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.UpdateStudySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleStudySessionError(c, err)
		return
	}

	response.OK(c, session)
}

// Delete 删除学习记录
// DELETE /api/v1/study-sessions/:id
func (h *StudySessionHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	if err := h.sessionSvc.Delete(c.Request.Context(), userID, id); err != nil {
		h.handleStudySessionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleStudySessionError 统一处理学习记录模块业务错误
func (h *StudySessionHandler) handleStudySessionError(c *gin.Context, err error) {
	if writeValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrStudySessionNotFound):
		response.NotFound(c, 13001, "学习记录不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}
