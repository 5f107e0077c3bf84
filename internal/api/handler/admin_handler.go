package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/service"
	"github.com/taisuke86/akiramehende/pkg/response"
)

// AdminHandler 管理端 HTTP 处理器（路由层已挂载 AdminOnly）
type AdminHandler struct {
	adminSvc service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// ListUsers 用户列表
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req dto.AdminUserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.adminSvc.ListUsers(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情
// GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	detail, err := h.adminSvc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, detail)
}

// DeleteUser 删除用户
// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	if err := h.adminSvc.DeleteUser(c.Request.Context(), callerID, id); err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, nil)
}

// Stats 全站统计
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminSvc.Stats(c.Request.Context())
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, stats)
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 15001, "用户不存在")
	case errors.Is(err, service.ErrAdminSelfDelete):
		response.BadRequest(c, 15002, "不能删除自己的账号")
	default:
		response.InternalError(c)
	}
}
