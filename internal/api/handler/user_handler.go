package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/service"
	"github.com/taisuke86/akiramehende/pkg/jwt"
	"github.com/taisuke86/akiramehende/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器（仅限本人）
type UserHandler struct {
	userSvc service.UserService
	authSvc service.AuthService // 注销账号后作废当前 Token
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, authSvc service.AuthService) *UserHandler {
	return &UserHandler{userSvc: userSvc, authSvc: authSvc}
}

// GetProfile 获取个人资料
// GET /api/v1/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	profile, err := h.userSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, profile)
}

// UpdateNickname 修改昵称
// PUT /api/v1/users/me/nickname
func (h *UserHandler) UpdateNickname(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateNicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.UpdateNickname(c.Request.Context(), userID, req.Nickname)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// ClearNickname 清除昵称
// DELETE /api/v1/users/me/nickname
func (h *UserHandler) ClearNickname(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.ClearNickname(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteAccount 注销账号（连同全部学习记录）
// DELETE /api/v1/users/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.handleUserError(c, err)
		return
	}

	if v, exists := c.Get(ctxClaims); exists && h.authSvc != nil {
		if claims, ok := v.(*jwt.Claims); ok {
			refresh, _ := c.Cookie(refreshCookieName)
			// 账号已删除，注销失败不影响结果
			_ = h.authSvc.Logout(c.Request.Context(), claims, refresh)
		}
	}

	response.OK(c, nil)
}

// handleUserError 统一处理用户模块业务错误
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	if writeValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}
