package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/service"
	"github.com/taisuke86/akiramehende/pkg/response"
)

// DashboardHandler 统计模块 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Monthly 月度统计
// GET /api/v1/dashboard/monthly?year=2025&month=3
func (h *DashboardHandler) Monthly(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MonthlyStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	stats, err := h.dashboardSvc.Monthly(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, stats)
}

// Weekly 本周统计
// GET /api/v1/dashboard/weekly
func (h *DashboardHandler) Weekly(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	stats, err := h.dashboardSvc.Weekly(c.Request.Context(), userID)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, stats)
}

// Yearly 年度统计
// GET /api/v1/dashboard/yearly?year=2025
func (h *DashboardHandler) Yearly(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.YearlyStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	stats, err := h.dashboardSvc.Yearly(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, stats)
}

// GoalProgress 目标进度（考试目标或月度目标）
// GET /api/v1/dashboard/goal-progress
func (h *DashboardHandler) GoalProgress(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	progress, err := h.dashboardSvc.GoalProgress(c.Request.Context(), userID)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, progress)
}

func (h *DashboardHandler) handleDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 14001, "目标考试不存在")
	default:
		response.InternalError(c)
	}
}
