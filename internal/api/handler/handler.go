package handler

import (
	"github.com/taisuke86/akiramehende/config"
	"github.com/taisuke86/akiramehende/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	StudySession *StudySessionHandler
	Dashboard    *DashboardHandler
	Exam         *ExamHandler
	Admin        *AdminHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, cfg),
		User:         NewUserHandler(svc.User, svc.Auth),
		StudySession: NewStudySessionHandler(svc.StudySession),
		Dashboard:    NewDashboardHandler(svc.Dashboard),
		Exam:         NewExamHandler(svc.Exam),
		Admin:        NewAdminHandler(svc.Admin),
		Export:       NewExportHandler(svc.Export),
	}
}
