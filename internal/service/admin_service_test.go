package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/model"
)

func setupTestAdminService() (AdminService, *mockUserRepo, *mockStudySessionRepo) {
	repo, users, sessions := newTestRepos()
	policy := NewAdminPolicy([]string{"admin@example.com"})
	svc := NewAdminService(repo, policy, testClock(time.Date(2025, 3, 15, 9, 0, 0, 0, testJST)), zap.NewNop())

	verifiedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, testJST)
	users.users["admin"] = &model.User{UserID: "admin", Email: "admin@example.com", EmailVerifiedAt: &verifiedAt}
	users.users["u1"] = &model.User{UserID: "u1", Email: "alice@example.com"}
	users.users["u2"] = &model.User{UserID: "u2", Email: "bob@example.com"}
	return svc, users, sessions
}

func TestAdminService_ListUsers(t *testing.T) {
	svc, _, sessions := setupTestAdminService()
	addSession(sessions, "u1", "数学", 30, jstDay(2025, 3, 1))
	addSession(sessions, "u1", "数学", 30, jstDay(2025, 3, 2))

	list, total, err := svc.ListUsers(context.Background(), &dto.AdminUserListRequest{
		PaginationRequest: dto.PaginationRequest{Page: 1, PageSize: 20},
	})
	if err != nil {
		t.Fatalf("ListUsers 应成功: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("期望 3 个用户，实际 total=%d len=%d", total, len(list))
	}
	for _, u := range list {
		switch u.Email {
		case "admin@example.com":
			if !u.IsAdmin {
				t.Error("白名单内用户应标记为管理员")
			}
		case "alice@example.com":
			if u.SessionCount != 2 || u.IsAdmin {
				t.Errorf("alice 数据不符: %+v", u)
			}
		}
	}

	filtered, total, _ := svc.ListUsers(context.Background(), &dto.AdminUserListRequest{
		PaginationRequest: dto.PaginationRequest{Page: 1, PageSize: 20},
		Keyword:           "bob",
	})
	if total != 1 || filtered[0].ID != "u2" {
		t.Errorf("关键字过滤失败: %+v", filtered)
	}
}

func TestAdminService_GetUser(t *testing.T) {
	svc, _, sessions := setupTestAdminService()
	addSession(sessions, "u1", "数学", 30, jstDay(2025, 3, 1))
	addSession(sessions, "u1", "英語", 45, jstDay(2025, 3, 2))

	detail, err := svc.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser 应成功: %v", err)
	}
	if detail.TotalMinutes != 75 || len(detail.StudySessions) != 2 {
		t.Errorf("详情数据不符: %+v", detail)
	}
	if detail.ExamSettings.HasExamSettings {
		t.Error("未设置目标时 HasExamSettings 应为 false")
	}

	if _, err := svc.GetUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestAdminService_DeleteUser(t *testing.T) {
	svc, users, sessions := setupTestAdminService()
	addSession(sessions, "u1", "数学", 30, jstDay(2025, 3, 1))
	ctx := context.Background()

	if err := svc.DeleteUser(ctx, "admin", "admin"); !errors.Is(err, ErrAdminSelfDelete) {
		t.Errorf("期望 ErrAdminSelfDelete，实际: %v", err)
	}
	if _, ok := users.users["admin"]; !ok {
		t.Error("拒绝自删时不应删除任何数据")
	}

	if err := svc.DeleteUser(ctx, "admin", "u1"); err != nil {
		t.Fatalf("DeleteUser 应成功: %v", err)
	}
	if _, ok := users.users["u1"]; ok {
		t.Error("用户应已删除")
	}
	if n, _ := sessions.CountByUser(ctx, "u1"); n != 0 {
		t.Errorf("用户的学习记录应一并删除，剩余=%d", n)
	}

	if err := svc.DeleteUser(ctx, "admin", "u1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("重复删除期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestAdminService_Stats(t *testing.T) {
	svc, _, sessions := setupTestAdminService()
	addSession(sessions, "u1", "数学", 30, jstDay(2025, 3, 1))
	addSession(sessions, "u2", "英語", 45, jstDay(2025, 3, 2))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.UserCount != 3 || stats.SessionCount != 2 || stats.TotalDuration != 75 {
		t.Errorf("统计不符: %+v", stats)
	}
}
