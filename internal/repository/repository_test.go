package repository_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/config"
	"github.com/taisuke86/akiramehende/internal/model"
	"github.com/taisuke86/akiramehende/internal/repository"
	"github.com/taisuke86/akiramehende/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var jst = time.FixedZone("JST", 9*60*60)

func newTestRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "repo.db"),
	}
	db, err := database.NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := database.RunMigrations(db, "sqlite", zap.NewNop()); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	return repository.NewRepository(db), db
}

func createUser(t *testing.T, repo *repository.Repository, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hash"}
	if err := repo.User.Create(context.Background(), user); err != nil {
		t.Fatalf("创建用户 %s 失败: %v", email, err)
	}
	if user.UserID == "" {
		t.Fatal("创建后应生成 UserID")
	}
	return user
}

func createSession(t *testing.T, repo *repository.Repository, userID, subject string, minutes int, date time.Time) *model.StudySession {
	t.Helper()
	s := &model.StudySession{UserID: userID, Subject: subject, Duration: minutes, Date: date}
	if err := repo.StudySession.Create(context.Background(), s); err != nil {
		t.Fatalf("创建学习记录失败: %v", err)
	}
	return s
}

func mustGetUser(t *testing.T, repo *repository.Repository, id string) *model.User {
	t.Helper()
	got, err := repo.User.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	return got
}

func expectNotFound(t *testing.T, err error, what string) {
	t.Helper()
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("%s: 期望 ErrRecordNotFound，实际: %v", what, err)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, jst)
}

// ═══════════════════════════════════════════════════════════
// UserRepository
// ═══════════════════════════════════════════════════════════

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "taro@example.com")

	if got := mustGetUser(t, repo, user.UserID); got.Email != "taro@example.com" {
		t.Errorf("期望 Email=taro@example.com，实际=%s", got.Email)
	}

	got, err := repo.User.GetByEmail(ctx, "TARO@example.com")
	if err != nil {
		t.Fatalf("按邮箱查询应不区分大小写: %v", err)
	}
	if got.UserID != user.UserID {
		t.Errorf("期望 UserID=%s，实际=%s", user.UserID, got.UserID)
	}
	if got.EmailVerified() {
		t.Error("普通创建的账号不应带验证时间")
	}

	_, err = repo.User.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	expectNotFound(t, err, "不存在的用户")
}

func TestUserRepo_EmailVerifiedAtPersisted(t *testing.T) {
	repo, _ := newTestRepo(t)
	verifiedAt := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	user := &model.User{Email: "admin@example.com", PasswordHash: "hash", EmailVerifiedAt: &verifiedAt}
	if err := repo.User.Create(context.Background(), user); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	got := mustGetUser(t, repo, user.UserID)
	if !got.EmailVerified() || !got.EmailVerifiedAt.Equal(verifiedAt) {
		t.Errorf("验证时间应被保存，实际=%v", got.EmailVerifiedAt)
	}
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo, _ := newTestRepo(t)
	createUser(t, repo, "dup@example.com")

	if err := repo.User.Create(context.Background(), &model.User{Email: "dup@example.com", PasswordHash: "x"}); err == nil {
		t.Error("重复邮箱应违反唯一索引")
	}
}

func TestUserRepo_UpdateNickname(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "nick@example.com")

	name := "たろう"
	if err := repo.User.UpdateNickname(ctx, user.UserID, &name); err != nil {
		t.Fatalf("UpdateNickname 失败: %v", err)
	}
	if got := mustGetUser(t, repo, user.UserID); got.Nickname == nil || *got.Nickname != "たろう" {
		t.Errorf("昵称应为 たろう，实际=%v", got.Nickname)
	}

	if err := repo.User.UpdateNickname(ctx, user.UserID, nil); err != nil {
		t.Fatalf("清除昵称失败: %v", err)
	}
	if got := mustGetUser(t, repo, user.UserID); got.Nickname != nil {
		t.Errorf("昵称应被清除，实际=%v", *got.Nickname)
	}

	expectNotFound(t, repo.User.UpdateNickname(ctx, "missing", &name), "更新不存在的用户")
}

func TestUserRepo_ExamGoal_SetAndClear(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "goal@example.com")

	if _, ok := user.ExamGoal(); ok {
		t.Fatal("新用户不应有考试目标")
	}

	goal := model.ExamGoal{
		ExamCode:          "FE",
		ExamDate:          day(2026, 4, 19),
		WeekdayStudyHours: 1.5,
		WeekendStudyHours: 0,
	}
	if err := repo.User.SetExamGoal(ctx, user.UserID, goal); err != nil {
		t.Fatalf("SetExamGoal 失败: %v", err)
	}

	stored, ok := mustGetUser(t, repo, user.UserID).ExamGoal()
	if !ok {
		t.Fatal("设置后应能读到完整考试目标")
	}
	if stored.ExamCode != "FE" || !stored.ExamDate.Equal(goal.ExamDate) {
		t.Errorf("考试目标不符: %+v", stored)
	}
	if math.Abs(stored.WeekdayStudyHours-1.5) > 1e-9 || stored.WeekendStudyHours != 0 {
		t.Errorf("学习时间预算不符: %+v", stored)
	}

	if err := repo.User.ClearExamGoal(ctx, user.UserID); err != nil {
		t.Fatalf("ClearExamGoal 失败: %v", err)
	}
	got := mustGetUser(t, repo, user.UserID)
	if _, ok := got.ExamGoal(); ok {
		t.Error("清除后不应有考试目标")
	}
	if got.TargetExam != nil || got.ExamDate != nil || got.WeekdayStudyHours != nil || got.WeekendStudyHours != nil {
		t.Errorf("四列应同时清空: %+v", got)
	}
}

func TestUserRepo_ListWithSessionCounts(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	a := createUser(t, repo, "a@example.com")
	b := createUser(t, repo, "b@example.com")
	createSession(t, repo, a.UserID, "数学", 30, day(2025, 3, 1))
	createSession(t, repo, a.UserID, "英語", 45, day(2025, 3, 2))

	users, total, err := repo.User.List(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("期望 2 个用户，实际 total=%d len=%d", total, len(users))
	}

	counts := map[string]int64{}
	for _, u := range users {
		counts[u.UserID] = u.SessionCount
	}
	if counts[a.UserID] != 2 || counts[b.UserID] != 0 {
		t.Errorf("学习记录数不符: %v", counts)
	}

	filtered, total, err := repo.User.List(ctx, "B@EX", 0, 10)
	if err != nil {
		t.Fatalf("关键字查询失败: %v", err)
	}
	if total != 1 || len(filtered) != 1 || filtered[0].UserID != b.UserID {
		t.Errorf("关键字过滤失败: total=%d %+v", total, filtered)
	}

	if n, err := repo.User.Count(ctx); err != nil || n != 2 {
		t.Errorf("期望 Count=2，实际=%d err=%v", n, err)
	}
}

func TestUserRepo_List_KeywordIsLiteral(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	createUser(t, repo, "alice@example.com")
	createUser(t, repo, "bob@example.com")
	under := createUser(t, repo, "first_last@example.com")
	pct := createUser(t, repo, "100%sure@example.com")

	cases := []struct {
		keyword string
		want    []string
	}{
		{"%", []string{pct.UserID}},
		{"_", []string{under.UserID}},
		{"t_l", []string{under.UserID}},
		{"a%e", nil},
	}
	for _, tc := range cases {
		users, total, err := repo.User.List(ctx, tc.keyword, 0, 10)
		if err != nil {
			t.Fatalf("%q: List 失败: %v", tc.keyword, err)
		}
		if int(total) != len(tc.want) || len(users) != len(tc.want) {
			t.Errorf("%q: 通配符应按字面匹配，期望 %d 条，实际 total=%d", tc.keyword, len(tc.want), total)
			continue
		}
		for i, id := range tc.want {
			if users[i].UserID != id {
				t.Errorf("%q: 期望 %s，实际 %s", tc.keyword, id, users[i].UserID)
			}
		}
	}
}

func TestUserRepo_DeleteAccount(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	victim := createUser(t, repo, "victim@example.com")
	other := createUser(t, repo, "other@example.com")
	createSession(t, repo, victim.UserID, "数学", 30, day(2025, 3, 1))
	createSession(t, repo, victim.UserID, "英語", 30, day(2025, 3, 2))
	createSession(t, repo, other.UserID, "英語", 60, day(2025, 3, 2))

	if err := repo.User.DeleteAccount(ctx, victim.UserID); err != nil {
		t.Fatalf("DeleteAccount 失败: %v", err)
	}

	_, err := repo.User.GetByID(ctx, victim.UserID)
	expectNotFound(t, err, "已删除用户")

	if n, err := repo.StudySession.CountByUser(ctx, victim.UserID); err != nil || n != 0 {
		t.Errorf("被删用户的学习记录应一并删除，剩余=%d err=%v", n, err)
	}
	if n, err := repo.StudySession.CountByUser(ctx, other.UserID); err != nil || n != 1 {
		t.Errorf("其他用户的学习记录不应受影响，实际=%d err=%v", n, err)
	}

	expectNotFound(t, repo.User.DeleteAccount(ctx, victim.UserID), "重复删除")
}

// ═══════════════════════════════════════════════════════════
// StudySessionRepository
// ═══════════════════════════════════════════════════════════

func TestStudySessionRepo_OwnershipScoped(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	owner := createUser(t, repo, "owner@example.com")
	intruder := createUser(t, repo, "intruder@example.com")
	s := createSession(t, repo, owner.UserID, "数学", 30, day(2025, 3, 1))

	_, err := repo.StudySession.GetByIDForUser(ctx, s.SessionID, intruder.UserID)
	expectNotFound(t, err, "他人读取")

	s.Subject = "英語"
	foreign := *s
	foreign.UserID = intruder.UserID
	expectNotFound(t, repo.StudySession.Update(ctx, &foreign), "他人更新")
	expectNotFound(t, repo.StudySession.DeleteForUser(ctx, s.SessionID, intruder.UserID), "他人删除")

	if err := repo.StudySession.Update(ctx, s); err != nil {
		t.Fatalf("本人更新失败: %v", err)
	}
	got, err := repo.StudySession.GetByIDForUser(ctx, s.SessionID, owner.UserID)
	if err != nil {
		t.Fatalf("本人读取失败: %v", err)
	}
	if got.Subject != "英語" {
		t.Errorf("期望科目=英語，实际=%s", got.Subject)
	}

	if err := repo.StudySession.DeleteForUser(ctx, s.SessionID, owner.UserID); err != nil {
		t.Fatalf("本人删除失败: %v", err)
	}
	// 重复删除视为不存在
	expectNotFound(t, repo.StudySession.DeleteForUser(ctx, s.SessionID, owner.UserID), "重复删除")
}

func TestStudySessionRepo_UpdateClearsMemo(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "memo@example.com")

	memo := "第3章"
	s := &model.StudySession{UserID: user.UserID, Subject: "数学", Duration: 30, Date: day(2025, 3, 1), Memo: &memo}
	if err := repo.StudySession.Create(ctx, s); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	s.Memo = nil
	if err := repo.StudySession.Update(ctx, s); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	got, err := repo.StudySession.GetByIDForUser(ctx, s.SessionID, user.UserID)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if got.Memo != nil {
		t.Errorf("备注应被清空，实际=%s", *got.Memo)
	}
}

func TestStudySessionRepo_ListByUser(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "list@example.com")

	for i := 1; i <= 5; i++ {
		subject := "数学"
		if i%2 == 0 {
			subject = "英語"
		}
		createSession(t, repo, user.UserID, subject, i*10, day(2025, 3, i))
	}

	sessions, total, err := repo.StudySession.ListByUser(ctx, user.UserID, repository.StudySessionFilter{}, 0, 2)
	if err != nil {
		t.Fatalf("ListByUser 失败: %v", err)
	}
	if total != 5 || len(sessions) != 2 {
		t.Fatalf("期望 total=5 len=2，实际 total=%d len=%d", total, len(sessions))
	}
	if sessions[0].Date.In(jst).Day() != 5 || sessions[1].Date.In(jst).Day() != 4 {
		t.Errorf("应按日期降序: %v, %v", sessions[0].Date, sessions[1].Date)
	}

	from, to := day(2025, 3, 2), day(2025, 3, 4)
	sessions, total, err = repo.StudySession.ListByUser(ctx, user.UserID,
		repository.StudySessionFilter{From: &from, To: &to, Subject: "英語"}, 0, 10)
	if err != nil {
		t.Fatalf("过滤查询失败: %v", err)
	}
	if total != 2 {
		t.Errorf("期望 2 条，实际=%d", total)
	}
	for _, s := range sessions {
		if s.Subject != "英語" {
			t.Errorf("科目过滤失败: %s", s.Subject)
		}
	}
}

func TestStudySessionRepo_RangeAndSums(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "range@example.com")
	other := createUser(t, repo, "range2@example.com")

	createSession(t, repo, user.UserID, "数学", 30, day(2025, 2, 28))
	createSession(t, repo, user.UserID, "数学", 40, day(2025, 3, 1))
	createSession(t, repo, user.UserID, "英語", 50, day(2025, 3, 31))
	createSession(t, repo, user.UserID, "英語", 60, day(2025, 4, 1))
	createSession(t, repo, other.UserID, "英語", 70, day(2025, 3, 15))

	start := day(2025, 3, 1)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	sessions, err := repo.StudySession.ListByUserInRange(ctx, user.UserID, start, end)
	if err != nil {
		t.Fatalf("ListByUserInRange 失败: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("月初与月末当天都应计入，期望 2 条，实际=%d", len(sessions))
	}

	if all, err := repo.StudySession.ListAllByUser(ctx, user.UserID); err != nil || len(all) != 4 {
		t.Errorf("期望全部 4 条，实际=%d err=%v", len(all), err)
	}

	checks := []struct {
		name string
		fn   func() (int64, error)
		want int64
	}{
		{"本人总时长", func() (int64, error) { return repo.StudySession.SumDurationByUser(ctx, user.UserID) }, 180},
		{"无记录用户总时长", func() (int64, error) { return repo.StudySession.SumDurationByUser(ctx, "nobody") }, 0},
		{"全站记录数", func() (int64, error) { return repo.StudySession.CountAll(ctx) }, 5},
		{"全站总时长", func() (int64, error) { return repo.StudySession.SumDurationAll(ctx) }, 250},
	}
	for _, c := range checks {
		got, err := c.fn()
		if err != nil {
			t.Fatalf("%s 失败: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: 期望 %d，实际 %d", c.name, c.want, got)
		}
	}
}

func TestStudySessionRepo_ManyUsersIsolation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		u := createUser(t, repo, fmt.Sprintf("user%d@example.com", i))
		ids = append(ids, u.UserID)
		for j := 0; j <= i; j++ {
			createSession(t, repo, u.UserID, "数学", 10, day(2025, 1, j+1))
		}
	}

	for i, id := range ids {
		n, err := repo.StudySession.CountByUser(ctx, id)
		if err != nil {
			t.Fatalf("CountByUser 失败: %v", err)
		}
		if n != int64(i+1) {
			t.Errorf("用户 %d 期望 %d 条，实际 %d", i, i+1, n)
		}
	}
}
