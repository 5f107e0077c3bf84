package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/model"
	"github.com/taisuke86/akiramehende/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users    map[string]*model.User
	sessions *mockStudySessionRepo // DeleteAccount 级联删除用
	seq      int
	err      error // 非 nil 时所有方法返回该错误
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateNickname(_ context.Context, id string, nickname *string) error {
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Nickname = nickname
	return nil
}

func (m *mockUserRepo) SetExamGoal(_ context.Context, id string, goal model.ExamGoal) error {
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	code, date := goal.ExamCode, goal.ExamDate
	wd, we := goal.WeekdayStudyHours, goal.WeekendStudyHours
	u.TargetExam, u.ExamDate, u.WeekdayStudyHours, u.WeekendStudyHours = &code, &date, &wd, &we
	return nil
}

func (m *mockUserRepo) ClearExamGoal(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TargetExam, u.ExamDate, u.WeekdayStudyHours, u.WeekendStudyHours = nil, nil, nil, nil
	return nil
}

func (m *mockUserRepo) List(_ context.Context, keyword string, offset, limit int) ([]repository.UserWithSessionCount, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []repository.UserWithSessionCount
	for _, u := range m.users {
		if keyword != "" && !strings.Contains(u.Email, strings.ToLower(keyword)) {
			continue
		}
		var count int64
		if m.sessions != nil {
			count, _ = m.sessions.CountByUser(context.Background(), u.UserID)
		}
		all = append(all, repository.UserWithSessionCount{User: *u, SessionCount: count})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })

	total := int64(len(all))
	if offset >= len(all) {
		return []repository.UserWithSessionCount{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) DeleteAccount(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.sessions != nil {
		for sid, s := range m.sessions.sessions {
			if s.UserID == id {
				delete(m.sessions.sessions, sid)
			}
		}
	}
	delete(m.users, id)
	return nil
}

// ── Mock StudySessionRepository ──

type mockStudySessionRepo struct {
	sessions map[string]*model.StudySession
	seq      int
	err      error
}

func newMockStudySessionRepo() *mockStudySessionRepo {
	return &mockStudySessionRepo{sessions: make(map[string]*model.StudySession)}
}

func (m *mockStudySessionRepo) Create(_ context.Context, s *model.StudySession) error {
	if m.err != nil {
		return m.err
	}
	if s.SessionID == "" {
		m.seq++
		s.SessionID = fmt.Sprintf("sess-%03d", m.seq)
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	cp := *s
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *mockStudySessionRepo) GetByIDForUser(_ context.Context, id, userID string) (*model.StudySession, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.sessions[id]; ok && s.UserID == userID {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudySessionRepo) ListByUser(_ context.Context, userID string, filter repository.StudySessionFilter, offset, limit int) ([]model.StudySession, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []model.StudySession
	for _, s := range m.sorted(userID) {
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		if filter.Subject != "" && s.Subject != filter.Subject {
			continue
		}
		all = append(all, s)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.StudySession{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudySessionRepo) ListByUserInRange(_ context.Context, userID string, from, to time.Time) ([]model.StudySession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return FilterSessions(m.sorted(userID), from, to), nil
}

func (m *mockStudySessionRepo) ListAllByUser(_ context.Context, userID string) ([]model.StudySession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(userID), nil
}

func (m *mockStudySessionRepo) Update(_ context.Context, s *model.StudySession) error {
	if m.err != nil {
		return m.err
	}
	existing, ok := m.sessions[s.SessionID]
	if !ok || existing.UserID != s.UserID {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	cp.UpdatedAt = time.Now()
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *mockStudySessionRepo) DeleteForUser(_ context.Context, id, userID string) error {
	if m.err != nil {
		return m.err
	}
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockStudySessionRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.sorted(userID))), nil
}

func (m *mockStudySessionRepo) SumDurationByUser(_ context.Context, userID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(SumMinutes(m.sorted(userID))), nil
}

func (m *mockStudySessionRepo) CountAll(_ context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.sessions)), nil
}

func (m *mockStudySessionRepo) SumDurationAll(_ context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var total int64
	for _, s := range m.sessions {
		total += int64(s.Duration)
	}
	return total, nil
}

// sorted 返回指定用户的记录（日期降序）
func (m *mockStudySessionRepo) sorted(userID string) []model.StudySession {
	var out []model.StudySession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].SessionID > out[j].SessionID
	})
	return out
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── 测试辅助 ──

// newTestRepos 返回互相关联的 mock 仓储
func newTestRepos() (*repository.Repository, *mockUserRepo, *mockStudySessionRepo) {
	users := newMockUserRepo()
	sessions := newMockStudySessionRepo()
	users.sessions = sessions
	return &repository.Repository{User: users, StudySession: sessions}, users, sessions
}
