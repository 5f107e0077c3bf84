package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/model"
	"github.com/taisuke86/akiramehende/internal/repository"
	pkgerrors "github.com/taisuke86/akiramehende/pkg/errors"
)

var (
	ErrBootstrapNotListed = errors.New("该邮箱不在管理员白名单中")
	ErrBootstrapOccupied  = errors.New("该邮箱已被未验证的账号占用")
)

// 与注册接口的密码长度限制一致（bcrypt 最多 72 字节）
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// BootstrapAdminInput 初始化管理员账号参数
type BootstrapAdminInput struct {
	Email    string
	Password string
	// Replace 为 true 时删除占用该邮箱的未验证账号（连同学习记录）后重建
	Replace bool
}

// BootstrapAdmin 创建已验证邮箱的白名单账号
//
// 已存在且已验证时不做任何修改，返回 created=false。
// 未验证账号占用该邮箱时必须显式 Replace，重建后旧账号的 Token 因用户 ID 变化而失效。
func BootstrapAdmin(
	ctx context.Context,
	repo *repository.Repository,
	policy *AdminPolicy,
	in BootstrapAdminInput,
	now time.Time,
	logger *zap.Logger,
) (*model.User, bool, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, false, pkgerrors.Invalid("email", "邮箱不能为空")
	}
	if !policy.Listed(email) {
		return nil, false, ErrBootstrapNotListed
	}
	if len(in.Password) < minPasswordLength || len(in.Password) > maxPasswordLength {
		return nil, false, pkgerrors.Invalid("password", "密码长度须为 8-72 字符")
	}

	existing, err := repo.User.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.EmailVerified():
		return existing, false, nil
	case err == nil:
		if !in.Replace {
			return nil, false, ErrBootstrapOccupied
		}
		if err := repo.User.DeleteAccount(ctx, existing.UserID); err != nil {
			logger.Error("删除未验证账号失败", zap.String("user_id", existing.UserID), zap.Error(err))
			return nil, false, err
		}
		logger.Warn("已删除占用管理员邮箱的未验证账号", zap.String("user_id", existing.UserID))
	case !errors.Is(err, gorm.ErrRecordNotFound):
		logger.Error("查询用户失败", zap.Error(err))
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("密码哈希失败", zap.Error(err))
		return nil, false, err
	}

	verifiedAt := now
	user := &model.User{
		Email:           email,
		PasswordHash:    string(hash),
		EmailVerifiedAt: &verifiedAt,
	}
	if err := repo.User.Create(ctx, user); err != nil {
		logger.Error("创建管理员账号失败", zap.String("email", email), zap.Error(err))
		return nil, false, err
	}

	logger.Info("管理员账号已创建", zap.String("user_id", user.UserID))
	return user, true, nil
}
