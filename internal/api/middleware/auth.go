package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taisuke86/akiramehende/pkg/jwt"
	"github.com/taisuke86/akiramehende/pkg/response"
)

// 注入 gin.Context 的键，handler 包按同名键读取
const (
	CtxUserID        = "user_id"
	CtxEmail         = "email"
	CtxEmailVerified = "email_verified"
	CtxClaims        = "claims"
)

// RevocationChecker 查询 Token 是否已注销（Redis 实现见 pkg/redis）
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AdminChecker 判断已认证的邮箱是否为管理员
type AdminChecker interface {
	IsAdmin(email string, emailVerified bool) bool
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// revocations 为 nil 或查询失败时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxEmailVerified, claims.EmailVerified)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}

// AdminOnly 管理员白名单中间件，须挂在 JWTAuth 之后
// 未认证返回 401，邮箱未验证或不在白名单返回 403
func AdminOnly(admins AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxEmail)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		email, _ := v.(string)
		if admins == nil || !admins.IsAdmin(email, c.GetBool(CtxEmailVerified)) {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}

		c.Next()
	}
}
