package handler

import (
	"github.com/gin-gonic/gin"

	pkgerrors "github.com/taisuke86/akiramehende/pkg/errors"
	"github.com/taisuke86/akiramehende/pkg/jwt"
	"github.com/taisuke86/akiramehende/pkg/response"
)

// 与 middleware 包约定的上下文键
const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中提取当前 Access Token 的声明（注销时使用）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// writeValidationError 若 err 为字段校验错误则写入 400 并返回 true
func writeValidationError(c *gin.Context, err error) bool {
	ve, ok := pkgerrors.AsValidation(err)
	if !ok {
		return false
	}
	response.ValidationFailed(c, ve.Field, ve.Message)
	return true
}
