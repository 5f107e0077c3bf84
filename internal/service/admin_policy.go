package service

import "strings"

// AdminPolicy 管理员邮箱白名单
// 白名单为空时没有任何人是管理员；名单内的邮箱还必须已验证
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy 创建白名单（邮箱不区分大小写）
func NewAdminPolicy(emails []string) *AdminPolicy {
	p := &AdminPolicy{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			p.emails[e] = struct{}{}
		}
	}
	return p
}

// Listed 邮箱是否在白名单中（不论是否已验证）
func (p *AdminPolicy) Listed(email string) bool {
	if p == nil || email == "" {
		return false
	}
	_, ok := p.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// IsAdmin 已验证且在白名单中的邮箱才是管理员
func (p *AdminPolicy) IsAdmin(email string, emailVerified bool) bool {
	return emailVerified && p.Listed(email)
}
