// Package utils 提供令牌签发等通用工具
package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// 令牌类型，同时作为 aud 声明，访问令牌不能当刷新令牌使用
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims 声明，用户 ID 存放在 sub
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID 令牌主体
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenPair 登录与注册返回的令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Subject 签发令牌所需的账号信息
type Subject struct {
	UserID string
	Email  string
	Role   string
}

// JWTManager HS256 签发与校验
type JWTManager struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewJWTManager 创建管理器
func NewJWTManager(secret, issuer string) *JWTManager {
	return &JWTManager{key: []byte(secret), issuer: issuer, now: time.Now}
}

func audience(tokenType string) string {
	return "podbook:" + tokenType
}

// Issue 签发单个令牌
func (m *JWTManager) Issue(sub Subject, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Email: sub.Email,
		Role:  sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   sub.UserID,
			Audience:  jwt.ClaimStrings{audience(tokenType)},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// IssuePair 签发访问令牌与刷新令牌
func (m *JWTManager) IssuePair(sub Subject, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	access, err := m.Issue(sub, TokenTypeAccess, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.Issue(sub, TokenTypeRefresh, refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify 校验签名、签发方、有效期与令牌类型
func (m *JWTManager) Verify(raw, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(audience(tokenType)),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.Subject == "":
		return nil, ErrInvalidToken
	}
	return claims, nil
}
