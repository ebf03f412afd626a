// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"podbook/internal/config"
	"podbook/internal/domain/entity"
	"podbook/internal/domain/repository"
	"podbook/internal/interfaces/http/dto"
	apperrors "podbook/pkg/errors"
	"podbook/pkg/logger"
	"podbook/pkg/utils"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	jwtManager *utils.JWTManager
	accessTTL  time.Duration
	refreshTTL time.Duration
	userRepo   repository.UserRepository
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.JWTConfig, userRepo repository.UserRepository) *AuthHandler {
	accessTTL := cfg.Expiration
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshExpiration
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &AuthHandler{
		jwtManager: utils.NewJWTManager(cfg.Secret, cfg.Issuer),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		userRepo:   userRepo,
	}
}

// Register 注册
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.AuthResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	user := entity.NewUser(req.Email, req.Name)
	if err := user.SetPassword(req.Password); err != nil {
		logger.Error(ctx, "failed to hash password", err)
		dto.InternalError(c, "registration failed")
		return
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			dto.FromError(c, apperrors.ErrConflict.WithDetail("email already registered"))
			return
		}
		logger.Error(ctx, "failed to create user", err)
		dto.InternalError(c, "registration failed")
		return
	}
	logger.Info(ctx, "user registered", "user_id", user.ID)

	resp, err := h.issue(user)
	if err != nil {
		dto.InternalError(c, "user created but failed to generate tokens")
		return
	}
	dto.Created(c, resp)
}

// Login 登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	user, err := h.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Error(ctx, "failed to get user", err)
		dto.InternalError(c, "login failed")
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		dto.FromError(c, apperrors.ErrUnauthorized.WithDetail("invalid email or password"))
		return
	}

	if err := h.userRepo.RecordLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Warn(ctx, "failed to record login", "error", err.Error(), "user_id", user.ID)
	}

	resp, err := h.issue(user)
	if err != nil {
		dto.InternalError(c, "failed to generate tokens")
		return
	}
	dto.Success(c, resp)
}

// Refresh 使用 RefreshToken 换取新的 AccessToken，角色以账号当前状态为准
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	claims, err := h.jwtManager.Verify(req.RefreshToken, utils.TokenTypeRefresh)
	if err != nil {
		dto.FromError(c, apperrors.ErrTokenInvalid)
		return
	}

	user, err := h.userRepo.FindByID(ctx, claims.UserID())
	if err != nil {
		logger.Error(ctx, "failed to load user for refresh", err, "user_id", claims.UserID())
		dto.InternalError(c, "refresh failed")
		return
	}
	if user == nil {
		dto.FromError(c, apperrors.ErrUnauthorized.WithDetail("account no longer exists"))
		return
	}

	access, err := h.jwtManager.Issue(subjectOf(user), utils.TokenTypeAccess, h.accessTTL)
	if err != nil {
		dto.InternalError(c, "failed to generate access token")
		return
	}
	dto.Success(c, &dto.AuthResponse{
		AccessToken: access,
		ExpiresIn:   int(h.accessTTL.Seconds()),
	})
}

func (h *AuthHandler) issue(user *entity.User) (*dto.AuthResponse, error) {
	tokens, err := h.jwtManager.IssuePair(subjectOf(user), h.accessTTL, h.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int(h.accessTTL.Seconds()),
		User:         dto.ToAuthUserDTO(user),
	}, nil
}

func subjectOf(user *entity.User) utils.Subject {
	return utils.Subject{UserID: user.ID, Email: user.Email, Role: string(user.Role)}
}
