// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/auth/domain/entity"
	"account_backend/internal/feature/auth/transport/http/dto"
	"account_backend/internal/feature/auth/usecase"
	jwtmw "account_backend/internal/platform/jwt"
)

// UserUsecase はユーザー操作のユースケースを定義します。
// インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	Create(ctx context.Context, in usecase.CreateUserInput) (*entity.User, error)
	Confirm(ctx context.Context, email, password string) (*entity.User, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	ChangePassword(ctx context.Context, id uint, password string, confirmation *string) (*entity.User, error)
	ChangeEmail(ctx context.Context, id uint, email string) (*entity.User, error)
	Delete(ctx context.Context, id uint) error
}

// TokenGenerator はログイン成功時のトークン発行を定義します。
type TokenGenerator interface {
	GenerateToken(userID uint, email string) (string, error)
}

// UserHandler はユーザー登録・ログイン・アカウント操作のHTTPリクエストを処理します。
type UserHandler struct {
	users  UserUsecase
	tokens TokenGenerator
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase, tokens TokenGenerator) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - JSONが不正な場合は400
// - バリデーションエラー（メール重複を含む）は全項目を422で返却
// - 成功時は201とユーザー情報を返却
func (h *UserHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup bind failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), usecase.CreateUserInput{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		slog.Warn("signup failed", "error", err, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}

	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserRes(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// メール未登録とパスワード不一致を区別せず、どちらも401の汎用メッセージを返します。
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login bind failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	user, err := h.users.Confirm(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: usecase.ErrInvalidCredentials.Error()})
			return
		}
		slog.Error("login error", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal server error"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		slog.Error("token generation failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal server error"})
		return
	}

	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{Token: token, User: dto.NewUserRes(user)})
}

// Me は認証済みユーザー自身の情報を返します。
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// ChangePassword はパスワードを再設定し、ダイジェストを更新します。
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	user, err := h.users.ChangePassword(c.Request.Context(), id, req.Password, req.PasswordConfirmation)
	if err != nil {
		slog.Warn("password change failed", "error", err, "user_id", id)
		writeError(c, err)
		return
	}
	slog.Info("password changed", "user_id", id)
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// ChangeEmail はメールアドレスを変更します（一意性は再検証されます）。
func (h *UserHandler) ChangeEmail(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.ChangeEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	user, err := h.users.ChangeEmail(c.Request.Context(), id, req.Email)
	if err != nil {
		slog.Warn("email change failed", "error", err, "user_id", id)
		writeError(c, err)
		return
	}
	slog.Info("email changed", "user_id", id)
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// Delete は認証済みユーザーを削除します。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	slog.Info("user deleted", "user_id", id)
	c.Status(http.StatusNoContent)
}

// currentUserID はミドルウェアが設定したユーザーIDを取り出します。
// 取得できない場合は401を書き込みfalseを返します。
func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return 0, false
	}
	return id, true
}

// writeError はユースケースのエラーをHTTPステータスに変換します。
func writeError(c *gin.Context, err error) {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]dto.FieldErrorRes, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, dto.FieldErrorRes{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorRes{Error: "validation failed", Fields: fields})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorRes{Error: "user not found"})
	default:
		slog.Error("request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal server error"})
	}
}
