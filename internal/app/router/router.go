package router

import (
	authhandler "account_backend/internal/feature/auth/transport/handler"
	"account_backend/internal/platform/http/handler"
	"account_backend/internal/platform/http/middleware"
	jwtmw "account_backend/internal/platform/jwt"

	"github.com/gin-gonic/gin"
)

func NewRouter(users *authhandler.UserHandler, health *handler.HealthHandler, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Recovery())

	// 認証不要
	// 導通確認用（DB疎通も確認）
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)
	// 新規ユーザー登録
	r.POST("/signup", users.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", users.Login)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	me := r.Group("/me")
	me.Use(jwtmw.AuthRequired(jwtSecret))
	{
		me.GET("", users.Me)
		me.PUT("/password", users.ChangePassword)
		me.PUT("/email", users.ChangeEmail)
		me.DELETE("", users.Delete)
	}

	return r
}
