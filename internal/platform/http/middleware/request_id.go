// Package middleware はアプリ共通のGinミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID はリクエストIDを受け渡すヘッダー名です。
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID はgin.Context上のリクエストIDのキーです。
	ContextRequestID = "requestID"

	maxRequestIDLen = 128
)

// RequestID はリクエストごとにIDを割り当て、完了時にslogでアクセスログを出力します。
// クライアントが X-Request-ID を送った場合はそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)

		start := time.Now()
		c.Next()

		slog.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"remote_addr", c.ClientIP(),
		)
	}
}
