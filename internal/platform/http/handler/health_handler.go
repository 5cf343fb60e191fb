// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pingTimeout はヘルスチェック時のDB疎通確認の上限時間です。
const pingTimeout = 2 * time.Second

// Pinger はDB接続の疎通確認を定義します（*sql.DB が満たします）。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler はHealthHandlerを生成します。db が nil の場合はプロセスの生存のみを返します。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// ユーザーストアに到達できない場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status, body := http.StatusOK, gin.H{"status": "ok", "database": "ok"}
	if h.db == nil {
		body["database"] = "skipped"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			slog.Error("health check: database unreachable", "error", err)
			status, body = http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"}
		}
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}
