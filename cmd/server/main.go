package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"account_backend/internal/app/di"
	"account_backend/internal/app/router"
	"account_backend/internal/platform/db"
	"account_backend/internal/platform/hash"
	jwtmw "account_backend/internal/platform/jwt"
	"account_backend/internal/platform/logging"
)

func main() {
	// .env はローカル開発用。存在しなくても環境変数で動作する
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	logging.Setup(logging.LoadConfig(), os.Stdout)

	// db
	gdb, err := db.OpenDB(db.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// JWT_SECRETチェック（未設定だと認証必須ルートは500を返す）
	jwtCfg := jwtmw.LoadConfig()
	if jwtCfg.Secret == "" {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	// Handler
	userH, err := di.NewUserHandler(gdb, hash.LoadOptions(), jwtCfg)
	if err != nil {
		slog.Error("failed to build user handler", "error", err)
		os.Exit(1)
	}
	healthH, err := di.NewHealthHandler(gdb)
	if err != nil {
		slog.Error("failed to build health handler", "error", err)
		os.Exit(1)
	}

	// ルータ生成
	r := router.NewRouter(userH, healthH, jwtCfg.Secret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
