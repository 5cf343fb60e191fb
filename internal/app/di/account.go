// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	"gorm.io/gorm"

	authadapters "account_backend/internal/feature/auth/adapters"
	authhandler "account_backend/internal/feature/auth/transport/handler"
	authusecase "account_backend/internal/feature/auth/usecase"
	"account_backend/internal/platform/hash"
	"account_backend/internal/platform/http/handler"
	jwtmw "account_backend/internal/platform/jwt"
)

// NewUserUsecase wires the gorm user store to a bcrypt hasher built from opts.
func NewUserUsecase(db *gorm.DB, opts hash.Options) (authhandler.UserUsecase, error) {
	hasher, err := hash.NewBcryptHasher(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build password hasher: %w", err)
	}
	return authusecase.NewUserUsecase(authadapters.NewUserGorm(db), hasher), nil
}

// NewUserHandler creates a fully configured UserHandler backed by db.
func NewUserHandler(db *gorm.DB, opts hash.Options, jwtCfg jwtmw.Config) (*authhandler.UserHandler, error) {
	users, err := NewUserUsecase(db, opts)
	if err != nil {
		return nil, err
	}
	return authhandler.NewUserHandler(users, jwtmw.NewGenerator(jwtCfg.Secret, jwtCfg.Expiration)), nil
}

// NewHealthHandler creates a HealthHandler that pings the pool behind db.
func NewHealthHandler(db *gorm.DB) (*handler.HealthHandler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return handler.NewHealthHandler(sqlDB), nil
}
