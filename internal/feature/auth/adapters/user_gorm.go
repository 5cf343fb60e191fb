// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"account_backend/internal/feature/auth/domain/entity"
	"account_backend/internal/feature/auth/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryインターフェースのGORM実装です。
// PostgreSQL・SQLiteのどちらの接続でも動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// メールアドレスの一意インデックスに違反した場合、usecase.ErrEmailTakenを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスの完全一致でユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateEmail はメールアドレス列のみを更新します。
// 対象が存在しない場合はusecase.ErrUserNotFound、メール重複時はusecase.ErrEmailTakenを返します。
func (r *userGorm) UpdateEmail(ctx context.Context, id uint, email string) error {
	result := r.db.WithContext(ctx).Model(&entity.User{ID: id}).Update("email", email)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return usecase.ErrEmailTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordDigest はパスワードダイジェスト列のみを更新します。
// 対象が存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) UpdatePasswordDigest(ctx context.Context, id uint, digest string) error {
	result := r.db.WithContext(ctx).Model(&entity.User{ID: id}).Update("password_digest", digest)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// ReplacePasswordDigest は現在のダイジェストがcurrentのままの場合に限りnextへ置き換えます。
// 置き換えなかった場合（並行して変更済み・削除済み）はfalseを返します。
func (r *userGorm) ReplacePasswordDigest(ctx context.Context, id uint, current, next string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.User{ID: id}).
		Where("password_digest = ?", current).
		Update("password_digest", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete はIDでユーザーを削除します。
// 対象が存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// isDuplicateKey は一意制約違反のエラーかどうかを判定します。
// TranslateErrorが有効ならgorm.ErrDuplicatedKey、無効ならドライバー固有のエラーで判定します。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// SQLite: "UNIQUE constraint failed: users.email"
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
