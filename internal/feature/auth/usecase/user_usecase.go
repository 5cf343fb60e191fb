package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"account_backend/internal/feature/auth/domain/entity"
	"account_backend/internal/platform/validation"
)

// maxPasswordBytes is bcrypt's input limit; longer passwords would be silently truncated.
const maxPasswordBytes = 72

// fallbackDummyDigest is compared against when no real digest exists and the
// configured-cost dummy could not be derived.
const fallbackDummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for user entities.
// Interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create inserts a new user. It returns ErrEmailTaken when the unique
	// email index rejects the row.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns ErrUserNotFound when no user has the exact email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when no user has the ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// UpdateEmail writes only the email column. It returns ErrEmailTaken when
	// the unique index rejects the value and ErrUserNotFound when no row matched.
	UpdateEmail(ctx context.Context, id uint, email string) error

	// UpdatePasswordDigest writes only the digest column.
	UpdatePasswordDigest(ctx context.Context, id uint, digest string) error

	// ReplacePasswordDigest writes next only while the row still holds current,
	// and reports whether it did. A concurrent rotation therefore wins.
	ReplacePasswordDigest(ctx context.Context, id uint, current, next string) (bool, error)

	// Delete removes the user with the ID.
	Delete(ctx context.Context, id uint) error
}

// PasswordHasher derives and verifies password digests.
type PasswordHasher interface {
	Derive(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
	NeedsRehash(digest string) (bool, error)
}

// CreateUserInput carries the attributes accepted by Create.
// PasswordConfirmation is only checked when non-nil.
type CreateUserInput struct {
	Email                string
	Password             string
	PasswordConfirmation *string
}

// emailRules mirrors the users.email column (size:255).
type emailRules struct {
	Email string `json:"email" validate:"required,max=255"`
}

type passwordRules struct {
	Password string `json:"password" validate:"required"`
}

// userUsecase implements account creation, lookup and credential confirmation.
type userUsecase struct {
	users     UserRepository
	hasher    PasswordHasher
	validator *validation.Validator

	dummyOnce sync.Once
	dummy     string
}

// NewUserUsecase creates a new userUsecase.
func NewUserUsecase(users UserRepository, hasher PasswordHasher) *userUsecase {
	return &userUsecase{
		users:     users,
		hasher:    hasher,
		validator: validation.New(),
	}
}

// Create validates the input, derives the password digest and persists the user.
// Every failed constraint is reported in one *ValidationError.
// The returned user never carries the plaintext.
func (u *userUsecase) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	user := &entity.User{
		Email:                in.Email,
		Password:             in.Password,
		PasswordConfirmation: in.PasswordConfirmation,
	}
	defer user.ClearPassword()

	verr := &ValidationError{}
	if err := u.validateEmail(ctx, verr, user.Email, 0); err != nil {
		return nil, err
	}
	u.validatePassword(verr, user)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	digest, err := u.hasher.Derive(ctx, user.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordDigest = digest

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, emailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindByEmail looks up a user by exact email. It has no side effects.
func (u *userUsecase) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return u.users.FindByEmail(ctx, email)
}

// FindByID looks up a user by ID.
func (u *userUsecase) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// Confirm returns the user when password verifies against the digest stored for email.
//
// Negative results are errors matching ErrInvalidCredentials: an unknown email
// additionally matches ErrUserNotFound, a wrong password ErrPasswordMismatch.
// A bcrypt comparison runs on every path so both cost the same time.
func (u *userUsecase) Confirm(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	digest := u.dummyDigest()
	if user.HasDigest() {
		digest = user.PasswordDigest
	}

	ok, verifyErr := u.hasher.Verify(ctx, password, digest)

	if user == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrUserNotFound)
	}
	if !user.HasDigest() {
		return nil, ErrPasswordMismatch
	}
	if verifyErr != nil {
		return nil, verifyErr
	}
	if !ok {
		return nil, ErrPasswordMismatch
	}

	u.rehashIfStale(ctx, user, password)
	return user, nil
}

// ChangePassword validates the new password and rotates the stored digest.
func (u *userUsecase) ChangePassword(ctx context.Context, id uint, password string, confirmation *string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Password = password
	user.PasswordConfirmation = confirmation
	defer user.ClearPassword()

	verr := &ValidationError{}
	u.validatePassword(verr, user)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	digest, err := u.hasher.Derive(ctx, user.Password)
	if err != nil {
		return nil, err
	}
	if err := u.users.UpdatePasswordDigest(ctx, user.ID, digest); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordDigest = digest
	return user, nil
}

// ChangeEmail re-validates presence and uniqueness and stores the new email.
func (u *userUsecase) ChangeEmail(ctx context.Context, id uint, email string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if err := u.validateEmail(ctx, verr, email, user.ID); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if err := u.users.UpdateEmail(ctx, user.ID, email); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, emailTakenError()
		}
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update email: %w", err)
	}
	// 他の列（ダイジェスト等）は並行して更新されている可能性があるため読み直す
	return u.users.FindByID(ctx, user.ID)
}

// Delete removes the user.
func (u *userUsecase) Delete(ctx context.Context, id uint) error {
	return u.users.Delete(ctx, id)
}

// validateEmail records presence and uniqueness failures on verr.
// selfID excludes the user being updated from the uniqueness check.
func (u *userUsecase) validateEmail(ctx context.Context, verr *ValidationError, email string, selfID uint) error {
	for _, fe := range u.validator.Struct(emailRules{Email: strings.TrimSpace(email)}) {
		verr.Add(fe.Field, fe.Message)
	}
	if verr.Has("email") {
		return nil
	}

	existing, err := u.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	case existing.ID != selfID:
		verr.Add("email", "email has already been taken")
	}
	return nil
}

// validatePassword records presence, length and confirmation failures of the
// user's transient password attributes on verr.
func (u *userUsecase) validatePassword(verr *ValidationError, user *entity.User) {
	for _, fe := range u.validator.Struct(passwordRules{Password: user.Password}) {
		verr.Add(fe.Field, fe.Message)
	}
	if len(user.Password) > maxPasswordBytes {
		verr.Add("password", fmt.Sprintf("password is too long (maximum is %d bytes)", maxPasswordBytes))
	}
	if user.PasswordConfirmation != nil && *user.PasswordConfirmation != user.Password {
		verr.Add("password_confirmation", "password_confirmation doesn't match password")
	}
}

// rehashIfStale replaces a digest produced with an outdated cost. Failures are
// logged and never fail the login.
func (u *userUsecase) rehashIfStale(ctx context.Context, user *entity.User, password string) {
	stale, err := u.hasher.NeedsRehash(user.PasswordDigest)
	if err != nil || !stale {
		return
	}

	digest, err := u.hasher.Derive(ctx, password)
	if err != nil {
		slog.Warn("password rehash failed", "error", err, "user_id", user.ID)
		return
	}

	replaced, err := u.users.ReplacePasswordDigest(ctx, user.ID, user.PasswordDigest, digest)
	if err != nil {
		slog.Warn("password rehash not saved", "error", err, "user_id", user.ID)
		return
	}
	if !replaced {
		slog.Info("password rehash skipped: digest changed concurrently", "user_id", user.ID)
		return
	}
	user.PasswordDigest = digest
	slog.Info("password digest rehashed", "user_id", user.ID)
}

// dummyDigest returns a digest at the configured cost used when no real one exists.
func (u *userUsecase) dummyDigest() string {
	u.dummyOnce.Do(func() {
		d, err := u.hasher.Derive(context.Background(), "dummy-password-for-timing")
		if err != nil {
			slog.Warn("dummy digest derivation failed", "error", err)
			d = fallbackDummyDigest
		}
		u.dummy = d
	})
	return u.dummy
}

func emailTakenError() *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: "email", Message: "email has already been taken"}}}
}
