package hash

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(Options{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	return h
}

// TestNewBcryptHasher はbcryptの範囲外のコストが拒否されることを検証します。
func TestNewBcryptHasher(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{"default cost", DefaultCost, false},
		{"min cost", bcrypt.MinCost, false},
		{"max cost", bcrypt.MaxCost, false},
		{"below min", bcrypt.MinCost - 1, true},
		{"above max", bcrypt.MaxCost + 1, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewBcryptHasher(Options{Cost: tt.cost})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCost)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cost, h.Cost())
		})
	}
}

// TestLoadOptions は環境変数からコストと同時実行数が読み込まれることを検証します。
func TestLoadOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "")
		t.Setenv("HASH_MAX_CONCURRENT", "")

		opts := LoadOptions()

		assert.Equal(t, DefaultCost, opts.Cost)
		assert.Zero(t, opts.MaxConcurrent)
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "10")
		t.Setenv("HASH_MAX_CONCURRENT", "3")

		opts := LoadOptions()

		assert.Equal(t, 10, opts.Cost)
		assert.Equal(t, 3, opts.MaxConcurrent)
	})

	t.Run("unparsable values fall back", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "high")
		t.Setenv("HASH_MAX_CONCURRENT", "-1")

		opts := LoadOptions()

		assert.Equal(t, DefaultCost, opts.Cost)
		assert.Zero(t, opts.MaxConcurrent)
	})
}

// TestBcryptHasher_DeriveAndVerify は生成したダイジェストが同じパスワードでのみ検証を通ることを検証します。
func TestBcryptHasher_DeriveAndVerify(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	digest, err := h.Derive(ctx, "secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", digest)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	ok, err := h.Verify(ctx, "secret123", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "wrong", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestBcryptHasher_DeriveIsSalted は同じパスワードでも毎回異なるダイジェストになることを検証します。
func TestBcryptHasher_DeriveIsSalted(t *testing.T) {
	h := newTestHasher(t)

	d1, err := h.Derive(context.Background(), "same-password")
	require.NoError(t, err)
	d2, err := h.Derive(context.Background(), "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
}

// TestBcryptHasher_Derive_TooLong は72バイトを超えるパスワードがエラーになることを検証します。
func TestBcryptHasher_Derive_TooLong(t *testing.T) {
	h := newTestHasher(t)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	_, err := h.Derive(context.Background(), string(long))
	assert.Error(t, err)
}

// TestBcryptHasher_Verify_MalformedDigest は不正な形式のダイジェストがエラーになることを検証します。
func TestBcryptHasher_Verify_MalformedDigest(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify(context.Background(), "secret123", "not-a-digest")

	assert.Error(t, err)
	assert.False(t, ok)
}

// TestBcryptHasher_Verify_EmptyDigest は空のダイジェストが一致しないことを検証します。
func TestBcryptHasher_Verify_EmptyDigest(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify(context.Background(), "secret123", "")

	assert.Error(t, err)
	assert.False(t, ok)
}

// TestBcryptHasher_NeedsRehash は設定コストと異なるダイジェストが再ハッシュ対象になることを検証します。
func TestBcryptHasher_NeedsRehash(t *testing.T) {
	low := newTestHasher(t)
	high, err := NewBcryptHasher(Options{Cost: bcrypt.MinCost + 1})
	require.NoError(t, err)

	digest, err := low.Derive(context.Background(), "secret123")
	require.NoError(t, err)

	stale, err := low.NeedsRehash(digest)
	require.NoError(t, err)
	assert.False(t, stale)

	stale, err = high.NeedsRehash(digest)
	require.NoError(t, err)
	assert.True(t, stale)

	_, err = high.NeedsRehash("garbage")
	assert.Error(t, err)
}

// TestBcryptHasher_ContextCancelledWhileWaiting は同時実行枠の待機中にコンテキストが取り消されるとエラーになることを検証します。
func TestBcryptHasher_ContextCancelledWhileWaiting(t *testing.T) {
	h, err := NewBcryptHasher(Options{Cost: bcrypt.MinCost, MaxConcurrent: 1})
	require.NoError(t, err)

	// Hold the only slot so the next caller has to wait.
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = h.Derive(ctx, "secret123")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ok, err := h.Verify(ctx, "secret123", "$2a$04$abcdefghijklmnopqrstuu")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ok)
}
