// Package hash derives and verifies password digests with bcrypt.
package hash

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultCost is the bcrypt work factor used when none is configured (2^12 rounds).
const DefaultCost = 12

// ErrInvalidCost is returned when the configured cost is outside bcrypt's range.
var ErrInvalidCost = errors.New("invalid bcrypt cost")

// Options configures a BcryptHasher.
type Options struct {
	// Cost is the bcrypt work factor. Valid range: bcrypt.MinCost..bcrypt.MaxCost.
	Cost int
	// MaxConcurrent caps simultaneous bcrypt computations. Zero means GOMAXPROCS.
	MaxConcurrent int
}

// LoadOptions reads BCRYPT_COST and HASH_MAX_CONCURRENT, falling back to defaults
// when a variable is unset or unparsable.
func LoadOptions() Options {
	opts := Options{Cost: DefaultCost}
	if v, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil {
		opts.Cost = v
	}
	if v, err := strconv.Atoi(os.Getenv("HASH_MAX_CONCURRENT")); err == nil && v > 0 {
		opts.MaxConcurrent = v
	}
	return opts
}

// BcryptHasher is immutable after construction and safe for concurrent use.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher validates opts and builds a hasher.
func NewBcryptHasher(opts Options) (*BcryptHasher, error) {
	if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d must be in [%d, %d]",
			ErrInvalidCost, opts.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &BcryptHasher{
		cost: opts.Cost,
		sem:  semaphore.NewWeighted(int64(limit)),
	}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

// Derive returns a salted digest of plaintext at the configured cost.
func (h *BcryptHasher) Derive(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire hashing slot: %w", err)
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify compares plaintext against digest.
// A mismatch is reported as (false, nil); only malformed digests and
// cancelled contexts produce an error.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("failed to acquire hashing slot: %w", err)
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
}

// NeedsRehash reports whether digest was produced with a different cost.
func (h *BcryptHasher) NeedsRehash(digest string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return false, fmt.Errorf("failed to read bcrypt cost: %w", err)
	}
	return cost != h.cost, nil
}
