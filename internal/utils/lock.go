package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 100 * time.Millisecond
)

// FileLock serialises writers of one file across cesta processes, e.g. two
// catalog imports or `cesta edit` saving while `cesta serve` is running. The
// lock lives in a sibling file named after the target.
type FileLock struct {
	lock   *flock.Flock
	target string
}

// NewFileLock returns an unlocked lock for target.
func NewFileLock(target string) *FileLock {
	return &FileLock{lock: flock.New(target + lockFileSuffix), target: target}
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.lock.Path() }

// Acquire takes the lock, polling until ctx is done when another process
// holds it.
func (l *FileLock) Acquire(ctx context.Context) error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", l.target, err)
	}
	if locked {
		return nil
	}

	Log.Warnf("Another cesta process is writing %s, waiting for it to finish...", l.target)
	locked, err = l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("gave up waiting for %s: %w", l.target, err)
	}
	if !locked {
		return fmt.Errorf("gave up waiting for %s", l.target)
	}
	return nil
}

// Release drops the lock. Releasing a lock that is not held is a no-op.
func (l *FileLock) Release() error {
	if err := l.lock.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to unlock %s: %w", l.target, err)
	}
	return nil
}

// WithFileLock runs fn while holding the lock on target.
func WithFileLock(ctx context.Context, target string, fn func() error) error {
	l := NewFileLock(target)
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// CatalogPath resolves the catalog database path, defaulting to
// ~/.config/cesta/catalog.sqlite, and makes sure its directory exists.
func CatalogPath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, ".config", "cesta", "catalog.sqlite")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}
