package memory

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"go.uber.org/zap"
)

// KeyedLock provides one mutex per resource key. Keys are created on first
// use and dropped once no goroutine holds or waits for them.
type KeyedLock struct {
	mu     sync.Mutex
	locks  map[string]*keyLock
	logger *zap.Logger
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewKeyedLock creates a new keyed lock
func NewKeyedLock(logger *zap.Logger) *KeyedLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyedLock{
		locks:  make(map[string]*keyLock),
		logger: logger,
	}
}

// Acquire blocks until the lock for key is held or ctx is done
func (l *KeyedLock) Acquire(ctx context.Context, key string) (func(), error) {
	kl := l.ref(key)

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.unref(key, kl)
		})
	}, nil
}

// TryAcquire is Acquire bounded by a timeout
func (l *KeyedLock) TryAcquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	release, err := l.Acquire(ctx, key)
	if err != nil {
		l.logger.Warn("Timed out waiting for lock",
			zap.String("resource", key),
			zap.Duration("timeout", timeout),
		)
		return nil, pkgerrors.NewConflictError("resource " + key + " is busy").WithCause(err)
	}
	return release, nil
}

// Held reports how many keys currently have holders or waiters
func (l *KeyedLock) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *KeyedLock) ref(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *KeyedLock) unref(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
