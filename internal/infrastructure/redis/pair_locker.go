package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/pkg/logger"
)

var _ inventory.PairLocker = (*PairLocker)(nil)

// PairLockerOptions parámetros del mutex distribuido.
type PairLockerOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultPairLockerOptions valores para recálculos que tardan milisegundos.
func DefaultPairLockerOptions() PairLockerOptions {
	return PairLockerOptions{Expiry: 10 * time.Second, Tries: 20, RetryDelay: 50 * time.Millisecond}
}

// PairLocker serializa trabajo por clave con redsync.
type PairLocker struct {
	rs   *redsync.Redsync
	opts PairLockerOptions
	log  *logger.Logger
}

// NewPairLocker construye el locker sobre el cliente dado.
func NewPairLocker(rdb goredislib.UniversalClient, opts PairLockerOptions, log *logger.Logger) *PairLocker {
	if log == nil {
		log = logger.Nop()
	}
	return &PairLocker{
		rs:   redsync.New(goredis.NewPool(rdb)),
		opts: opts,
		log:  log.Component("pair_locker"),
	}
}

// WithLock ejecuta fn con el lock tomado. Si no se obtiene el lock, fn no se ejecuta.
func (l *PairLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("tomar lock %s: %w", key, err)
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock (expira solo)")
		}
	}()
	return fn(ctx)
}
