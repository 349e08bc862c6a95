package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// Only one enforcement process may apply filters at a time. EnforcerLock is a
// redis lease with owner-checked renewal and release; a second wardend
// instance blocks until the first dies or releases.
const (
	enforcerLockKey    = "warden:enforcer:leader"
	DefaultEnforcerTTL = 45 * time.Second
	lockRetryDelay     = time.Second
	lockOpTimeout      = 5 * time.Second
)

var renewLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end`)

var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

// EnforcerLock holds the lease while its context is alive.
type EnforcerLock struct {
	client *redis.Client
	owner  string
	ttl    time.Duration
	cancel context.CancelFunc

	// Ctx is cancelled when the lease is lost or released.
	Ctx context.Context
}

// AcquireEnforcerLock blocks until the lease is obtained or ctx ends.
func AcquireEnforcerLock(ctx context.Context, client *redis.Client, ttl time.Duration) (*EnforcerLock, error) {
	if ttl <= 0 {
		ttl = DefaultEnforcerTTL
	}
	hostname, _ := os.Hostname()
	owner := fmt.Sprintf("%s-%d-%d", hostname, os.Getpid(), time.Now().UnixNano())

	for {
		ok, err := client.SetNX(ctx, enforcerLockKey, owner, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("enforcer lock: acquire failed", "error", err)
		} else if ok {
			leaseCtx, cancel := context.WithCancel(ctx)
			lock := &EnforcerLock{client: client, owner: owner, ttl: ttl, cancel: cancel, Ctx: leaseCtx}
			go lock.renewLoop()
			log.Debug("enforcer lock: acquired", "owner", owner)
			return lock, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

func (l *EnforcerLock) renewLoop() {
	interval := l.ttl / 3
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.Ctx.Done():
			return
		case <-ticker.C:
			opCtx, cancel := context.WithTimeout(context.Background(), lockOpTimeout)
			res, err := renewLease.Run(opCtx, l.client, []string{enforcerLockKey}, l.owner, l.ttl.Milliseconds()).Result()
			cancel()

			if err != nil {
				log.Warn("enforcer lock: renewal failed", "error", err)
				l.cancel()
				return
			}
			if renewed, ok := res.(int64); ok && renewed == 0 {
				log.Warn("enforcer lock: lease lost to another instance")
				l.cancel()
				return
			}
		}
	}
}

// Release gives the lease up; safe to call after loss.
func (l *EnforcerLock) Release() {
	l.cancel()

	opCtx, cancel := context.WithTimeout(context.Background(), lockOpTimeout)
	defer cancel()

	if err := releaseLease.Run(opCtx, l.client, []string{enforcerLockKey}, l.owner).Err(); err != nil {
		log.Warn("enforcer lock: release failed", "error", err)
	}
}
