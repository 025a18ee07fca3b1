package utils

import (
	"context"
	"sync"
	"time"
)

type guardEntry struct {
	expiresAt time.Time
}

var (
	guardStore   = map[string]guardEntry{}
	guardStoreMu sync.Mutex
)

func guardKey(id string) string {
	return "submit:inflight:" + id
}

// SubmitGuardTry marks a submission for id as in flight. It returns false when
// one is already running, across instances when Redis is enabled.
func SubmitGuardTry(id string, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	// Prefer Redis for cross-instance consistency
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		ok, err := rc.SetNX(ctx, guardKey(id), "1", ttl).Result()
		if err == nil {
			return ok
		}
		Sugar.Debugf("submit guard redis error, using memory: %v", err)
	}

	guardStoreMu.Lock()
	defer guardStoreMu.Unlock()
	now := time.Now()
	if entry, ok := guardStore[id]; ok && now.Before(entry.expiresAt) {
		return false
	}
	guardStore[id] = guardEntry{expiresAt: now.Add(ttl)}
	return true
}

// SubmitGuardRelease clears the in-flight marker for id.
func SubmitGuardRelease(id string) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		_ = rc.Del(ctx, guardKey(id)).Err()
	}
	guardStoreMu.Lock()
	delete(guardStore, id)
	guardStoreMu.Unlock()
}
