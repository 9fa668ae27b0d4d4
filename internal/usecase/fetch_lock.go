package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// FetchLocker is the single-flight guard around the upstream fetch. Two
// concurrent identical searches racing past it is harmless (the idempotent
// insert absorbs the duplicates); the lock only avoids burning upstream quota
// twice. Implemented by the Redis cache adapter; nil disables locking.
type FetchLocker interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type fetchLockKeyInput struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	MaxPages int    `json:"max_pages"`
}

func normalizeLockValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// FetchLockKey derives the lock key from the parts of the descriptor that
// shape the upstream request. Filter and sort parameters do not participate.
func FetchLockKey(q SearchQuery) string {
	in := fetchLockKeyInput{
		Query:    normalizeLockValue(q.Query),
		Location: normalizeLockValue(q.Location),
		MaxPages: q.MaxPages,
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "jobs:fetch:lock:" + hex.EncodeToString(sum[:])
}
