package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"donation-relay/relay/domain"

	"github.com/redis/go-redis/v9"
)

// RedisAuditStore grava a trilha de auditoria em hashes do redis.
//
// O total é cumulativo e não expira; séries por minuto e por game recebem
// TTL para a base não crescer sem limite. Toda gravação é best-effort: o
// chamador ignora o erro e a requisição segue.
type RedisAuditStore struct {
	rdb *redis.Client

	prefix string
	ttl    time.Duration
	bucket string // "minute" (padrão) ou "none"
}

type RedisAuditOption func(*RedisAuditStore)

func WithAuditPrefix(prefix string) RedisAuditOption {
	return func(s *RedisAuditStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithAuditTTL(d time.Duration) RedisAuditOption {
	return func(s *RedisAuditStore) { s.ttl = d }
}

func WithAuditBucket(bucket string) RedisAuditOption {
	return func(s *RedisAuditStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func NewRedisAuditStore(rdb *redis.Client, opts ...RedisAuditOption) *RedisAuditStore {
	s := &RedisAuditStore{
		rdb:    rdb,
		prefix: "relay:audit",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisAuditStore) Record(ctx context.Context, ev domain.AuditEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := string(ev.Kind)
	if ev.Kind == domain.AuditRejected && ev.Reason != "" {
		field = field + ":" + ev.Reason
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if ev.Kind == domain.AuditServed && ev.Game != "" {
		gameKey := s.prefix + ":game:" + ev.Game
		pipe.HIncrBy(ctx, gameKey, "served", 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, gameKey, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
