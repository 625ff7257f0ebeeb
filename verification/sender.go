package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "verification:code:"

// Sender 負責把驗證碼送到手機
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// RedisSender 不串接簡訊商，只把最後一次發出的驗證碼寫入Redis並設定過期時間
type RedisSender struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSender(rdb *redis.Client, ttl time.Duration) *RedisSender {
	return &RedisSender{rdb: rdb, ttl: ttl}
}

func Key(phone string) string {
	return keyPrefix + phone
}

func (s *RedisSender) Send(ctx context.Context, phone, code string) error {
	if err := s.rdb.Set(ctx, Key(phone), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store code for %s: %w", phone, err)
	}
	return nil
}

// MemorySender 給測試使用
type MemorySender struct {
	mu    sync.Mutex
	codes map[string]string
	Err   error
}

func NewMemorySender() *MemorySender {
	return &MemorySender{codes: make(map[string]string)}
}

func (s *MemorySender) Send(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.codes[phone] = code
	return nil
}

func (s *MemorySender) LastCode(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone], nil
}
