package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubRedis struct {
	redis.Cmdable
	values  map[string]string
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (s *stubRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if s.getErr != nil {
		return redis.NewStringResult("", s.getErr)
	}
	value, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (s *stubRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	s.values[key] = string(value.([]byte))
	s.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(s.values, key)
		s.deleted = append(s.deleted, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisGetSetDelete(t *testing.T) {
	stub := newStubRedis()
	c := NewRedis(stub, "filmrate:", 5*time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "mpa:1"); ok || err != nil {
		t.Fatalf("expected miss got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "mpa:1", []byte(`{"ID":1,"Name":"G"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if stub.ttls["filmrate:mpa:1"] != 5*time.Minute {
		t.Fatalf("expected prefixed key with ttl got %v", stub.ttls)
	}

	value, ok, err := c.Get(ctx, "mpa:1")
	if err != nil || !ok || string(value) != `{"ID":1,"Name":"G"}` {
		t.Fatalf("unexpected get result %q ok=%v err=%v", value, ok, err)
	}

	if err := c.Delete(ctx, "mpa:1", "mpa:all"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(stub.deleted) != 2 || stub.deleted[1] != "filmrate:mpa:all" {
		t.Fatalf("unexpected deleted keys %v", stub.deleted)
	}
}

func TestRedisGetError(t *testing.T) {
	stub := newStubRedis()
	stub.getErr = errors.New("connection refused")
	c := NewRedis(stub, "", 0)

	if _, _, err := c.Get(context.Background(), "k"); !errors.Is(err, stub.getErr) {
		t.Fatalf("expected wrapped connection error got %v", err)
	}
	if c.ttl != DefaultTTL {
		t.Fatalf("expected default ttl got %v", c.ttl)
	}
}
