//go:build !integration

package redis

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// memRedis is an in-memory stand-in for the redis client covering the
// commands the application uses. BRPopLPush never blocks; an empty source
// list reports redis.Nil immediately.
type memRedis struct {
	mu    sync.Mutex
	kv    map[string]string
	lists map[string][]string
	zsets map[string]map[string]float64
}

func newMemRedis() *memRedis {
	return &memRedis{
		kv:    map[string]string{},
		lists: map[string][]string{},
		zsets: map[string]map[string]float64{},
	}
}

func (m *memRedis) Ping(ctx context.Context) error { return nil }
func (m *memRedis) Close() error                   { return nil }

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = asString(value)
	return nil
}

func (m *memRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.kv, k)
		delete(m.lists, k)
		delete(m.zsets, k)
	}
	return nil
}

func (m *memRedis) LPush(ctx context.Context, key string, values ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range values {
		m.lists[key] = append([]string{asString(v)}, m.lists[key]...)
	}
	return nil
}

func (m *memRedis) BRPopLPush(ctx context.Context, source, dest string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.lists[source]
	if len(src) == 0 {
		return "", goredis.Nil
	}
	v := src[len(src)-1]
	m.lists[source] = src[:len(src)-1]
	m.lists[dest] = append([]string{v}, m.lists[dest]...)
	return v, nil
}

func (m *memRedis) LRem(ctx context.Context, key string, _ int64, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := asString(value)
	var kept []string
	for _, v := range m.lists[key] {
		if v != want {
			kept = append(kept, v)
		}
	}
	m.lists[key] = kept
	return nil
}

func (m *memRedis) LTrim(ctx context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lists[key]
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(l)) {
		stop = int64(len(l)) - 1
	}
	if start > stop {
		m.lists[key] = nil
		return nil
	}
	m.lists[key] = l[start : stop+1]
	return nil
}

func (m *memRedis) LLen(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.lists[key])), nil
}

func (m *memRedis) ZAdd(ctx context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.zsets[key] == nil {
		m.zsets[key] = map[string]float64{}
	}
	m.zsets[key][member] = score
	return nil
}

func (m *memRedis) ZCard(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.zsets[key])), nil
}

func (m *memRedis) ZRangeByScore(ctx context.Context, key, min, max string, count int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lo, hi := parseScore(min, false), parseScore(max, true)
	type entry struct {
		member string
		score  float64
	}
	var entries []entry
	for member, score := range m.zsets[key] {
		if score >= lo && score <= hi {
			entries = append(entries, entry{member, score})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].score < entries[j].score })
	var out []string
	for _, e := range entries {
		if count > 0 && int64(len(out)) >= count {
			break
		}
		out = append(out, e.member)
	}
	return out, nil
}

func (m *memRedis) ZRem(ctx context.Context, key string, members ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		delete(m.zsets[key], asString(member))
	}
	return nil
}

func (m *memRedis) ZRemRangeByScore(ctx context.Context, key, min, max string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lo, hi := parseScore(min, false), parseScore(max, true)
	for member, score := range m.zsets[key] {
		if score >= lo && score <= hi {
			delete(m.zsets[key], member)
		}
	}
	return nil
}

func (m *memRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kv[key]; ok {
		return false, nil
	}
	m.kv[key] = asString(value)
	return true, nil
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func parseScore(s string, max bool) float64 {
	switch s {
	case "-inf":
		return -1 << 62
	case "+inf":
		return 1 << 62
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if max {
			return 1 << 62
		}
		return -1 << 62
	}
	return f
}
