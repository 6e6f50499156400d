package rediscache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lanesight/lanesight/internal/warehouse"
)

type mockKV struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newMockKV() *mockKV {
	return &mockKV{data: map[string][]byte{}}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

type mockRunner struct {
	rows   []warehouse.Row
	err    error
	calls  int
	lastQ  string
	lastPs []warehouse.Param
}

func (m *mockRunner) RunQuery(_ context.Context, sql string, params []warehouse.Param) ([]warehouse.Row, error) {
	m.calls++
	m.lastQ = sql
	m.lastPs = params
	return m.rows, m.err
}

func TestCachedRunner_MissThenHit(t *testing.T) {
	inner := &mockRunner{rows: []warehouse.Row{{"company_id": "c-1", "total_count": int64(1)}}}
	kv := newMockKV()
	c := New(inner, kv, time.Minute, nil)

	ctx := context.Background()
	params := []warehouse.Param{{Name: "limit", Value: 25}}

	rows, err := c.RunQuery(ctx, "SELECT 1", params)
	if err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if kv.lastTTL != time.Minute {
		t.Errorf("ttl = %v, want 1m", kv.lastTTL)
	}

	rows, err = c.RunQuery(ctx, "SELECT 1", params)
	if err != nil {
		t.Fatalf("RunQuery (hit): %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d after hit, want still 1", inner.calls)
	}
	if len(rows) != 1 || rows[0]["company_id"] != "c-1" {
		t.Errorf("cached rows = %v", rows)
	}
}

func TestCachedRunner_DistinctParamsDistinctKeys(t *testing.T) {
	inner := &mockRunner{rows: []warehouse.Row{}}
	c := New(inner, newMockKV(), time.Minute, nil)

	ctx := context.Background()
	_, _ = c.RunQuery(ctx, "SELECT 1", []warehouse.Param{{Name: "limit", Value: 25}})
	_, _ = c.RunQuery(ctx, "SELECT 1", []warehouse.Param{{Name: "limit", Value: 50}})

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (different params must not share a key)", inner.calls)
	}
}

func TestCachedRunner_CacheErrorDegradesToPassthrough(t *testing.T) {
	inner := &mockRunner{rows: []warehouse.Row{{"x": int64(1)}}}
	kv := newMockKV()
	kv.getErr = errors.New("redis down")
	kv.setErr = errors.New("redis down")
	c := New(inner, kv, time.Minute, nil)

	rows, err := c.RunQuery(context.Background(), "SELECT 1", nil)
	if err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %v", rows)
	}
}

func TestCachedRunner_WarehouseErrorNotCached(t *testing.T) {
	inner := &mockRunner{err: errors.New("quota exceeded")}
	kv := newMockKV()
	c := New(inner, kv, time.Minute, nil)

	if _, err := c.RunQuery(context.Background(), "SELECT 1", nil); err == nil {
		t.Fatal("expected warehouse error to propagate")
	}
	if len(kv.data) != 0 {
		t.Error("failed query must not populate the cache")
	}
}

func TestCachedRunner_CorruptEntryFallsThrough(t *testing.T) {
	inner := &mockRunner{rows: []warehouse.Row{{"x": int64(1)}}}
	kv := newMockKV()
	c := New(inner, kv, time.Minute, nil)

	key := cacheKey("SELECT 1", nil)
	kv.data[key] = []byte("not msgpack")

	rows, err := c.RunQuery(context.Background(), "SELECT 1", nil)
	if err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if inner.calls != 1 || len(rows) != 1 {
		t.Errorf("corrupt entry must fall through to inner: calls=%d rows=%v", inner.calls, rows)
	}
}

func TestCacheKey_RoundTripEncoding(t *testing.T) {
	rows := []warehouse.Row{{"company_id": "c-1", "shipments_12m": int64(4)}}
	data, err := msgpack.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back []warehouse.Row
	if err := msgpack.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[0]["company_id"] != "c-1" {
		t.Errorf("round-trip lost fields: %v", back)
	}
}
