package kv_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/yeisme/uplink/pkg/internal/storage/kv"
)

// TestMemoryKVBasic 测试内存 KV 的基础读写.
func TestMemoryKVBasic(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	value := []byte("hello")

	if err := store.Set(ctx, "k1", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !bytes.Equal(got, value) {
		t.Errorf("Expected %q, got %q", value, got)
	}

	exists, err := store.Exists(ctx, "k1")
	if err != nil || !exists {
		t.Errorf("Expected key to exist, got exists=%v err=%v", exists, err)
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "k1"); err == nil {
		t.Error("Expected error for deleted key, got nil")
	}
}

// TestMemoryKVTTLExpiry 测试带 TTL 的键过期后不可见.
func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "ephemeral", []byte("soon gone"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := store.Get(ctx, "ephemeral"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := store.Get(ctx, "ephemeral"); err == nil {
		t.Error("Expected error for expired key, got nil")
	}

	exists, err := store.Exists(ctx, "ephemeral")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}

	if exists {
		t.Error("Expected expired key to not exist")
	}
}

// TestMemoryKVZeroTTLNeverExpires 测试 TTL 为 0 的键不会过期.
func TestMemoryKVZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "durable", []byte("stays"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := store.Get(ctx, "durable"); err != nil {
		t.Errorf("Expected key without TTL to survive, got %v", err)
	}
}

// TestMemoryKVKeys 测试键遍历.
func TestMemoryKVKeys(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}

	if len(keys) != 3 {
		t.Errorf("Expected 3 keys, got %d: %v", len(keys), keys)
	}
}

// TestUnsupportedKVType 测试未注册类型报错.
func TestUnsupportedKVType(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), kv.KVType("etcd"), nil); err == nil {
		t.Error("Expected error for unsupported kv type, got nil")
	}
}
