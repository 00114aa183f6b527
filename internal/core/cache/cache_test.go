package cache

import (
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/dcrodman/hodpool/internal/pool"
)

func testBundle() *pool.Bundle {
	var segments [pool.NumKinds]pool.Segment
	for i, k := range pool.Kinds {
		data := []byte{byte(i), byte(i), byte(i), byte(i)}
		segments[i] = pool.Segment{Kind: k, Declared: uint32(len(data)), Data: data}
	}
	b := pool.NewBundle(7, segments)
	b.Name = "Pool"
	return b
}

func TestCache_PutGet(t *testing.T) {
	c := New(time.Minute, time.Minute)
	key := Key([]byte("chunk bytes"))

	if _, ok := c.Get(key); ok {
		t.Fatal("Get() found a key that was never stored")
	}

	original := testBundle()
	if _, err := original.Mesh().ReadUint16(); err != nil {
		t.Fatalf("ReadUint16() returned an unexpected error: %v", err)
	}
	c.Put(key, original)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() did not find the stored key")
	}
	if diff := deep.Equal(original.Segments(), got.Segments()); diff != nil {
		t.Error(diff)
	}
	if got.Type != 7 || got.Name != "Pool" {
		t.Errorf("cached bundle type/name = %d/%q", got.Type, got.Name)
	}
	if got.Mesh().Pos() != 0 {
		t.Errorf("cached bundle shares cursor state: mesh at %d", got.Mesh().Pos())
	}

	again, _ := c.Get(key)
	if again.Mesh() == got.Mesh() {
		t.Error("each Get() should hand out its own cursors")
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	c.Delete(key)
	if _, ok := c.Get(key); ok {
		t.Error("Get() found a deleted key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Millisecond, time.Hour)
	c.Put("k", testBundle())
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Get() returned an expired entry")
	}
}

func TestKey(t *testing.T) {
	a := Key([]byte("texture"))
	if len(a) != 16 {
		t.Errorf("Key() = %q, want 16 hex digits", a)
	}
	if a != Key([]byte("texture")) {
		t.Error("Key() is not deterministic")
	}
	if a == Key([]byte("mesh")) {
		t.Error("Key() collided for different input")
	}
}
