package cart

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Mohamedmnem11/ivita/internal/storage"
)

func TestBlobStore_LoadMissingReturnsEmpty(t *testing.T) {
	store := NewBlobStore(storage.NewMemory(), quietLogger())

	c := store.Load()
	if len(c.Items) != 0 || c.Total != 0 || c.Count != 0 {
		t.Fatalf("expected canonical empty cart, got %#v", c)
	}
	if c.Items == nil {
		t.Fatal("items must be an empty slice, not nil")
	}
}

func TestBlobStore_LoadCorruptReturnsEmpty(t *testing.T) {
	blob := storage.NewMemory()
	if err := blob.Set(storage.KeyCart, []byte("{not json")); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	store := NewBlobStore(blob, quietLogger())
	c := store.Load()
	if len(c.Items) != 0 || c.Total != 0 || c.Count != 0 {
		t.Fatalf("expected recovery to empty cart, got %#v", c)
	}
}

func TestBlobStore_RoundTripIsIdempotent(t *testing.T) {
	blob := storage.NewMemory()
	store := NewBlobStore(blob, quietLogger())

	store.Save(Cart{
		Items: []Item{{ProductID: "p1", Quantity: 2, Name: "Widget", Price: 9.99}},
		Total: 19.98,
		Count: 1,
	})
	first, _ := blob.Get(storage.KeyCart)

	store.Save(store.Load())
	second, _ := blob.Get(storage.KeyCart)

	if !bytes.Equal(first, second) {
		t.Fatalf("save(load()) changed the persisted blob:\n%s\n%s", first, second)
	}
}

func TestBlobStore_Reset(t *testing.T) {
	blob := storage.NewMemory()
	store := NewBlobStore(blob, quietLogger())

	store.Save(Cart{Items: []Item{{ProductID: "p1", Quantity: 1, Price: 1}}, Total: 1, Count: 1})
	store.Reset()

	data, ok := blob.Get(storage.KeyCart)
	if !ok {
		t.Fatal("expected a persisted blob after reset")
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("unmarshal reset blob: %v", err)
	}
	if len(c.Items) != 0 || c.Total != 0 || c.Count != 0 {
		t.Fatalf("expected empty cart after reset, got %#v", c)
	}
}
