package cart

import (
	"encoding/json"

	"github.com/Mohamedmnem11/ivita/internal/storage"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

// Store persists the cart blob. Both operations are deliberately infallible
// from the caller's point of view: Load recovers a corrupt or missing blob
// by returning the canonical empty cart, Save logs and swallows storage
// errors.
type Store interface {
	Load() Cart
	Save(cart Cart)
	Reset()
}

// BlobStore keeps the cart as one JSON blob in the session's key-value
// store, under the same key the storefront has always used.
type BlobStore struct {
	blob storage.Store
	log  *logger.Logger
}

// NewBlobStore wraps a key-value store as a cart store.
func NewBlobStore(blob storage.Store, log *logger.Logger) *BlobStore {
	if log == nil {
		log = logger.NewDefault("cart-store")
	}
	return &BlobStore{blob: blob, log: log}
}

func (s *BlobStore) Load() Cart {
	data, ok := s.blob.Get(storage.KeyCart)
	if !ok {
		return Empty()
	}

	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.log.WithError(err).Warn("cart blob unparsable; resetting to empty")
		return Empty()
	}
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	return cart
}

func (s *BlobStore) Save(cart Cart) {
	data, err := json.Marshal(cart)
	if err != nil {
		s.log.WithError(err).Error("failed to serialize cart")
		return
	}
	if err := s.blob.Set(storage.KeyCart, data); err != nil {
		s.log.WithError(err).Error("failed to persist cart")
	}
}

func (s *BlobStore) Reset() {
	s.Save(Empty())
}
