package cart

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Mohamedmnem11/ivita/internal/api"
	"github.com/Mohamedmnem11/ivita/internal/metrics"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

const mirrorTimeout = 10 * time.Second

// AddInput describes the product being added. Name and Price may be empty
// when the caller only knows the id; defaults are applied.
type AddInput struct {
	ProductID string
	Quantity  int
	Name      string
	Image     string
	Price     float64
}

// Service applies cart mutations locally and mirrors them to the remote
// API. The contract is local-first, remote-best-effort: every operation
// persists and returns the updated local cart, and the mirror call's
// outcome is logged but never surfaced. Mutations never fail visibly.
type Service struct {
	mu     sync.Mutex
	store  Store
	client *api.Client
	log    *logger.Logger
	wg     sync.WaitGroup
}

// NewService constructs a cart service. client may be nil for a fully
// offline cart.
func NewService(store Store, client *api.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("cart")
	}
	return &Service{store: store, client: client, log: log}
}

// Get returns the cart for rendering. When authenticated it consults the
// server copy first, falling back to local state. The server copy is never
// written back; local remains the source of truth for mutations.
func (s *Service) Get(ctx context.Context) Cart {
	if s.client != nil && s.client.Authenticated() {
		if remote, err := s.fetchRemote(ctx); err == nil {
			return remote
		} else {
			s.log.WithError(err).Debug("server cart unavailable; using local")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load().Clone()
}

// Local returns the locally persisted cart without touching the network.
func (s *Service) Local() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load().Clone()
}

// AddItem merges the product into the cart, incrementing quantity when the
// product is already present.
func (s *Service) AddItem(ctx context.Context, in AddInput) Cart {
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	if in.Name == "" {
		in.Name = "Unknown Product"
	}
	if in.Price < 0 {
		in.Price = 0
	}

	cart := s.mutate(func(c *Cart) {
		if i := c.indexOf(in.ProductID); i >= 0 {
			c.Items[i].Quantity += in.Quantity
			return
		}
		c.Items = append(c.Items, Item{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Name:      in.Name,
			Image:     in.Image,
			Price:     in.Price,
		})
	})

	s.mirror(ctx, http.MethodPost, "/cart/add", map[string]interface{}{
		"product_id": in.ProductID,
		"quantity":   in.Quantity,
		"name":       in.Name,
		"image":      in.Image,
		"price":      in.Price,
	})
	return cart
}

// UpdateQuantity sets the quantity for a product. A quantity of zero or
// less removes the line. An absent product is a no-op, not an error.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, quantity int) Cart {
	cart := s.mutate(func(c *Cart) {
		i := c.indexOf(productID)
		if i < 0 {
			return
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
		c.Items[i].Quantity = quantity
	})

	s.mirror(ctx, http.MethodPost, "/cart/update", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
	return cart
}

// RemoveItem drops the product's line. Absent products are a no-op.
func (s *Service) RemoveItem(ctx context.Context, productID string) Cart {
	cart := s.mutate(func(c *Cart) {
		if i := c.indexOf(productID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	})

	s.mirror(ctx, http.MethodPost, "/cart/remove_item", map[string]interface{}{
		"product_id": productID,
	})
	return cart
}

// Clear resets the cart to its canonical empty state.
func (s *Service) Clear(ctx context.Context) Cart {
	s.mu.Lock()
	empty := Empty()
	s.store.Save(empty)
	s.mu.Unlock()

	s.mirror(ctx, http.MethodDelete, "/cart/delete", nil)
	return empty.Clone()
}

// Flush waits for in-flight mirror calls. Call on shutdown and in tests.
func (s *Service) Flush() {
	s.wg.Wait()
}

// mutate runs the load → apply → recompute → persist cycle under the lock.
func (s *Service) mutate(apply func(*Cart)) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.store.Load()
	apply(&cart)
	cart.recompute()
	s.store.Save(cart)
	return cart.Clone()
}

// mirror issues the remote write as a fire-and-forget task. Only runs when
// a session credential is present; the response is discarded and failures
// are logged, never returned. Successive mirrors carry no ordering
// guarantee.
func (s *Service) mirror(ctx context.Context, method, path string, payload interface{}) {
	if s.client == nil || !s.client.Authenticated() {
		return
	}

	mirrorCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		resp, err := s.client.Do(mirrorCtx, method, path, payload)
		if err == nil {
			err = s.client.DecodeResponse(resp, nil)
		}
		if err != nil {
			metrics.RecordMirrorFailure()
			s.log.WithError(err).WithField("path", path).Warn("cart mirror failed")
		}
	}()
}

func (s *Service) fetchRemote(ctx context.Context) (Cart, error) {
	resp, err := s.client.Get(ctx, "/user/cart")
	if err != nil {
		return Cart{}, err
	}

	var remote Cart
	if err := s.client.DecodeResponse(resp, &remote); err != nil {
		return Cart{}, err
	}
	if remote.Items == nil {
		remote.Items = []Item{}
	}
	// Backends disagree on which derived fields they populate.
	if remote.Count == 0 || remote.Total == 0 {
		remote.recompute()
	}
	return remote, nil
}
