package cart

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mohamedmnem11/ivita/internal/api"
	"github.com/Mohamedmnem11/ivita/internal/mockapi"
	"github.com/Mohamedmnem11/ivita/internal/storage"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

func quietLogger() *logger.Logger {
	log := logger.NewDefault("test")
	log.SetOutput(io.Discard)
	return log
}

func newOfflineService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewBlobStore(storage.NewMemory(), quietLogger()), nil, quietLogger())
}

func checkInvariants(t *testing.T, c Cart) {
	t.Helper()
	if c.Count != len(c.Items) {
		t.Fatalf("count %d != len(items) %d", c.Count, len(c.Items))
	}
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	total = math.Round(total*100) / 100
	if c.Total != total {
		t.Fatalf("total %v != expected %v", c.Total, total)
	}
}

func TestService_AddItemMergesByProduct(t *testing.T) {
	svc := newOfflineService(t)
	ctx := context.Background()

	svc.AddItem(ctx, AddInput{ProductID: "p1", Quantity: 2, Name: "Widget", Price: 10})
	c := svc.AddItem(ctx, AddInput{ProductID: "p1", Quantity: 3, Name: "Widget", Price: 10})

	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", c.Items[0].Quantity)
	}
	if c.Total != 50 {
		t.Fatalf("expected total 50, got %v", c.Total)
	}
	checkInvariants(t, c)
}

func TestService_AddItemDefaults(t *testing.T) {
	svc := newOfflineService(t)

	c := svc.AddItem(context.Background(), AddInput{ProductID: "p1", Quantity: 0, Price: -3})
	if c.Items[0].Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", c.Items[0].Quantity)
	}
	if c.Items[0].Name != "Unknown Product" {
		t.Fatalf("expected placeholder name, got %q", c.Items[0].Name)
	}
	if c.Items[0].Price != 0 {
		t.Fatalf("expected price clamped to 0, got %v", c.Items[0].Price)
	}
	checkInvariants(t, c)
}

func TestService_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  int
		wantItems int
		wantQty   int
	}{
		{"set", "p1", 7, 1, 7},
		{"zero removes", "p1", 0, 0, 0},
		{"negative removes", "p1", -1, 0, 0},
		{"missing is noop", "nope", 5, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newOfflineService(t)
			ctx := context.Background()
			svc.AddItem(ctx, AddInput{ProductID: "p1", Quantity: 2, Name: "Widget", Price: 4})

			c := svc.UpdateQuantity(ctx, tt.productID, tt.quantity)
			if len(c.Items) != tt.wantItems {
				t.Fatalf("expected %d items, got %d", tt.wantItems, len(c.Items))
			}
			if tt.wantItems == 1 && c.Items[0].Quantity != tt.wantQty {
				t.Fatalf("expected quantity %d, got %d", tt.wantQty, c.Items[0].Quantity)
			}
			checkInvariants(t, c)
		})
	}
}

func TestService_RemoveItem(t *testing.T) {
	svc := newOfflineService(t)
	ctx := context.Background()

	svc.AddItem(ctx, AddInput{ProductID: "p1", Quantity: 1, Name: "A", Price: 3})
	svc.AddItem(ctx, AddInput{ProductID: "p2", Quantity: 2, Name: "B", Price: 5})

	c := svc.RemoveItem(ctx, "p1")
	if len(c.Items) != 1 || c.Items[0].ProductID != "p2" {
		t.Fatalf("unexpected items after remove: %#v", c.Items)
	}
	checkInvariants(t, c)

	// absent product is a no-op
	before := c
	c = svc.RemoveItem(ctx, "ghost")
	if len(c.Items) != len(before.Items) || c.Total != before.Total {
		t.Fatalf("remove of absent product changed cart: %#v", c)
	}
}

func TestService_Clear(t *testing.T) {
	svc := newOfflineService(t)
	ctx := context.Background()

	svc.AddItem(ctx, AddInput{ProductID: "p1", Quantity: 4, Name: "A", Price: 2.5})
	c := svc.Clear(ctx)

	if len(c.Items) != 0 || c.Total != 0 || c.Count != 0 {
		t.Fatalf("expected canonical empty cart, got %#v", c)
	}
}

func TestService_InvariantsAcrossSequence(t *testing.T) {
	svc := newOfflineService(t)
	ctx := context.Background()

	steps := []func() Cart{
		func() Cart { return svc.AddItem(ctx, AddInput{ProductID: "a", Quantity: 1, Price: 1.99}) },
		func() Cart { return svc.AddItem(ctx, AddInput{ProductID: "b", Quantity: 3, Price: 0.4}) },
		func() Cart { return svc.AddItem(ctx, AddInput{ProductID: "a", Quantity: 2, Price: 1.99}) },
		func() Cart { return svc.UpdateQuantity(ctx, "b", 10) },
		func() Cart { return svc.RemoveItem(ctx, "a") },
		func() Cart { return svc.UpdateQuantity(ctx, "b", 0) },
	}
	for i, step := range steps {
		c := step()
		checkInvariants(t, c)
		if i == 2 && c.Items[0].Quantity != 3 {
			t.Fatalf("expected merged quantity 3, got %d", c.Items[0].Quantity)
		}
	}

	if final := svc.Local(); len(final.Items) != 0 {
		t.Fatalf("expected empty cart at end, got %#v", final)
	}
}

type staticCreds struct{ token string }

func (c *staticCreds) AccessToken() string   { return c.token }
func (c *staticCreds) RefreshToken() string  { return "" }
func (c *staticCreds) SetAccessToken(string) {}
func (c *staticCreds) Clear()                { c.token = "" }

func TestService_MirrorsMutationsWhenAuthenticated(t *testing.T) {
	backend := mockapi.New()
	server := httptest.NewServer(backend.Handler())
	defer server.Close()

	client, err := api.New(api.Config{
		BaseURL:     server.URL,
		HTTPClient:  server.Client(),
		Credentials: &staticCreds{token: mockapi.AccessToken},
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	svc := NewService(NewBlobStore(storage.NewMemory(), quietLogger()), client, quietLogger())
	ctx := context.Background()

	svc.AddItem(ctx, AddInput{ProductID: "100", Quantity: 1, Name: "Vitamin C", Price: 8})
	svc.UpdateQuantity(ctx, "100", 3)
	svc.RemoveItem(ctx, "100")
	svc.Clear(ctx)
	svc.Flush()

	ops := backend.CartOps()
	if len(ops) != 4 {
		t.Fatalf("expected 4 mirrored ops, got %d: %v", len(ops), ops)
	}
	seen := map[string]bool{}
	for _, op := range ops {
		seen[op] = true
	}
	for _, want := range []string{"add", "update", "remove", "clear"} {
		if !seen[want] {
			t.Fatalf("mirror op %q not observed in %v", want, ops)
		}
	}
}

func TestService_MirrorFailureDoesNotSurface(t *testing.T) {
	// Point the client at a server that rejects everything.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := api.New(api.Config{
		BaseURL:     server.URL,
		HTTPClient:  server.Client(),
		Credentials: &staticCreds{token: "whatever"},
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	svc := NewService(NewBlobStore(storage.NewMemory(), quietLogger()), client, quietLogger())
	c := svc.AddItem(context.Background(), AddInput{ProductID: "p1", Quantity: 2, Name: "A", Price: 5})
	svc.Flush()

	if len(c.Items) != 1 || c.Total != 10 {
		t.Fatalf("local mutation affected by mirror failure: %#v", c)
	}
	if local := svc.Local(); local.Total != 10 {
		t.Fatalf("persisted cart affected by mirror failure: %#v", local)
	}
}

func TestService_GetFallsBackToLocalWhenServerUnavailable(t *testing.T) {
	server := httptest.NewServer(mockapi.New().Handler())
	serverURL := server.URL
	server.Close() // every request now fails

	client, err := api.New(api.Config{
		BaseURL:     serverURL,
		Credentials: &staticCreds{token: "tok"},
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	svc := NewService(NewBlobStore(storage.NewMemory(), quietLogger()), client, quietLogger())
	svc.AddItem(context.Background(), AddInput{ProductID: "p1", Quantity: 1, Name: "A", Price: 2})
	svc.Flush()

	c := svc.Get(context.Background())
	if len(c.Items) != 1 || c.Items[0].ProductID != "p1" {
		t.Fatalf("expected local fallback cart, got %#v", c)
	}
}
