package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Mohamedmnem11/ivita/internal/api"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

// Service answers catalog queries. Each logical query carries an ordered
// list of candidate endpoints because the backend's routing for these
// queries is deployed inconsistently across environments; the first
// candidate that answers wins.
type Service struct {
	client *api.Client
	locale string
	log    *logger.Logger
}

// NewService constructs a catalog service.
func NewService(client *api.Client, locale string, log *logger.Logger) *Service {
	if locale == "" {
		locale = "en"
	}
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{client: client, locale: locale, log: log}
}

// Categories lists the store's categories.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	body, err := s.client.TryEndpoints(ctx, "categories", []api.Endpoint{
		api.GET("/categories"),
	})
	if err != nil {
		return nil, err
	}
	return s.categoriesFrom(body), nil
}

// Brands lists the store's brands.
func (s *Service) Brands(ctx context.Context) ([]Category, error) {
	body, err := s.client.TryEndpoints(ctx, "brands", []api.Endpoint{
		api.GET("/brands/get"),
		api.GET("/brands"),
	})
	if err != nil {
		return nil, err
	}
	return s.categoriesFrom(body), nil
}

// ProductsByCategory lists products under a category slug. The slug "all"
// additionally tries the unfiltered listing.
func (s *Service) ProductsByCategory(ctx context.Context, slug string) ([]Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("catalog: category slug is required")
	}

	escaped := url.PathEscape(slug)
	candidates := []api.Endpoint{
		api.GET("/products/getbycat/" + escaped),
		api.GET("/products/category/" + escaped),
		api.GET("/products?category=" + url.QueryEscape(slug)),
	}
	if slug == "all" {
		candidates = append(candidates, api.GET("/products"))
	}

	body, err := s.client.TryEndpoints(ctx, "products_by_category", candidates)
	if err != nil {
		return nil, err
	}
	return s.productsFrom(body), nil
}

// ProductBySlug fetches a single product's detail record.
func (s *Service) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Product{}, fmt.Errorf("catalog: product slug is required")
	}

	escaped := url.PathEscape(slug)
	body, err := s.client.TryEndpoints(ctx, "product_detail", []api.Endpoint{
		api.GET("/products/slug/" + escaped),
		api.GET("/products/" + escaped),
		api.GET("/product/" + escaped),
	})
	if err != nil {
		return Product{}, err
	}

	raw := gjson.ParseBytes(body)
	if data := raw.Get("data"); data.Exists() && data.IsObject() {
		raw = data
	}
	return Normalize(raw, s.locale), nil
}

// Search finds products matching free text. An empty query returns no
// results without touching the network.
func (s *Service) Search(ctx context.Context, text string) ([]Product, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Product{}, nil
	}

	escaped := url.QueryEscape(text)
	body, err := s.client.TryEndpoints(ctx, "search", []api.Endpoint{
		api.GET("/products/getbyname?name=" + escaped),
		api.GET("/products/search?q=" + escaped),
		api.GET("/products?search=" + escaped),
		api.GET("/products?name=" + escaped),
	})
	if err != nil {
		return nil, err
	}
	return s.productsFrom(body), nil
}

func (s *Service) productsFrom(body []byte) []Product {
	records := unwrapArray(body)
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		products = append(products, Normalize(rec, s.locale))
	}
	return products
}

func (s *Service) categoriesFrom(body []byte) []Category {
	records := unwrapArray(body)
	categories := make([]Category, 0, len(records))
	for _, rec := range records {
		categories = append(categories, NormalizeCategory(rec, s.locale))
	}
	return categories
}

// unwrapArray tolerates both the bare-array and {"data": [...]} envelope
// shapes the backend responds with.
func unwrapArray(body []byte) []gjson.Result {
	raw := gjson.ParseBytes(body)
	if data := raw.Get("data"); data.IsArray() {
		return data.Array()
	}
	if raw.IsArray() {
		return raw.Array()
	}
	return nil
}
