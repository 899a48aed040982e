// Package mockapi is a stand-in storefront backend for tests and local
// demos. It deliberately mounts only some of the path shapes the client is
// prepared to try, and serves products in the mixed record shapes the
// normalizer must tolerate.
package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

const (
	// Fixed tokens the mock issues. Tests assert against these.
	AccessToken  = "mock-access-token"
	RefreshToken = "mock-refresh-token"
	// RotatedAccessToken is issued by /auth/refresh.
	RotatedAccessToken = "mock-access-token-2"
)

// Server is an in-memory storefront backend.
type Server struct {
	router *mux.Router

	mu       sync.Mutex
	expired  bool // when set, the current access token 401s until refreshed
	cartOps  []string
	verified map[string]bool
}

// New builds a mock backend with seeded catalog data.
func New() *Server {
	s := &Server{
		router:   mux.NewRouter(),
		verified: map[string]bool{},
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler to mount in httptest.
func (s *Server) Handler() http.Handler { return s.router }

// ExpireAccessToken makes the current access token invalid until the client
// refreshes it.
func (s *Server) ExpireAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = true
}

// CartOps returns the mirrored cart operations observed so far.
func (s *Server) CartOps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cartOps...)
}

func (s *Server) routes() {
	r := s.router

	// Catalog. Note the routing is intentionally partial: /brands/get and
	// /products/getbycat are NOT mounted, so clients must fall through to
	// the shapes below.
	r.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	r.HandleFunc("/brands", s.handleBrands).Methods(http.MethodGet)
	r.HandleFunc("/products/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/products/category/{slug}", s.handleProductsByCategory).Methods(http.MethodGet)
	r.HandleFunc("/products/{slug}", s.handleProductBySlug).Methods(http.MethodGet)

	// Auth.
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify", s.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/auth/login_whatsapp", s.handleLoginWhatsApp).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify_whatsapp", s.handleVerifyWhatsApp).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/get_info", s.requireAuth(s.handleUserInfo)).Methods(http.MethodGet)

	// Cart mirror.
	r.HandleFunc("/user/cart", s.requireAuth(s.handleUserCart)).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", s.requireAuth(s.recordCartOp("add"))).Methods(http.MethodPost)
	r.HandleFunc("/cart/update", s.requireAuth(s.recordCartOp("update"))).Methods(http.MethodPost)
	r.HandleFunc("/cart/remove_item", s.requireAuth(s.recordCartOp("remove"))).Methods(http.MethodPost)
	r.HandleFunc("/cart/delete", s.requireAuth(s.recordCartOp("clear"))).Methods(http.MethodDelete)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "mockapi"})
	}).Methods(http.MethodGet)
}

// Seeded catalog data, intentionally mixing record shapes.
var (
	categories = []map[string]interface{}{
		{"id": "1", "name": "Supplements", "slug": "supplements", "image": "https://cdn.example/cat-supplements.jpg"},
		{"id": "2", "langs": []map[string]string{
			{"lang": "ar", "name": "العناية بالبشرة", "slug": "alenaya"},
			{"lang": "en", "name": "Skin Care", "slug": "skin-care"},
		}},
	}

	brands = []map[string]interface{}{
		{"id": "10", "name": "NutraMax", "img": "https://cdn.example/brand-nutramax.png"},
		{"id": "11", "title": "PureLine"},
	}

	products = []map[string]interface{}{
		{
			"id": "100", "name": "Vitamin C 1000mg", "slug": "vitamin-c-1000",
			"image": "https://cdn.example/vitc.jpg",
			"price": 10.0, "sale_price": 8.0, "rating": 4.5, "category": "supplements",
		},
		{
			"id": "101",
			"langs": []map[string]string{
				{"lang": "ar", "name": "كولاجين", "slug": "collagen-ar"},
				{"lang": "en", "name": "Collagen Plus", "slug": "collagen-plus"},
			},
			"imgs":  []map[string]string{{"img": "https://cdn.example/collagen.jpg"}},
			"price": 25.5, "category": "supplements",
		},
		{
			"id": "102", "title": "Derma Cream", "thumbnail": "https://cdn.example/derma.jpg",
			"price": 14.0, "stock": 0, "category": "skin-care",
		},
	}
)

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": categories})
}

func (s *Server) handleBrands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, brands)
}

func (s *Server) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if slug == "all" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": products})
		return
	}

	matched := []map[string]interface{}{}
	for _, p := range products {
		if p["category"] == slug {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		jsonError(w, "category not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": matched})
}

func (s *Server) handleProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	for _, p := range products {
		if p["slug"] == slug {
			writeJSON(w, http.StatusOK, p)
			return
		}
		if langs, ok := p["langs"].([]map[string]string); ok {
			for _, l := range langs {
				if l["slug"] == slug {
					writeJSON(w, http.StatusOK, p)
					return
				}
			}
		}
	}
	jsonError(w, "product not found", http.StatusNotFound)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	if q == "" {
		jsonError(w, "q is required", http.StatusBadRequest)
		return
	}

	matched := []map[string]interface{}{}
	for _, p := range products {
		if name, ok := p["name"].(string); ok && strings.Contains(strings.ToLower(name), q) {
			matched = append(matched, p)
			continue
		}
		if title, ok := p["title"].(string); ok && strings.Contains(strings.ToLower(title), q) {
			matched = append(matched, p)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": []string{"phone is required"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": "user-1"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		OTP    int    `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OTP != 123456 {
		jsonError(w, "invalid verification code", http.StatusUnauthorized)
		return
	}
	s.issueTokens(w)
}

func (s *Server) handleLoginWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		jsonError(w, "phone is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.verified[req.Phone] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "code sent"})
}

func (s *Server) handleVerifyWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OTP != "123456" {
		jsonError(w, "invalid verification code", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	known := s.verified[req.Phone]
	s.mu.Unlock()
	if !known {
		jsonError(w, "no pending verification for phone", http.StatusUnauthorized)
		return
	}
	s.issueTokens(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != RefreshToken {
		jsonError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	s.expired = false
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access_token": RotatedAccessToken})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"id": "user-1", "first_name": "Test", "last_name": "User",
		"email": "test@example.com", "phone": "+201000000000",
	})
}

func (s *Server) handleUserCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": []interface{}{}, "total": 0, "count": 0})
}

func (s *Server) recordCartOp(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.cartOps = append(s.cartOps, op)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			jsonError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		token := parts[1]
		s.mu.Lock()
		expired := s.expired
		s.mu.Unlock()

		switch {
		case token == RotatedAccessToken:
			// refreshed token is always good
		case token == AccessToken && !expired:
		default:
			jsonError(w, "token expired", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) issueTokens(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  AccessToken,
		"refresh_token": RefreshToken,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"message": message})
}
