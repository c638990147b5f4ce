package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eclat-backend/internal/auth"
	"eclat-backend/internal/blog"
	"eclat-backend/internal/cache"
	"eclat-backend/internal/clients"
	"eclat-backend/internal/config"
	"eclat-backend/internal/db"
	"eclat-backend/internal/handlers"
	"eclat-backend/internal/invoices"
	"eclat-backend/internal/media"
	"eclat-backend/internal/models"
	"eclat-backend/internal/quotes"
	"eclat-backend/internal/reservations"
	"eclat-backend/internal/users"
	"eclat-backend/internal/validation"
)

// testRouter builds the full route tree without a database. The tests below
// only exercise requests the middleware rejects, or that fail validation,
// so no handler ever reaches storage.
func testRouter(t *testing.T) (http.Handler, *auth.Manager) {
	t.Helper()

	cfg := &config.Config{
		FrontendOrigin:        "http://localhost:5173",
		RateLimitReservations: 100,
		RateLimitContact:      100,
		RateLimitAuth:         100,
		RateLimitWindowSec:    60,
		CacheTTLSeconds:       60,
		Timezone:              time.UTC,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	tokens := &auth.Manager{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "eclat-backend"}
	val := validation.New()

	server := &handlers.Server{
		Cfg:   cfg,
		Cols:  &db.Collections{},
		Val:   val,
		Log:   logger,
		Cache: cache.NewNoop(),
	}

	usersHandler := users.NewHandler(users.NewService(users.NewRepository(nil), tokens, nil, time.UTC), val, logger)
	clientsHandler := clients.NewHandler(clients.NewService(clients.NewRepository(nil), time.UTC), val, logger)
	reservationsHandler := reservations.NewHandler(
		reservations.NewService(reservations.NewRepository(nil), nil, nil, nil, time.UTC), val, logger, nil)
	invoicesHandler := invoices.NewHandler(invoices.NewService(invoices.NewRepository(nil), time.UTC), val, logger)
	quotesHandler := quotes.NewHandler(quotes.NewService(quotes.NewRepository(nil), time.UTC), val, logger)
	blogHandler := blog.NewHandler(blog.NewService(blog.NewRepository(nil), time.UTC), val, logger, cache.NewNoop(), time.Minute)
	mediaHandler := media.NewHandler(media.NewService(media.NewRepository(nil), time.UTC), val, logger)

	router := newRouter(cfg, tokens, logger, server, usersHandler, clientsHandler,
		reservationsHandler, invoicesHandler, quotesHandler, blogHandler, mediaHandler)
	return router, tokens
}

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGuardedWritesRequireToken(t *testing.T) {
	router, _ := testRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/services"},
		{http.MethodPut, "/api/services/abc"},
		{http.MethodDelete, "/api/services/abc"},
		{http.MethodPost, "/api/formations"},
		{http.MethodPost, "/api/team"},
		{http.MethodPut, "/api/content/hero"},
		{http.MethodGet, "/api/clients"},
		{http.MethodPost, "/api/clients"},
		{http.MethodGet, "/api/reservations"},
		{http.MethodPatch, "/api/reservations/abc/status"},
		{http.MethodPost, "/api/invoices"},
		{http.MethodPost, "/api/quotes"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/media"},
		{http.MethodGet, "/api/admin/posts"},
		{http.MethodGet, "/api/admin/contacts"},
	}
	for _, tc := range cases {
		rec := doRequest(router, tc.method, tc.path, "", "{}")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestGuardedWritesRejectNonAdmin(t *testing.T) {
	router, tokens := testRouter(t)

	token, err := tokens.Issue("user-1", "member@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	rec := doRequest(router, http.MethodPost, "/api/services", token, "{}")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST /api/services as non-admin: expected 403, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodPatch, "/api/reservations/abc/status", token, "{}")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("PATCH /api/reservations/abc/status as non-admin: expected 403, got %d", rec.Code)
	}
}

func TestGuardedWriteAdminValidation(t *testing.T) {
	router, tokens := testRouter(t)

	token, err := tokens.Issue("admin-1", "admin@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// price missing: the guard lets the admin through and validation rejects
	// the body before any storage access
	rec := doRequest(router, http.MethodPost, "/api/services", token, `{"name":"Maquillage jour"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /api/services with missing price: expected 400, got %d", rec.Code)
	}
}

func TestMemberReservationRouteRequiresToken(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/reservations", "", "{}")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("POST /api/reservations without token: expected 401, got %d", rec.Code)
	}
}
