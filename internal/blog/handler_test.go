package blog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eclat-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type fakeCache struct {
	store    map[string][]byte
	prefixes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := f.store[key]
	return v, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.store[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func (f *fakeCache) DeletePrefix(ctx context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	for k := range f.store {
		if strings.HasPrefix(k, prefix) {
			delete(f.store, k)
		}
	}
	return nil
}

func newTestHandler(fc *fakeCache) (*Handler, *Service) {
	svc := NewService(newFakeRepository(), time.UTC)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(svc, validation.New(), logger, fc, time.Minute), svc
}

func newTestRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/posts/{slug}", h.PublicGetBySlug)
	r.Post("/posts", h.AdminCreate)
	r.Put("/posts/{id}", h.AdminUpdate)
	r.Delete("/posts/{id}", h.AdminDelete)
	return r
}

func TestPublicGetBySlugCachesPost(t *testing.T) {
	fc := newFakeCache()
	h, svc := newTestHandler(fc)
	router := newTestRouter(h)

	post, err := svc.Create(context.Background(), UpsertRequest{
		Title: "Conseils teint", Content: "...", Published: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/posts/"+post.Slug, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := fc.store["posts:slug:"+post.Slug]; !ok {
		t.Fatalf("post response must be cached per slug, keys: %v", fc.store)
	}

	// the second request must be served from the cache
	fc.store["posts:slug:"+post.Slug] = []byte(`{"cached":true}`)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/"+post.Slug, nil))
	if rec.Body.String() != `{"cached":true}` {
		t.Fatalf("expected the cached payload, got %s", rec.Body.String())
	}
}

func TestAdminWritesInvalidatePostCaches(t *testing.T) {
	fc := newFakeCache()
	h, _ := newTestHandler(fc)
	router := newTestRouter(h)

	fc.store["posts:published"] = []byte(`{"items":[]}`)
	fc.store["posts:slug:conseils-teint"] = []byte(`{}`)

	body := `{"title":"Conseils teint","content":"..."}`
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
	}

	if len(fc.prefixes) != 1 || fc.prefixes[0] != "posts:" {
		t.Fatalf("expected one prefix invalidation of posts:, got %v", fc.prefixes)
	}
	if len(fc.store) != 0 {
		t.Fatalf("stale public entries must be gone, keys: %v", fc.store)
	}
}
