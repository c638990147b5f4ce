package invoices

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eclat-backend/internal/validation"
)

func newTestHandler(repo Repository) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(newTestService(repo), validation.New(), logger)
}

func TestCreateHandlerNumberConflict(t *testing.T) {
	repo := newFakeRepository()
	repo.insertErr = ErrNumberTaken
	h := newTestHandler(repo)

	body := `{"clientId":"client-1","items":[{"description":"Prestation","quantity":1,"unitPrice":50}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on number conflict, got %d body %s", rec.Code, rec.Body.String())
	}
}
