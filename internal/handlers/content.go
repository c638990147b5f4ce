package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eclat-backend/internal/httpx"
	"eclat-backend/internal/models"
	"eclat-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const contentCacheKey = "content:all"

type ContentRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

// GetContent returns every content section keyed by section name. The
// frontend fetches the whole document once per page load, so the response
// is cached as a single payload.
func (s *Server) GetContent(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if cached, ok, err := s.Cache.Get(r.Context(), contentCacheKey); err == nil && ok {
		log.Info("content: cache hit")
		writeCachedJSON(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := s.Cols.Content.Find(ctx, bson.M{}, options.Find())
	if err != nil {
		log.Error("content: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	sections := make(map[string]models.ContentSection)
	for cursor.Next(ctx) {
		var section models.ContentSection
		if err := cursor.Decode(&section); err != nil {
			log.Error("content: decode error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "decode error", nil)
			return
		}
		sections[section.Key] = section
	}
	if err := cursor.Err(); err != nil {
		log.Error("content: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "cursor error", nil)
		return
	}

	response := map[string]interface{}{"sections": sections}
	if payload, err := encodeJSON(response); err == nil {
		_ = s.Cache.Set(r.Context(), contentCacheKey, payload, s.cacheTTL())
	}

	log.Info("content: ok", slog.Int("count", len(sections)))
	transport.WriteJSON(w, http.StatusOK, response)
}

// UpsertContent replaces one section wholesale. Partial edits are the
// frontend's job; the API stores what it is given.
func (s *Server) UpsertContent(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing key", nil)
		return
	}

	var req ContentRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("content upsert: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("content upsert: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	section := models.ContentSection{
		Key:       key,
		Data:      req.Data,
		UpdatedAt: time.Now().In(s.Cfg.Timezone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.Cols.Content.ReplaceOne(ctx, bson.M{"_id": key}, section, opts); err != nil {
		log.Error("content upsert: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), contentCacheKey)

	log.Info("content upsert: ok", slog.String("key", key))
	transport.WriteJSON(w, http.StatusOK, section)
}
