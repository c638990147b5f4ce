package handlers

import (
	"log/slog"
	"net/http"

	"eclat-backend/internal/cache"
	"eclat-backend/internal/config"
	"eclat-backend/internal/db"
	"eclat-backend/internal/middleware"
	"eclat-backend/internal/validation"
)

// Server groups the handlers for the simple site entities: services,
// formations, team, testimonials, contact messages and content sections.
// Entities with richer rules (reservations, invoicing, blog) live in their
// own packages.
type Server struct {
	Cfg   *config.Config
	Cols  *db.Collections
	Val   *validation.Validator
	Log   *slog.Logger
	Cache cache.Cache
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
