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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TestimonialRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Message string `json:"message" validate:"required,max=2000"`
}

func (s *Server) GetTestimonials(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(200)
	cursor, err := s.Cols.Testimonials.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Error("testimonials: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]models.Testimonial, 0)
	for cursor.Next(ctx) {
		var t models.Testimonial
		if err := cursor.Decode(&t); err != nil {
			log.Error("testimonials: decode error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "decode error", nil)
			return
		}
		items = append(items, t)
	}
	if err := cursor.Err(); err != nil {
		log.Error("testimonials: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "cursor error", nil)
		return
	}

	log.Info("testimonials: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"testimonials": items})
}

func (s *Server) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	var req TestimonialRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("testimonials create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("testimonials create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	testimonial := models.Testimonial{
		ID:        primitive.NewObjectID().Hex(),
		Name:      req.Name,
		Rating:    req.Rating,
		Message:   req.Message,
		CreatedAt: time.Now().In(s.Cfg.Timezone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.Cols.Testimonials.InsertOne(ctx, testimonial); err != nil {
		log.Error("testimonials create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("testimonials create: ok", slog.String("testimonial_id", testimonial.ID))
	transport.WriteJSON(w, http.StatusCreated, testimonial)
}

func (s *Server) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := s.Cols.Testimonials.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error("testimonials delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if res.DeletedCount == 0 {
		log.Warn("testimonials delete: not found", slog.String("testimonial_id", id))
		transport.WriteError(w, http.StatusNotFound, "testimonial not found", nil)
		return
	}

	log.Info("testimonials delete: ok", slog.String("testimonial_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
