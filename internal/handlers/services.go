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
	"eclat-backend/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const servicesCacheKey = "services:active"

type ServiceRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	Description     string `json:"description" validate:"omitempty,max=5000"`
	Category        string `json:"category" validate:"omitempty,max=120"`
	Price           *int   `json:"price" validate:"required,gte=0"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,gte=5,lte=600"`
	Slug            string `json:"slug" validate:"omitempty,max=200"`
	ImageURL        string `json:"imageUrl" validate:"omitempty,url,max=2000"`
}

func (s *Server) GetServices(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if cached, ok, err := s.Cache.Get(r.Context(), servicesCacheKey); err == nil && ok {
		log.Info("services: cache hit")
		writeCachedJSON(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := s.Cols.Services.Find(ctx, bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Error("services: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]models.Service, 0)
	for cursor.Next(ctx) {
		var svc models.Service
		if err := cursor.Decode(&svc); err != nil {
			log.Error("services: decode error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "decode error", nil)
			return
		}
		items = append(items, svc)
	}
	if err := cursor.Err(); err != nil {
		log.Error("services: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "cursor error", nil)
		return
	}

	response := map[string]interface{}{"services": items}
	if payload, err := encodeJSON(response); err == nil {
		_ = s.Cache.Set(r.Context(), servicesCacheKey, payload, s.cacheTTL())
	}

	log.Info("services: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, response)
}

// GetService returns a service even when it is inactive. Existing reservations
// and invoices keep pointing at retired services.
func (s *Server) GetService(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var svc models.Service
	err := s.Cols.Services.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		log.Warn("services get: not found", slog.String("service_id", id))
		transport.WriteError(w, http.StatusNotFound, "service not found", nil)
		return
	}
	if err != nil {
		log.Error("services get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, svc)
}

func (s *Server) CreateService(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	var req ServiceRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("services create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("services create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	now := time.Now().In(s.Cfg.Timezone)
	svc := models.Service{
		ID:              primitive.NewObjectID().Hex(),
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		Category:        strings.TrimSpace(req.Category),
		Price:           *req.Price,
		DurationMinutes: req.DurationMinutes,
		Slug:            slug,
		ImageURL:        strings.TrimSpace(req.ImageURL),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.Cols.Services.InsertOne(ctx, svc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("services create: slug exists", slog.String("slug", slug))
			transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
			return
		}
		log.Error("services create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), servicesCacheKey)

	log.Info("services create: ok", slog.String("service_id", svc.ID), slog.String("slug", slug))
	transport.WriteJSON(w, http.StatusCreated, svc)
}

func (s *Server) UpdateService(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req ServiceRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("services update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("services update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	set := bson.M{
		"name":            req.Name,
		"description":     strings.TrimSpace(req.Description),
		"category":        strings.TrimSpace(req.Category),
		"price":           *req.Price,
		"durationMinutes": req.DurationMinutes,
		"slug":            slug,
		"imageUrl":        strings.TrimSpace(req.ImageURL),
		"updatedAt":       time.Now().In(s.Cfg.Timezone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Service
	err := s.Cols.Services.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		log.Warn("services update: not found", slog.String("service_id", id))
		transport.WriteError(w, http.StatusNotFound, "service not found", nil)
		return
	}
	if mongo.IsDuplicateKeyError(err) {
		log.Warn("services update: slug exists", slog.String("slug", slug))
		transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
		return
	}
	if err != nil {
		log.Error("services update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), servicesCacheKey)

	log.Info("services update: ok", slog.String("service_id", id))
	transport.WriteJSON(w, http.StatusOK, updated)
}

// DeleteService retires a service instead of removing it. Past reservations
// and invoice lines stay resolvable.
func (s *Server) DeleteService(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	set := bson.M{"isActive": false, "updatedAt": time.Now().In(s.Cfg.Timezone)}
	res, err := s.Cols.Services.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		log.Error("services delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if res.MatchedCount == 0 {
		log.Warn("services delete: not found", slog.String("service_id", id))
		transport.WriteError(w, http.StatusNotFound, "service not found", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), servicesCacheKey)

	log.Info("services delete: ok", slog.String("service_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
