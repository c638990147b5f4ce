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

const formationsCacheKey = "formations:active"

type FormationRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description" validate:"omitempty,max=5000"`
	Level         string `json:"level" validate:"omitempty,oneof=debutant intermediaire avance pro"`
	Price         *int   `json:"price" validate:"required,gte=0"`
	DurationHours int    `json:"durationHours" validate:"required,gte=1,lte=200"`
	Slug          string `json:"slug" validate:"omitempty,max=200"`
	ImageURL      string `json:"imageUrl" validate:"omitempty,url,max=2000"`
}

func (s *Server) GetFormations(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if cached, ok, err := s.Cache.Get(r.Context(), formationsCacheKey); err == nil && ok {
		log.Info("formations: cache hit")
		writeCachedJSON(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := s.Cols.Formations.Find(ctx, bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Error("formations: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]models.Formation, 0)
	for cursor.Next(ctx) {
		var f models.Formation
		if err := cursor.Decode(&f); err != nil {
			log.Error("formations: decode error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "decode error", nil)
			return
		}
		items = append(items, f)
	}
	if err := cursor.Err(); err != nil {
		log.Error("formations: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "cursor error", nil)
		return
	}

	response := map[string]interface{}{"formations": items}
	if payload, err := encodeJSON(response); err == nil {
		_ = s.Cache.Set(r.Context(), formationsCacheKey, payload, s.cacheTTL())
	}

	log.Info("formations: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (s *Server) GetFormation(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var f models.Formation
	err := s.Cols.Formations.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		log.Warn("formations get: not found", slog.String("formation_id", id))
		transport.WriteError(w, http.StatusNotFound, "formation not found", nil)
		return
	}
	if err != nil {
		log.Error("formations get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, f)
}

func (s *Server) CreateFormation(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	var req FormationRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("formations create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("formations create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	now := time.Now().In(s.Cfg.Timezone)
	f := models.Formation{
		ID:            primitive.NewObjectID().Hex(),
		Name:          req.Name,
		Description:   strings.TrimSpace(req.Description),
		Level:         req.Level,
		Price:         *req.Price,
		DurationHours: req.DurationHours,
		Slug:          slug,
		ImageURL:      strings.TrimSpace(req.ImageURL),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.Cols.Formations.InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("formations create: slug exists", slog.String("slug", slug))
			transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
			return
		}
		log.Error("formations create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), formationsCacheKey)

	log.Info("formations create: ok", slog.String("formation_id", f.ID), slog.String("slug", slug))
	transport.WriteJSON(w, http.StatusCreated, f)
}

func (s *Server) UpdateFormation(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req FormationRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("formations update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("formations update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	set := bson.M{
		"name":          req.Name,
		"description":   strings.TrimSpace(req.Description),
		"level":         req.Level,
		"price":         *req.Price,
		"durationHours": req.DurationHours,
		"slug":          slug,
		"imageUrl":      strings.TrimSpace(req.ImageURL),
		"updatedAt":     time.Now().In(s.Cfg.Timezone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Formation
	err := s.Cols.Formations.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		log.Warn("formations update: not found", slog.String("formation_id", id))
		transport.WriteError(w, http.StatusNotFound, "formation not found", nil)
		return
	}
	if mongo.IsDuplicateKeyError(err) {
		log.Warn("formations update: slug exists", slog.String("slug", slug))
		transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
		return
	}
	if err != nil {
		log.Error("formations update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), formationsCacheKey)

	log.Info("formations update: ok", slog.String("formation_id", id))
	transport.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) DeleteFormation(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	set := bson.M{"isActive": false, "updatedAt": time.Now().In(s.Cfg.Timezone)}
	res, err := s.Cols.Formations.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		log.Error("formations delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if res.MatchedCount == 0 {
		log.Warn("formations delete: not found", slog.String("formation_id", id))
		transport.WriteError(w, http.StatusNotFound, "formation not found", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), formationsCacheKey)

	log.Info("formations delete: ok", slog.String("formation_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
